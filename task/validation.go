package task

import "fmt"

// ValidateTitle checks if the title is valid.
func ValidateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: %d > %d", ErrTitleTooLong, len(title), MaxTitleLength)
	}
	return nil
}

// ValidateProgress checks if the progress value is valid.
func ValidateProgress(progress int) error {
	if progress < ProgressMin || progress > ProgressMax {
		return fmt.Errorf("%w: got %d", ErrInvalidProgress, progress)
	}
	return nil
}

// Validate checks if a task struct is valid.
//
// Priority is deliberately not checked: unknown legacy values are
// tolerated throughout the system and rank as low.
func Validate(t *Task) error {
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}

	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}

	if err := ValidateProgress(t.Progress); err != nil {
		return err
	}

	// Check completed_at consistency: present iff completed.
	if t.Status == StatusCompleted {
		if t.CompletedAt == nil {
			return ErrCompletedMissingTimestamp
		}
		if t.Progress != ProgressMax {
			return ErrCompletedProgressMismatch
		}
	} else if t.CompletedAt != nil {
		return ErrNotCompletedHasTimestamp
	}

	// Check tag set uniqueness.
	seen := make(map[string]struct{}, len(t.TagIDs))
	for _, id := range t.TagIDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate tag id %q", id)
		}
		seen[id] = struct{}{}
	}

	return nil
}

// ValidateTag checks if a tag struct is valid.
func ValidateTag(tag *Tag) error {
	if tag.Name == "" {
		return ErrEmptyTagName
	}
	return nil
}

// ValidateMutation checks if a queue entry is valid.
func ValidateMutation(m *Mutation) error {
	if m.ID == "" {
		return fmt.Errorf("mutation id cannot be empty")
	}
	if !m.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMutationKind, m.Kind)
	}
	if m.Payload.ID == "" {
		return fmt.Errorf("mutation payload must carry a task id")
	}
	return nil
}
