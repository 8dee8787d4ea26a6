package task

import "time"

// Transition rules tying status and progress together. These are the
// single source of truth for the completion invariant: completed_at is
// present iff status is completed, and completed is only entered with
// progress 100.

// Toggle cycles the task's status: pending -> in-progress ->
// completed -> pending. Progress and completed_at move with it:
//
//   - entering in-progress raises progress to at least 25
//   - entering completed sets progress to 100 and stamps completed_at
//   - entering pending resets progress to 0 and clears completed_at
//
// UpdatedAt is stamped on every call. The caller is responsible for
// recomputing the score afterward.
func Toggle(t Task, now time.Time) Task {
	switch t.Status {
	case StatusPending:
		t.Status = StatusInProgress
		if t.Progress < 25 {
			t.Progress = 25
		}
		t.CompletedAt = nil
	case StatusInProgress:
		t.Status = StatusCompleted
		t.Progress = ProgressMax
		completed := now
		t.CompletedAt = &completed
	default:
		t.Status = StatusPending
		t.Progress = 0
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
	return t
}

// SetProgress sets the task's progress directly, deriving status:
//
//   - 100 completes the task and stamps completed_at
//   - a nonzero value moves a pending or completed task to in-progress
//   - zero moves an in-progress or completed task back to pending
//
// Completed is only ever entered through progress 100; lowering the
// progress of a completed task reopens it and clears completed_at.
// UpdatedAt is stamped on every call.
func SetProgress(t Task, progress int, now time.Time) (Task, error) {
	if err := ValidateProgress(progress); err != nil {
		return t, err
	}

	t.Progress = progress
	switch {
	case progress == ProgressMax:
		t.Status = StatusCompleted
		completed := now
		t.CompletedAt = &completed
	case progress > 0:
		if t.Status != StatusInProgress {
			t.Status = StatusInProgress
		}
		t.CompletedAt = nil
	default:
		if t.Status != StatusPending {
			t.Status = StatusPending
		}
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
	return t, nil
}
