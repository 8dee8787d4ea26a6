package task

import "time"

// Task represents a single task.
type Task struct {
	// ID is an opaque unique identifier. Guest-mode tasks generate it
	// client-side; authenticated tasks receive it from the store.
	ID string `json:"id"`

	// OwnerID scopes the task to a user account or guest session.
	OwnerID string `json:"owner_id"`

	// Title is the short summary of the task (max 500 chars, non-empty).
	Title string `json:"title"`

	// Description provides additional context. May be empty.
	Description string `json:"description"`

	// DueDate is when the task is due (nil when unscheduled).
	DueDate *time.Time `json:"due_date,omitempty"`

	// Priority is the user-assigned importance. Unknown legacy values
	// are tolerated and rank as low.
	Priority Priority `json:"priority"`

	// Status is the current state of the task.
	Status Status `json:"status"`

	// Progress is the completion percentage (0-100).
	Progress int `json:"progress"`

	// TagIDs is the set of attached tag ids, unordered and unique.
	TagIDs []string `json:"tag_ids"`

	// AIScore is the derived priority score (0-100). It is never set
	// directly by a user action; every create/update recomputes it.
	AIScore int `json:"ai_score"`

	// CreatedAt is when the task was created. Immutable.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last modified.
	UpdatedAt time.Time `json:"updated_at"`

	// CompletedAt is when the task completed (nil unless completed).
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// HasTag returns true if the task has the given tag id attached.
func (t *Task) HasTag(tagID string) bool {
	for _, id := range t.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// AddTagID attaches a tag id, preserving set semantics.
func (t *Task) AddTagID(tagID string) {
	if t.HasTag(tagID) {
		return
	}
	t.TagIDs = append(t.TagIDs, tagID)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	clone := t
	if t.DueDate != nil {
		due := *t.DueDate
		clone.DueDate = &due
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		clone.CompletedAt = &completed
	}
	if t.TagIDs != nil {
		clone.TagIDs = append([]string(nil), t.TagIDs...)
	}
	return clone
}

// Tag is a named, colored label attachable to many tasks.
type Tag struct {
	// ID is a unique identifier.
	ID string `json:"id"`

	// OwnerID scopes the tag to a user account or guest session.
	OwnerID string `json:"owner_id"`

	// Name is the display name (non-empty).
	Name string `json:"name"`

	// Color is a display value, opaque to the model.
	Color string `json:"color"`
}

// Mutation is one entry in the local mutation queue: an operation
// recorded while no remote write path was available.
type Mutation struct {
	// ID is a unique identifier for the entry.
	ID string `json:"id"`

	// Kind is the recorded operation.
	Kind MutationKind `json:"kind"`

	// Payload is the task the operation applies to. For deletes only
	// the ID field is meaningful.
	Payload Task `json:"payload"`

	// EnqueuedAt is when the entry was recorded. Ordering across
	// entries is significant; replay is strict FIFO.
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// DefaultTag describes a tag seeded for owners that have none.
type DefaultTag struct {
	Name  string
	Color string
}

// DefaultTags returns the tag set seeded for a new user or guest
// session. The "urgent" tag is special: the reference score
// calibration awards a bonus to tasks carrying it.
func DefaultTags() []DefaultTag {
	return []DefaultTag{
		{Name: "urgent", Color: "#ef4444"},
		{Name: "work", Color: "#3b82f6"},
		{Name: "personal", Color: "#22c55e"},
		{Name: "errand", Color: "#eab308"},
	}
}

// UrgentTagName is the reserved tag name recognized by the score
// calibrations.
const UrgentTagName = "urgent"
