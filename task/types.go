// Package task implements the data model for the triage task manager.
//
// Tasks carry a derived aiScore (0-100) computed by the score package;
// the model itself only enforces structural invariants. Status and
// progress are mutually constrained: completed tasks always have
// progress 100 and a completed_at timestamp, and the transition rules
// in transition.go are the single source of truth for how the two
// fields move together.
package task

import internalstrings "github.com/mselway/triage/internal/strings"

// Status represents the state of a task.
type Status string

const (
	// StatusPending indicates the task has not been started.
	StatusPending Status = "pending"

	// StatusInProgress indicates the task is being worked on.
	StatusInProgress Status = "in-progress"

	// StatusCompleted indicates the task is finished.
	StatusCompleted Status = "completed"
)

// ValidStatuses returns all valid status values.
func ValidStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// Priority represents the user-assigned importance of a task.
//
// Priority is an open string rather than a closed enumeration: legacy
// records carry arbitrary values, which the model tolerates by ranking
// them as low. Unknown values round-trip through storage unchanged.
type Priority string

const (
	// PriorityLow is the default and lowest priority.
	PriorityLow Priority = "low"

	// PriorityMedium is a routine task.
	PriorityMedium Priority = "medium"

	// PriorityHigh is an important task.
	PriorityHigh Priority = "high"

	// PriorityUrgent is a drop-everything task.
	PriorityUrgent Priority = "urgent"
)

// ValidPriorities returns the known priority values, lowest first.
func ValidPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// IsValid returns true if the priority is a known value.
func (p Priority) IsValid() bool {
	for _, valid := range ValidPriorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// Rank returns the sort rank for a priority. Higher is more important.
// Unknown values rank as low.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// NormalizePriority lowercases and trims a priority value, mapping
// unknown inputs to PriorityLow.
func NormalizePriority(p Priority) Priority {
	normalized := Priority(internalstrings.NormalizeLowerTrimSpace(string(p)))
	if normalized.IsValid() {
		return normalized
	}
	return PriorityLow
}

// MutationKind identifies the operation recorded by a queued mutation.
type MutationKind string

const (
	// MutationCreate records a task creation.
	MutationCreate MutationKind = "create"

	// MutationUpdate records a full-task overwrite.
	MutationUpdate MutationKind = "update"

	// MutationDelete records a task deletion.
	MutationDelete MutationKind = "delete"
)

// IsValid returns true if the mutation kind is a known value.
func (k MutationKind) IsValid() bool {
	switch k {
	case MutationCreate, MutationUpdate, MutationDelete:
		return true
	default:
		return false
	}
}

// Progress bounds for tasks.
const (
	ProgressMin = 0
	ProgressMax = 100
)

// MaxTitleLength is the maximum allowed length for a task title.
const MaxTitleLength = 500
