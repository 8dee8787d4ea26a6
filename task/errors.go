package task

import "errors"

var (
	// ErrEmptyTitle is returned when a task title is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrTitleTooLong is returned when a task title exceeds MaxTitleLength.
	ErrTitleTooLong = errors.New("title exceeds maximum length")

	// ErrInvalidStatus is returned when an invalid status is provided.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidProgress is returned when progress is outside 0-100.
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")

	// ErrInvalidMutationKind is returned when a mutation kind is unknown.
	ErrInvalidMutationKind = errors.New("invalid mutation kind")

	// ErrTaskNotFound is returned when a task with the given ID doesn't exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTagNotFound is returned when a tag with the given ID doesn't exist.
	ErrTagNotFound = errors.New("tag not found")

	// ErrEmptyTagName is returned when a tag name is empty.
	ErrEmptyTagName = errors.New("tag name cannot be empty")

	// ErrCompletedMissingTimestamp is returned when a completed task has
	// no completed_at timestamp.
	ErrCompletedMissingTimestamp = errors.New("completed task must have completed_at timestamp")

	// ErrNotCompletedHasTimestamp is returned when a non-completed task
	// has a completed_at timestamp.
	ErrNotCompletedHasTimestamp = errors.New("non-completed task cannot have completed_at timestamp")

	// ErrCompletedProgressMismatch is returned when a completed task has
	// progress other than 100.
	ErrCompletedProgressMismatch = errors.New("completed task must have progress 100")
)
