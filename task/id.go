package task

import "github.com/google/uuid"

// NewID generates a unique identifier for a task, tag, or queue entry
// created client-side. Server-created rows receive ids from the store
// instead, which uses the same format.
func NewID() string {
	return uuid.NewString()
}
