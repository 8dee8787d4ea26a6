package localstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mselway/triage/task"
)

func TestStore_PutGetRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	due := time.Date(2026, 4, 1, 8, 30, 0, 0, time.UTC)
	original := task.Task{
		ID:        "t1",
		Title:     "Water plants",
		Priority:  task.PriorityLow,
		Status:    task.StatusPending,
		DueDate:   &due,
		CreatedAt: due.Add(-24 * time.Hour),
		UpdatedAt: due.Add(-24 * time.Hour),
	}

	if err := store.Put("guest/tasks", []task.Task{original}); err != nil {
		t.Fatalf("failed to put: %v", err)
	}

	var loaded []task.Task
	found, err := store.Get("guest/tasks", &loaded)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if !found {
		t.Fatal("expected document to exist")
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 task, got %d", len(loaded))
	}

	// Timestamps must come back as time values, not strings.
	if loaded[0].DueDate == nil || !loaded[0].DueDate.Equal(due) {
		t.Errorf("expected due date %v, got %v", due, loaded[0].DueDate)
	}
	if !loaded[0].CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("expected created_at %v, got %v", original.CreatedAt, loaded[0].CreatedAt)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	var v map[string]string
	found, err := store.Get("nope", &v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected missing key to report not found")
	}
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Put("session", map[string]string{"user": "u1"}); err != nil {
		t.Fatalf("failed to put: %v", err)
	}
	if err := store.Delete("session"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	var v map[string]string
	if found, _ := store.Get("session", &v); found {
		t.Error("expected key to be gone after delete")
	}

	// Deleting again is not an error.
	if err := store.Delete("session"); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	store := NewStore(t.TempDir())

	var counter struct {
		N int `json:"n"`
	}
	for i := 0; i < 3; i++ {
		err := store.Update("counter", &counter, func() error {
			counter.N++
			return nil
		})
		if err != nil {
			t.Fatalf("failed to update: %v", err)
		}
	}

	var loaded struct {
		N int `json:"n"`
	}
	if _, err := store.Get("counter", &loaded); err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if loaded.N != 3 {
		t.Errorf("expected counter 3, got %d", loaded.N)
	}
}

func TestStore_KeysScopedToFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.Put("guest/tasks", []string{}); err != nil {
		t.Fatalf("failed to put: %v", err)
	}
	if err := store.Put("guest/tags", []string{}); err != nil {
		t.Fatalf("failed to put: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	var docs []string
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".json" {
			docs = append(docs, entry.Name())
		}
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 documents, got %v", docs)
	}
}
