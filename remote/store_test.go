package remote

import (
	"context"
	"testing"
	"time"

	"github.com/mselway/triage/score"
	"github.com/mselway/triage/task"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), score.Reference{})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, score.Reference{})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if _, err := store.CreateTask(context.Background(), "u1", task.Task{Title: "persisted"}); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	store.Close()

	reopened, err := Open(dir, score.Reference{})
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	tasks, err := reopened.ListTasks(context.Background(), "u1")
	if err != nil {
		t.Fatalf("failed to list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "persisted" {
		t.Errorf("expected persisted task to survive reopen, got %v", tasks)
	}
}

func TestCreateTask_Defaults(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateTask(ctx, "u1", task.Task{Title: "Pay rent"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	if created.ID == "" {
		t.Error("expected server-generated id")
	}
	if created.OwnerID != "u1" {
		t.Errorf("expected owner u1, got %q", created.OwnerID)
	}
	if created.Status != task.StatusPending {
		t.Errorf("expected pending status, got %q", created.Status)
	}
	if created.AIScore == 0 {
		t.Error("expected a computed score on create")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be stamped")
	}
}

func TestCreateTask_PreservesDraftCreatedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// A queued offline create arrives with its client-stamped
	// creation time; replaying it must not shift the timestamp.
	createdAt := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	created, err := store.CreateTask(ctx, "u1", task.Task{
		ID:        "queued-1",
		Title:     "Queued offline",
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if !created.CreatedAt.Equal(createdAt) {
		t.Errorf("expected created_at %v preserved, got %v", createdAt, created.CreatedAt)
	}

	loaded, err := store.GetTask(ctx, "u1", "queued-1")
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if !loaded.CreatedAt.Equal(createdAt) {
		t.Errorf("expected stored created_at %v, got %v", createdAt, loaded.CreatedAt)
	}
}

func TestCreateTask_TimestampRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	due := time.Date(2026, 5, 1, 17, 0, 0, 0, time.UTC)
	created, err := store.CreateTask(ctx, "u1", task.Task{Title: "File taxes", DueDate: &due})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	loaded, err := store.GetTask(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if loaded.DueDate == nil || !loaded.DueDate.Equal(due) {
		t.Errorf("expected due date %v, got %v", due, loaded.DueDate)
	}
	if !loaded.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("expected created_at %v, got %v", created.CreatedAt, loaded.CreatedAt)
	}
}

func TestUpdateTask_OverwritesAndRescores(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateTask(ctx, "u1", task.Task{Title: "Draft email", Priority: task.PriorityLow})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	created.Priority = task.PriorityUrgent
	updated, err := store.UpdateTask(ctx, "u1", created)
	if err != nil {
		t.Fatalf("failed to update task: %v", err)
	}
	if updated.AIScore <= created.AIScore {
		t.Errorf("expected score to rise with urgent priority: %d -> %d", created.AIScore, updated.AIScore)
	}

	loaded, err := store.GetTask(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if loaded.Priority != task.PriorityUrgent {
		t.Errorf("expected urgent priority, got %q", loaded.Priority)
	}
}

func TestUpdateTask_ReplacesTagLinks(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tagA, _ := store.CreateTag(ctx, "u1", task.Tag{Name: "work"})
	tagB, _ := store.CreateTag(ctx, "u1", task.Tag{Name: "home"})

	created, err := store.CreateTask(ctx, "u1", task.Task{Title: "Refile docs", TagIDs: []string{tagA.ID}})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	created.TagIDs = []string{tagB.ID}
	if _, err := store.UpdateTask(ctx, "u1", created); err != nil {
		t.Fatalf("failed to update task: %v", err)
	}

	loaded, err := store.GetTask(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if len(loaded.TagIDs) != 1 || loaded.TagIDs[0] != tagB.ID {
		t.Errorf("expected tag set replaced with %q, got %v", tagB.ID, loaded.TagIDs)
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.UpdateTask(context.Background(), "u1", task.Task{ID: "missing", Title: "x"})
	if err != task.ErrTaskNotFound {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestDeleteTask_RemovesLinksFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tag, _ := store.CreateTag(ctx, "u1", task.Tag{Name: "work"})
	created, err := store.CreateTask(ctx, "u1", task.Task{Title: "Old task", TagIDs: []string{tag.ID}})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	if err := store.DeleteTask(ctx, "u1", created.ID); err != nil {
		t.Fatalf("failed to delete task: %v", err)
	}

	var links int
	if err := store.conn.QueryRow(`SELECT COUNT(*) FROM task_tags WHERE task_id = ?`, created.ID).Scan(&links); err != nil {
		t.Fatalf("failed to count links: %v", err)
	}
	if links != 0 {
		t.Errorf("expected 0 link rows after delete, got %d", links)
	}

	if _, err := store.GetTask(ctx, "u1", created.ID); err != task.ErrTaskNotFound {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestListTasks_DeduplicatesTagLinks(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tag, _ := store.CreateTag(ctx, "u1", task.Tag{Name: "work"})
	created, err := store.CreateTask(ctx, "u1", task.Task{Title: "Dup links", TagIDs: []string{tag.ID}})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	// Simulate historical duplicate link rows.
	for i := 0; i < 3; i++ {
		if _, err := store.conn.Exec(`INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)`, created.ID, tag.ID); err != nil {
			t.Fatalf("failed to insert duplicate link: %v", err)
		}
	}

	tasks, err := store.ListTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if len(tasks[0].TagIDs) != 1 {
		t.Errorf("expected duplicate links to collapse to 1 tag id, got %v", tasks[0].TagIDs)
	}
}

func TestListTasks_ScopedByOwner(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.CreateTask(ctx, "u1", task.Task{Title: "Mine"})
	store.CreateTask(ctx, "u2", task.Task{Title: "Theirs"})

	tasks, err := store.ListTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Mine" {
		t.Errorf("expected only u1's task, got %v", tasks)
	}
}

func TestSeedDefaultTags(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	seeded, err := store.SeedDefaultTags(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("failed to seed tags: %v", err)
	}
	if !seeded {
		t.Error("expected seeding for a fresh owner")
	}

	tags, err := store.ListTags(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to list tags: %v", err)
	}
	if len(tags) != len(task.DefaultTags()) {
		t.Errorf("expected %d default tags, got %d", len(task.DefaultTags()), len(tags))
	}

	// Seeding an owner that already has tags is a no-op.
	seeded, err = store.SeedDefaultTags(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("failed to re-seed: %v", err)
	}
	if seeded {
		t.Error("expected no re-seeding for an owner with tags")
	}
}

func TestSeedDefaultTags_ConfiguredSet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	seeded, err := store.SeedDefaultTags(ctx, "u1", []task.Tag{
		{Name: "deep-work", Color: "#336699"},
		{Name: "errand", Color: "#22c55e"},
	})
	if err != nil {
		t.Fatalf("failed to seed tags: %v", err)
	}
	if !seeded {
		t.Fatal("expected seeding for a fresh owner")
	}

	tags, err := store.ListTags(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to list tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected the configured set, got %d tags", len(tags))
	}
	for _, tag := range tags {
		if tag.Name != "deep-work" && tag.Name != "errand" {
			t.Errorf("unexpected tag %q seeded", tag.Name)
		}
	}
}

func TestSetScore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateTask(ctx, "u1", task.Task{Title: "Model scored"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if err := store.SetScore(ctx, "u1", created.ID, 88); err != nil {
		t.Fatalf("failed to set score: %v", err)
	}

	loaded, _ := store.GetTask(ctx, "u1", created.ID)
	if loaded.AIScore != 88 {
		t.Errorf("expected score 88, got %d", loaded.AIScore)
	}

	if err := store.SetScore(ctx, "u1", "missing", 10); err != task.ErrTaskNotFound {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestSubscribe_NotifiesOwnerOnly(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var mine, theirs int
	cancelMine := store.Subscribe("u1", func() { mine++ })
	defer cancelMine()
	cancelTheirs := store.Subscribe("u2", func() { theirs++ })
	defer cancelTheirs()

	created, err := store.CreateTask(ctx, "u1", task.Task{Title: "Notify me"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if _, err := store.UpdateTask(ctx, "u1", created); err != nil {
		t.Fatalf("failed to update task: %v", err)
	}
	if err := store.DeleteTask(ctx, "u1", created.ID); err != nil {
		t.Fatalf("failed to delete task: %v", err)
	}

	if mine != 3 {
		t.Errorf("expected 3 notifications for u1, got %d", mine)
	}
	if theirs != 0 {
		t.Errorf("expected 0 notifications for u2, got %d", theirs)
	}
}

func TestSubscribe_CancelStopsNotifications(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var count int
	cancel := store.Subscribe("u1", func() { count++ })

	store.CreateTask(ctx, "u1", task.Task{Title: "one"})
	cancel()
	store.CreateTask(ctx, "u1", task.Task{Title: "two"})

	if count != 1 {
		t.Errorf("expected 1 notification before cancel, got %d", count)
	}
}
