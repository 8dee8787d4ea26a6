package session

import (
	"context"
	"fmt"
	"sort"

	"github.com/mselway/triage/task"
)

const (
	guestTasksKey = "guest/tasks"
	guestTagsKey  = "guest/tags"
)

// Tasks returns a copy of the live task collection in its stable
// original order.
func (c *Coordinator) Tasks() []task.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneTasks(c.tasks)
}

// Tags returns a copy of the live tag collection.
func (c *Coordinator) Tags() []task.Tag {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]task.Tag(nil), c.tags...)
}

// Prioritized returns the live tasks sorted descending by score. The
// sort is stable: ties keep their original collection order. The
// underlying collection order is never mutated.
func (c *Coordinator) Prioritized() []task.Task {
	tasks := c.Tasks()
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].AIScore > tasks[j].AIScore
	})
	return tasks
}

// AddTask validates the draft, computes its score with the session's
// calibration, and persists it through the session's storage path. In
// authenticated mode the in-memory append happens only after the
// remote call resolves; on failure the collection is unchanged.
func (c *Coordinator) AddTask(ctx context.Context, draft task.Task) (task.Task, error) {
	if err := task.ValidateTitle(draft.Title); err != nil {
		return task.Task{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ModeGuest:
		now := c.now()
		t := draft.Clone()
		t.ID = task.NewID()
		t.OwnerID = GuestOwnerID
		if t.Status == "" {
			t.Status = task.StatusPending
		}
		t.CreatedAt = now
		t.UpdatedAt = now
		t.AIScore = c.strategy.Score(t, c.tags, now)

		c.tasks = append(c.tasks, t)
		if err := c.persistGuestLocked(); err != nil {
			return task.Task{}, err
		}
		return t, nil

	case ModeAuthenticated:
		if !c.online {
			return c.queueMutationLocked(task.MutationCreate, draft)
		}
		created, err := c.remote.CreateTask(ctx, c.ownerID, draft)
		if err != nil {
			return task.Task{}, err
		}
		c.tasks = append(c.tasks, created)
		return created, nil

	default:
		return task.Task{}, ErrNoSession
	}
}

// UpdateTask replaces a task wholesale, recomputing its score.
func (c *Coordinator) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	if err := task.ValidateTitle(t.Title); err != nil {
		return task.Task{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateTaskLocked(ctx, t)
}

func (c *Coordinator) updateTaskLocked(ctx context.Context, t task.Task) (task.Task, error) {
	switch c.mode {
	case ModeGuest:
		i, ok := c.indexOfLocked(t.ID)
		if !ok {
			return task.Task{}, task.ErrTaskNotFound
		}
		updated := t.Clone()
		updated.UpdatedAt = c.now()
		updated.AIScore = c.strategy.Score(updated, c.tags, updated.UpdatedAt)
		c.tasks[i] = updated
		if err := c.persistGuestLocked(); err != nil {
			return task.Task{}, err
		}
		return updated, nil

	case ModeAuthenticated:
		if !c.online {
			return c.queueMutationLocked(task.MutationUpdate, t)
		}
		updated, err := c.remote.UpdateTask(ctx, c.ownerID, t)
		if err != nil {
			return task.Task{}, err
		}
		if i, ok := c.indexOfLocked(updated.ID); ok {
			c.tasks[i] = updated
		}
		return updated, nil

	default:
		return task.Task{}, ErrNoSession
	}
}

// DeleteTask removes a task through the session's storage path.
func (c *Coordinator) DeleteTask(ctx context.Context, taskID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ModeGuest:
		i, ok := c.indexOfLocked(taskID)
		if !ok {
			return task.ErrTaskNotFound
		}
		c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
		return c.persistGuestLocked()

	case ModeAuthenticated:
		if !c.online {
			_, err := c.queueMutationLocked(task.MutationDelete, task.Task{ID: taskID})
			return err
		}
		if err := c.remote.DeleteTask(ctx, c.ownerID, taskID); err != nil {
			return err
		}
		if i, ok := c.indexOfLocked(taskID); ok {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
		}
		return nil

	default:
		return ErrNoSession
	}
}

// AddTag creates a tag through the session's storage path.
func (c *Coordinator) AddTag(ctx context.Context, tag task.Tag) (task.Tag, error) {
	if err := task.ValidateTag(&tag); err != nil {
		return task.Tag{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ModeGuest:
		tag.ID = task.NewID()
		tag.OwnerID = GuestOwnerID
		c.tags = append(c.tags, tag)
		if err := c.persistGuestLocked(); err != nil {
			return task.Tag{}, err
		}
		return tag, nil

	case ModeAuthenticated:
		if !c.online {
			// Tag creation has no queued form; it requires the store.
			return task.Tag{}, ErrOffline
		}
		created, err := c.remote.CreateTag(ctx, c.ownerID, tag)
		if err != nil {
			return task.Tag{}, err
		}
		c.tags = append(c.tags, created)
		return created, nil

	default:
		return task.Tag{}, ErrNoSession
	}
}

// ToggleTaskStatus cycles a task's status (pending -> in-progress ->
// completed -> pending) per the transition rules, then persists the
// result as a full update.
func (c *Coordinator) ToggleTaskStatus(ctx context.Context, taskID string) (task.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.indexOfLocked(taskID)
	if !ok {
		return task.Task{}, task.ErrTaskNotFound
	}
	return c.updateTaskLocked(ctx, task.Toggle(c.tasks[i].Clone(), c.now()))
}

// UpdateTaskProgress sets a task's progress directly, deriving status
// per the transition rules, then persists the result as a full update.
func (c *Coordinator) UpdateTaskProgress(ctx context.Context, taskID string, progress int) (task.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.indexOfLocked(taskID)
	if !ok {
		return task.Task{}, task.ErrTaskNotFound
	}
	updated, err := task.SetProgress(c.tasks[i].Clone(), progress, c.now())
	if err != nil {
		return task.Task{}, err
	}
	return c.updateTaskLocked(ctx, updated)
}

// Refetch reloads the live collections: from local storage in guest
// mode, from the remote store (wholesale replace) when authenticated.
func (c *Coordinator) Refetch(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ModeGuest:
		return c.loadGuestLocked()
	case ModeAuthenticated:
		return c.refetchAuthenticatedLocked(ctx)
	default:
		return ErrNoSession
	}
}

// queueMutationLocked records an offline mutation and applies it
// optimistically to the in-memory collection.
func (c *Coordinator) queueMutationLocked(kind task.MutationKind, payload task.Task) (task.Task, error) {
	now := c.now()
	t := payload.Clone()
	t.OwnerID = c.ownerID

	switch kind {
	case task.MutationCreate:
		t.ID = task.NewID()
		if t.Status == "" {
			t.Status = task.StatusPending
		}
		t.CreatedAt = now
		fallthrough
	case task.MutationUpdate:
		t.UpdatedAt = now
		t.AIScore = c.strategy.Score(t, c.tags, now)
	}

	c.queue.Enqueue(kind, t)

	switch kind {
	case task.MutationCreate:
		c.tasks = append(c.tasks, t)
	case task.MutationUpdate:
		if i, ok := c.indexOfLocked(t.ID); ok {
			c.tasks[i] = t
		}
	case task.MutationDelete:
		if i, ok := c.indexOfLocked(t.ID); ok {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
		}
	}
	return t, nil
}

// PendingMutations returns how many offline mutations await replay.
func (c *Coordinator) PendingMutations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queue == nil {
		return 0
	}
	return c.queue.Len()
}

func (c *Coordinator) indexOfLocked(taskID string) (int, bool) {
	for i := range c.tasks {
		if c.tasks[i].ID == taskID {
			return i, true
		}
	}
	return 0, false
}

func (c *Coordinator) loadGuestLocked() error {
	var tasks []task.Task
	if _, err := c.local.Get(guestTasksKey, &tasks); err != nil {
		return err
	}
	var tags []task.Tag
	if _, err := c.local.Get(guestTagsKey, &tags); err != nil {
		return err
	}
	c.tasks = tasks
	c.tags = tags
	return nil
}

func (c *Coordinator) persistGuestLocked() error {
	if err := c.local.Put(guestTasksKey, c.tasks); err != nil {
		return fmt.Errorf("persist guest tasks: %w", err)
	}
	if err := c.local.Put(guestTagsKey, c.tags); err != nil {
		return fmt.Errorf("persist guest tags: %w", err)
	}
	return nil
}

// refetchAuthenticatedLocked replaces the collections wholesale from
// the remote store.
func (c *Coordinator) refetchAuthenticatedLocked(ctx context.Context) error {
	tasks, err := c.remote.ListTasks(ctx, c.ownerID)
	if err != nil {
		return err
	}
	tags, err := c.remote.ListTags(ctx, c.ownerID)
	if err != nil {
		return err
	}
	c.tasks = tasks
	c.tags = tags
	return nil
}

func cloneTasks(tasks []task.Task) []task.Task {
	cloned := make([]task.Task, len(tasks))
	for i, t := range tasks {
		cloned[i] = t.Clone()
	}
	return cloned
}
