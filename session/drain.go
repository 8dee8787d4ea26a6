package session

import (
	"context"

	"github.com/mselway/triage/score"
	"github.com/mselway/triage/task"
)

// SetOnline records a connectivity change. An offline-to-online
// transition while authenticated drains the mutation queue and then
// refetches.
func (c *Coordinator) SetOnline(ctx context.Context, online bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasOnline := c.online
	c.online = online

	if !online || wasOnline || c.mode != ModeAuthenticated {
		return nil
	}
	return c.drainLocked(ctx)
}

// Drain replays the queued offline mutations against the remote store
// in strict FIFO order. Entries that replay successfully are removed;
// entries that fail stay queued for a later attempt. A refetch runs
// afterward regardless.
func (c *Coordinator) Drain(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeAuthenticated {
		return ErrNotAuthenticated
	}
	return c.drainLocked(ctx)
}

func (c *Coordinator) drainLocked(ctx context.Context) error {
	entries := c.queue.Drain()
	if len(entries) == 0 {
		return c.refetchAuthenticatedLocked(ctx)
	}

	// Replay is never parallelized: later entries may depend on
	// earlier ones (an update following an offline create).
	var replayed []string
	for _, entry := range entries {
		if err := c.replayLocked(ctx, entry); err != nil {
			c.logger.Printf("session: replay %s %s failed, keeping queued: %v", entry.Kind, entry.Payload.ID, err)
			continue
		}
		replayed = append(replayed, entry.ID)
	}

	if len(replayed) > 0 {
		if err := c.queue.Ack(replayed...); err != nil {
			return err
		}
	}
	return c.refetchAuthenticatedLocked(ctx)
}

func (c *Coordinator) replayLocked(ctx context.Context, entry task.Mutation) error {
	switch entry.Kind {
	case task.MutationCreate:
		_, err := c.remote.CreateTask(ctx, c.ownerID, entry.Payload)
		return err
	case task.MutationUpdate:
		_, err := c.remote.UpdateTask(ctx, c.ownerID, entry.Payload)
		return err
	case task.MutationDelete:
		return c.remote.DeleteTask(ctx, c.ownerID, entry.Payload.ID)
	default:
		return task.ErrInvalidMutationKind
	}
}

// MigrateGuestData uploads the guest session's accumulated tasks and
// tags into the authenticated account. It never runs implicitly on
// sign-in; callers invoke it deliberately. Guest tag ids are remapped
// to the server-created ones, and local guest data is cleared only
// after everything uploaded.
func (c *Coordinator) MigrateGuestData(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeAuthenticated {
		return 0, ErrNotAuthenticated
	}

	var guestTasks []task.Task
	if _, err := c.local.Get(guestTasksKey, &guestTasks); err != nil {
		return 0, err
	}
	var guestTags []task.Tag
	if _, err := c.local.Get(guestTagsKey, &guestTags); err != nil {
		return 0, err
	}
	if len(guestTasks) == 0 && len(guestTags) == 0 {
		return 0, nil
	}

	remoteTags, err := c.remote.ListTags(ctx, c.ownerID)
	if err != nil {
		return 0, err
	}
	byName := make(map[string]string, len(remoteTags))
	for _, tag := range remoteTags {
		byName[tag.Name] = tag.ID
	}

	// Guest tag ids are local; map them to account tags by name,
	// creating missing ones.
	idMap := make(map[string]string, len(guestTags))
	for _, tag := range guestTags {
		if existingID, ok := byName[tag.Name]; ok {
			idMap[tag.ID] = existingID
			continue
		}
		created, err := c.remote.CreateTag(ctx, c.ownerID, task.Tag{Name: tag.Name, Color: tag.Color})
		if err != nil {
			return 0, err
		}
		byName[created.Name] = created.ID
		idMap[tag.ID] = created.ID
	}

	migrated := 0
	for _, guestTask := range guestTasks {
		draft := guestTask.Clone()
		draft.ID = ""
		draft.TagIDs = nil
		for _, tagID := range guestTask.TagIDs {
			if mapped, ok := idMap[tagID]; ok {
				draft.TagIDs = append(draft.TagIDs, mapped)
			}
		}
		if _, err := c.remote.CreateTask(ctx, c.ownerID, draft); err != nil {
			return migrated, err
		}
		migrated++
	}

	if err := c.local.Delete(guestTasksKey); err != nil {
		return migrated, err
	}
	if err := c.local.Delete(guestTagsKey); err != nil {
		return migrated, err
	}
	return migrated, c.refetchAuthenticatedLocked(ctx)
}

// RefreshScores asks the scoring HTTP endpoint to rescore the live
// tasks with its model-driven calibration. Endpoint failure is
// non-fatal: the locally computed scores stand and the error is only
// logged. Returns true when endpoint scores were applied.
func (c *Coordinator) RefreshScores(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.scorer == nil || len(c.tasks) == 0 {
		return false
	}

	userID := score.GuestUserID
	if c.mode == ModeAuthenticated {
		userID = c.ownerID
	}

	scores, err := c.scorer.Score(ctx, cloneTasks(c.tasks), userID)
	if err != nil {
		c.logger.Printf("session: scoring endpoint unavailable, local scores stand: %v", err)
		return false
	}

	for i := range c.tasks {
		if s, ok := scores[c.tasks[i].ID]; ok {
			c.tasks[i].AIScore = s
		}
	}
	if c.mode == ModeGuest {
		if err := c.persistGuestLocked(); err != nil {
			c.logger.Printf("session: persist endpoint scores: %v", err)
		}
	}
	return true
}
