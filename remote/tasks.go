package remote

import (
	"context"
	"database/sql"

	"github.com/mselway/triage/task"
)

const taskColumns = `id, user_id, title, description, status, priority, progress, due_date, completed_at, ai_score, created_at, updated_at`

// ListTasks fetches all tasks for the owner with their tag sets. The
// task/tag many-to-many relationship is reconstructed from the link
// and tag relations; duplicate link rows collapse to a single tag id.
func (s *Store) ListTasks(ctx context.Context, ownerID string) ([]task.Task, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at ASC, id ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []task.Task
	index := make(map[string]int)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	linkRows, err := s.conn.QueryContext(ctx, `
SELECT task_tags.task_id, tags.id
FROM task_tags
JOIN tags ON tags.id = task_tags.tag_id
WHERE tags.user_id = ?`, ownerID)
	if err != nil {
		return nil, err
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var taskID, tagID string
		if err := linkRows.Scan(&taskID, &tagID); err != nil {
			return nil, err
		}
		if i, ok := index[taskID]; ok {
			tasks[i].AddTagID(tagID)
		}
	}
	return tasks, linkRows.Err()
}

// GetTask fetches a single task with its tag set. Returns
// task.ErrTaskNotFound when no row exists for the owner.
func (s *Store) GetTask(ctx context.Context, ownerID, taskID string) (task.Task, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND id = ?`, ownerID, taskID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return task.Task{}, task.ErrTaskNotFound
	}
	if err != nil {
		return task.Task{}, err
	}

	rows, err := s.conn.QueryContext(ctx, `
SELECT tags.id FROM task_tags
JOIN tags ON tags.id = task_tags.tag_id
WHERE task_tags.task_id = ? AND tags.user_id = ?`, taskID, ownerID)
	if err != nil {
		return task.Task{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return task.Task{}, err
		}
		t.AddTagID(tagID)
	}
	return t, rows.Err()
}

// CreateTask computes the draft's score, persists the task row and one
// link row per attached tag, and returns the stored task. The row and
// link writes share a transaction, so a link failure rolls the task
// row back rather than leaving an orphan.
func (s *Store) CreateTask(ctx context.Context, ownerID string, draft task.Task) (task.Task, error) {
	now := s.now()

	t := draft.Clone()
	t.OwnerID = ownerID
	if t.ID == "" {
		t.ID = task.NewID()
	}
	if t.Status == "" {
		t.Status = task.StatusPending
	}
	// A non-zero CreatedAt survives, like a non-empty id: queued
	// offline creates keep their original creation time on replay.
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	if err := s.rescore(ctx, ownerID, &t); err != nil {
		return task.Task{}, err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return task.Task{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO tasks (`+taskColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Title, t.Description, string(t.Status), string(t.Priority), t.Progress,
		formatTimePtr(t.DueDate), formatTimePtr(t.CompletedAt), t.AIScore,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt)); err != nil {
		return task.Task{}, err
	}

	if err := insertLinks(ctx, tx, t.ID, t.TagIDs); err != nil {
		return task.Task{}, err
	}

	if err := tx.Commit(); err != nil {
		return task.Task{}, err
	}

	s.notifier.notify(ownerID)
	return t, nil
}

// UpdateTask recomputes the score and overwrites the full task row.
// Tag links are replaced wholesale: all existing links are deleted and
// the current tag set re-inserted, so the last writer's full tag set
// wins under concurrency.
func (s *Store) UpdateTask(ctx context.Context, ownerID string, t task.Task) (task.Task, error) {
	t = t.Clone()
	t.OwnerID = ownerID
	t.UpdatedAt = s.now()

	if err := s.rescore(ctx, ownerID, &t); err != nil {
		return task.Task{}, err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return task.Task{}, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
UPDATE tasks
SET title = ?, description = ?, status = ?, priority = ?, progress = ?,
    due_date = ?, completed_at = ?, ai_score = ?, updated_at = ?
WHERE user_id = ? AND id = ?`,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.Progress,
		formatTimePtr(t.DueDate), formatTimePtr(t.CompletedAt), t.AIScore, formatTime(t.UpdatedAt),
		ownerID, t.ID)
	if err != nil {
		return task.Task{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return task.Task{}, err
	}
	if affected == 0 {
		return task.Task{}, task.ErrTaskNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, t.ID); err != nil {
		return task.Task{}, err
	}
	if err := insertLinks(ctx, tx, t.ID, t.TagIDs); err != nil {
		return task.Task{}, err
	}

	if err := tx.Commit(); err != nil {
		return task.Task{}, err
	}

	s.notifier.notify(ownerID)
	return t, nil
}

// DeleteTask removes a task. Link rows go first to satisfy
// referential ordering, then the task row.
func (s *Store) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, taskID); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = ? AND id = ?`, ownerID, taskID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return task.ErrTaskNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.notifier.notify(ownerID)
	return nil
}

// SetScore overwrites a task's stored score without touching anything
// else. Used by the scoring endpoint to persist model-computed scores.
func (s *Store) SetScore(ctx context.Context, ownerID, taskID string, aiScore int) error {
	result, err := s.conn.ExecContext(ctx, `UPDATE tasks SET ai_score = ? WHERE user_id = ? AND id = ?`, aiScore, ownerID, taskID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return task.ErrTaskNotFound
	}
	s.notifier.notify(ownerID)
	return nil
}

// rescore recomputes the task's score against the owner's tag set.
func (s *Store) rescore(ctx context.Context, ownerID string, t *task.Task) error {
	tags, err := s.ListTags(ctx, ownerID)
	if err != nil {
		return err
	}
	t.AIScore = s.scorer.Score(*t, tags, s.now())
	return nil
}

func insertLinks(ctx context.Context, tx *sql.Tx, taskID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)`, taskID, tagID); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (task.Task, error) {
	var (
		t           task.Task
		status      string
		priority    string
		dueDate     sql.NullString
		completedAt sql.NullString
		createdAt   string
		updatedAt   string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &status, &priority, &t.Progress,
		&dueDate, &completedAt, &t.AIScore, &createdAt, &updatedAt); err != nil {
		return task.Task{}, err
	}
	t.Status = task.Status(status)
	t.Priority = task.Priority(priority)

	var err error
	if t.DueDate, err = parseTimePtr(dueDate); err != nil {
		return task.Task{}, err
	}
	if t.CompletedAt, err = parseTimePtr(completedAt); err != nil {
		return task.Task{}, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return task.Task{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return task.Task{}, err
	}
	return t, nil
}
