package remote

import (
	"context"

	"github.com/mselway/triage/task"
)

// ListTags fetches all tags for the owner.
func (s *Store) ListTags(ctx context.Context, ownerID string) ([]task.Tag, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, user_id, name, color FROM tags WHERE user_id = ? ORDER BY name ASC, id ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []task.Tag
	for rows.Next() {
		var tag task.Tag
		if err := rows.Scan(&tag.ID, &tag.OwnerID, &tag.Name, &tag.Color); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// CreateTag persists a tag for the owner and returns it. An empty id
// gets a server-generated one.
func (s *Store) CreateTag(ctx context.Context, ownerID string, tag task.Tag) (task.Tag, error) {
	tag.OwnerID = ownerID
	if tag.ID == "" {
		tag.ID = task.NewID()
	}
	if _, err := s.conn.ExecContext(ctx, `INSERT INTO tags (id, user_id, name, color) VALUES (?, ?, ?, ?)`,
		tag.ID, tag.OwnerID, tag.Name, tag.Color); err != nil {
		return task.Tag{}, err
	}
	s.notifier.notify(ownerID)
	return tag, nil
}

// SeedDefaultTags creates the given tag set for an owner that has no
// tags yet. A nil set seeds the built-in defaults. It reports whether
// anything was seeded.
func (s *Store) SeedDefaultTags(ctx context.Context, ownerID string, defaults []task.Tag) (bool, error) {
	existing, err := s.ListTags(ctx, ownerID)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	if defaults == nil {
		for _, def := range task.DefaultTags() {
			defaults = append(defaults, task.Tag{Name: def.Name, Color: def.Color})
		}
	}
	for _, def := range defaults {
		if _, err := s.CreateTag(ctx, ownerID, task.Tag{Name: def.Name, Color: def.Color}); err != nil {
			return false, err
		}
	}
	return true, nil
}
