// Package queue implements the durable local mutation queue: an
// ordered log of task operations recorded while no remote write path
// is available, plus an optimistic snapshot of what the remote state
// will look like once the log replays.
//
// The log and snapshot live in a single document so an enqueue and its
// snapshot update are never observable as two separate steps. Replay
// is strict FIFO; entries that fail to replay stay queued, and only
// acknowledged entries are removed.
package queue

import (
	"sync"
	"time"

	"github.com/mselway/triage/localstore"
	"github.com/mselway/triage/task"
)

type state struct {
	Entries  []task.Mutation `json:"entries"`
	Snapshot []task.Task     `json:"snapshot"`
}

// Queue is a durable FIFO mutation log scoped to one owner.
type Queue struct {
	store *localstore.Store
	key   string

	mu sync.Mutex
	st state
}

// Open loads the queue for the given owner from local storage. A
// missing document yields an empty queue.
func Open(store *localstore.Store, owner string) (*Queue, error) {
	q := &Queue{store: store, key: "queue/" + owner}
	if _, err := store.Get(q.key, &q.st); err != nil {
		return nil, err
	}
	return q, nil
}

// Enqueue appends an entry with a fresh id and the current time, and
// applies the operation to the offline snapshot. It never fails: when
// local storage is unavailable the persisted copy is skipped and the
// in-memory queue still reflects the entry for the current session.
func (q *Queue) Enqueue(kind task.MutationKind, payload task.Task) task.Mutation {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry := task.Mutation{
		ID:         task.NewID(),
		Kind:       kind,
		Payload:    payload.Clone(),
		EnqueuedAt: time.Now(),
	}
	q.st.Entries = append(q.st.Entries, entry)
	q.applyToSnapshot(kind, payload)

	// Best-effort persistence; the enqueue itself cannot fail.
	_ = q.store.Put(q.key, &q.st)
	return entry
}

func (q *Queue) applyToSnapshot(kind task.MutationKind, payload task.Task) {
	switch kind {
	case task.MutationCreate:
		q.st.Snapshot = append(q.st.Snapshot, payload.Clone())
	case task.MutationUpdate:
		for i := range q.st.Snapshot {
			if q.st.Snapshot[i].ID == payload.ID {
				q.st.Snapshot[i] = payload.Clone()
				return
			}
		}
		q.st.Snapshot = append(q.st.Snapshot, payload.Clone())
	case task.MutationDelete:
		kept := q.st.Snapshot[:0]
		for _, t := range q.st.Snapshot {
			if t.ID != payload.ID {
				kept = append(kept, t)
			}
		}
		q.st.Snapshot = kept
	}
}

// Drain returns the queued entries in FIFO order without removing
// them. Callers replay the entries and then acknowledge the ones that
// succeeded.
func (q *Queue) Drain() []task.Mutation {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := make([]task.Mutation, len(q.st.Entries))
	copy(entries, q.st.Entries)
	return entries
}

// Ack removes the entries with the given ids, preserving the order of
// everything else. Entries that failed to replay are simply not
// acknowledged and remain queued for a later attempt.
func (q *Queue) Ack(ids ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	acked := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		acked[id] = struct{}{}
	}

	kept := q.st.Entries[:0]
	for _, entry := range q.st.Entries {
		if _, ok := acked[entry.ID]; !ok {
			kept = append(kept, entry)
		}
	}
	q.st.Entries = kept

	if len(q.st.Entries) == 0 {
		q.st.Snapshot = nil
	}
	return q.store.Put(q.key, &q.st)
}

// Clear empties the queue and its snapshot. Only call this once every
// drained entry has been successfully replayed.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.st = state{}
	return q.store.Delete(q.key)
}

// Snapshot returns the optimistic offline view of the remote tasks:
// queued creates appended, updates applied, deletes removed.
func (q *Queue) Snapshot() []task.Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	tasks := make([]task.Task, len(q.st.Snapshot))
	for i, t := range q.st.Snapshot {
		tasks[i] = t.Clone()
	}
	return tasks
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.st.Entries)
}
