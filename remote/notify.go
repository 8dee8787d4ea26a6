package remote

import "sync"

// The change feed is a signal, not a diff: subscribers learn that
// something changed for an owner and refetch. The adapter does not
// deduplicate or debounce; that is the subscriber's job.

type subscription struct {
	ownerID  string
	onChange func()
}

type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]subscription
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]subscription)}
}

// Subscribe registers onChange to fire on any insert/update/delete of
// the owner's tasks or tags. The returned function cancels the
// subscription; no notification is delivered after it returns.
func (s *Store) Subscribe(ownerID string, onChange func()) (unsubscribe func()) {
	n := s.notifier

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = subscription{ownerID: ownerID, onChange: onChange}
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// notify delivers a change signal to every subscriber for the owner.
// Delivery is synchronous under the notifier lock so that cancelled
// subscriptions never observe a late signal.
func (n *notifier) notify(ownerID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, sub := range n.subs {
		if sub.ownerID == ownerID {
			sub.onChange()
		}
	}
}
