// Package identity defines the boundary to the identity provider. The
// rest of the system consumes only two things from it: the current
// user id (or its absence) and a stream of session-change events that
// drives the sync coordinator's state machine. Sign-up/sign-in
// mechanics are outside the core; the file-backed provider here stands
// in for them in the CLI.
package identity

import (
	"sync"
	"time"

	"github.com/mselway/triage/localstore"
)

// Session describes an established identity session.
type Session struct {
	// UserID is the account's owner identifier.
	UserID string `json:"user_id"`

	// SignedInAt is when the session was established.
	SignedInAt time.Time `json:"signed_in_at"`
}

// Event is a session-change notification.
type Event string

const (
	// EventSignedIn fires when a session is established.
	EventSignedIn Event = "signed-in"

	// EventSignedOut fires when the session ends.
	EventSignedOut Event = "signed-out"
)

// Change pairs an event with the session it concerns. For
// EventSignedOut the session is the one that ended.
type Change struct {
	Event   Event
	Session Session
}

// Provider exposes session state and a change-event stream.
type Provider interface {
	// CurrentSession returns the active session, if any.
	CurrentSession() (Session, bool)

	// Subscribe registers fn to receive session changes. The returned
	// function cancels the subscription.
	Subscribe(fn func(Change)) (cancel func())
}

const sessionKey = "session"

// FileProvider is a Provider persisted in local storage, used by the
// CLI where no real identity service exists.
type FileProvider struct {
	store *localstore.Store

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Change)
}

// NewFileProvider creates a provider backed by the given store.
func NewFileProvider(store *localstore.Store) *FileProvider {
	return &FileProvider{store: store, subs: make(map[int]func(Change))}
}

// CurrentSession implements Provider.
func (p *FileProvider) CurrentSession() (Session, bool) {
	var session Session
	found, err := p.store.Get(sessionKey, &session)
	if err != nil || !found || session.UserID == "" {
		return Session{}, false
	}
	return session, true
}

// SignIn establishes a session for the given user id and notifies
// subscribers.
func (p *FileProvider) SignIn(userID string) (Session, error) {
	session := Session{UserID: userID, SignedInAt: time.Now()}
	if err := p.store.Put(sessionKey, &session); err != nil {
		return Session{}, err
	}
	p.broadcast(Change{Event: EventSignedIn, Session: session})
	return session, nil
}

// SignOut ends the current session, if any, and notifies subscribers.
func (p *FileProvider) SignOut() error {
	session, ok := p.CurrentSession()
	if !ok {
		return nil
	}
	if err := p.store.Delete(sessionKey); err != nil {
		return err
	}
	p.broadcast(Change{Event: EventSignedOut, Session: session})
	return nil
}

// Subscribe implements Provider.
func (p *FileProvider) Subscribe(fn func(Change)) (cancel func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *FileProvider) broadcast(change Change) {
	p.mu.Lock()
	subs := make([]func(Change), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}
