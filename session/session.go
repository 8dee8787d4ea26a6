// Package session implements the sync coordinator: the owner of the
// live task and tag collections for the current session.
//
// A session runs in one of two modes. Guest sessions keep everything
// in local storage and score with the degraded calibration.
// Authenticated sessions read and write the remote store, score with
// the reference calibration, subscribe to the store's change feed, and
// fall back to the local mutation queue while offline.
//
// Mutations and refetches are serialized through a single mutex, so a
// refetch's wholesale replace can never interleave with a mutation's
// own state update. Async continuations (debounced refetches,
// provider events) are guarded by a session epoch: anything that
// resolves after the session it belonged to has ended is dropped.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/mselway/triage/identity"
	"github.com/mselway/triage/localstore"
	"github.com/mselway/triage/queue"
	"github.com/mselway/triage/remote"
	"github.com/mselway/triage/score"
	"github.com/mselway/triage/task"
)

// Mode is the coordinator's session state.
type Mode string

const (
	// ModeUninitialized is the state before any session starts.
	ModeUninitialized Mode = "uninitialized"

	// ModeGuest is a local-only session with no identity.
	ModeGuest Mode = "guest"

	// ModeAuthenticated is a session backed by the remote store.
	ModeAuthenticated Mode = "authenticated"

	// ModeSignedOut is the state after an authenticated session ends.
	ModeSignedOut Mode = "signed-out"
)

// GuestOwnerID scopes guest-session data in local storage.
const GuestOwnerID = "guest"

var (
	// ErrNoSession is returned by operations that require an active
	// session (guest or authenticated).
	ErrNoSession = errors.New("no active session")

	// ErrAlreadyActive is returned when activating a session over an
	// existing one.
	ErrAlreadyActive = errors.New("session already active")

	// ErrNotAuthenticated is returned by operations that require an
	// authenticated session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrOffline is returned by operations that cannot be queued for
	// later replay.
	ErrOffline = errors.New("offline")
)

const refetchDebounce = 250 * time.Millisecond

// Options configures a Coordinator.
type Options struct {
	// Provider supplies identity state. Required.
	Provider identity.Provider

	// Remote is the task store adapter. Required for authenticated
	// sessions; guest-only use may leave it nil.
	Remote *remote.Store

	// Local is the local durable storage for guest collections and
	// the mutation queue. Required.
	Local *localstore.Store

	// Scorer optionally points at the scoring HTTP endpoint. Errors
	// from it are non-fatal.
	Scorer *score.RemoteScorer

	// SeedTags is the tag set seeded into fresh sessions (guest or a
	// new account). Nil uses the built-in defaults.
	SeedTags []task.Tag

	// Logger receives subscription failures and drain progress. Nil
	// uses the stdlib default logger.
	Logger *log.Logger
}

// Coordinator owns the in-memory task/tag collections for the current
// session and the machinery that keeps them synchronized.
type Coordinator struct {
	provider identity.Provider
	remote   *remote.Store
	local    *localstore.Store
	scorer   *score.RemoteScorer
	seedTags []task.Tag
	logger   *log.Logger
	now      func() time.Time

	mu       sync.Mutex
	mode     Mode
	ownerID  string
	epoch    int
	online   bool
	strategy score.Strategy
	queue    *queue.Queue
	tasks    []task.Task
	tags     []task.Tag

	unsubscribeStore    func()
	unsubscribeProvider func()
	refetchSignal       chan struct{}
	stopDebounce        chan struct{}
}

// New creates a coordinator in the uninitialized state.
func New(opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	seedTags := opts.SeedTags
	if seedTags == nil {
		for _, def := range task.DefaultTags() {
			seedTags = append(seedTags, task.Tag{Name: def.Name, Color: def.Color})
		}
	}
	c := &Coordinator{
		provider: opts.Provider,
		remote:   opts.Remote,
		local:    opts.Local,
		scorer:   opts.Scorer,
		seedTags: seedTags,
		logger:   logger,
		now:      time.Now,
		mode:     ModeUninitialized,
		online:   true,
	}
	c.unsubscribeProvider = opts.Provider.Subscribe(c.onIdentityChange)
	return c
}

// Mode returns the current session mode.
func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// OwnerID returns the identifier scoping the current session's data.
func (c *Coordinator) OwnerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ownerID
}

// Start establishes the initial session: authenticated when the
// identity provider has a session, otherwise the coordinator stays
// uninitialized until ActivateGuest or a sign-in event.
func (c *Coordinator) Start(ctx context.Context) error {
	if session, ok := c.provider.CurrentSession(); ok {
		return c.authenticate(ctx, session.UserID)
	}
	return nil
}

// ActivateGuest starts a guest session: collections load from local
// storage, the seed tag set is created with fresh ids when no tags
// exist, and the degraded score calibration applies.
func (c *Coordinator) ActivateGuest() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeGuest || c.mode == ModeAuthenticated {
		return ErrAlreadyActive
	}

	c.mode = ModeGuest
	c.ownerID = GuestOwnerID
	c.strategy = score.Degraded{}
	c.epoch++

	if err := c.loadGuestLocked(); err != nil {
		return err
	}
	if len(c.tags) == 0 {
		for _, seed := range c.seedTags {
			c.tags = append(c.tags, task.Tag{
				ID:      task.NewID(),
				OwnerID: GuestOwnerID,
				Name:    seed.Name,
				Color:   seed.Color,
			})
		}
		if err := c.persistGuestLocked(); err != nil {
			return err
		}
	}
	return nil
}

// authenticate transitions to an authenticated session for userID.
func (c *Coordinator) authenticate(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.remote == nil {
		return errors.New("no remote store configured")
	}
	if c.mode == ModeAuthenticated && c.ownerID == userID {
		return nil
	}

	// Guest data is deliberately not merged on promotion; see
	// MigrateGuestData for the explicit path.
	c.teardownLocked()

	c.mode = ModeAuthenticated
	c.ownerID = userID
	c.strategy = score.Reference{}
	c.epoch++
	epoch := c.epoch

	q, err := queue.Open(c.local, userID)
	if err != nil {
		return err
	}
	c.queue = q

	if err := c.refetchAuthenticatedLocked(ctx); err != nil {
		return err
	}
	if len(c.tags) == 0 {
		if _, err := c.remote.SeedDefaultTags(ctx, userID, c.seedTags); err != nil {
			return err
		}
		if err := c.refetchAuthenticatedLocked(ctx); err != nil {
			return err
		}
	}

	c.startRealtimeLocked(epoch)
	return nil
}

// SignOut ends the authenticated session: subscriptions are torn
// down and the in-memory collections cleared. Remote data is left
// untouched.
func (c *Coordinator) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()
	c.mode = ModeSignedOut
}

// DeactivateGuest ends the guest session without promotion, clearing
// the in-memory collections. Local guest data stays on disk.
func (c *Coordinator) DeactivateGuest() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeGuest {
		return
	}
	c.teardownLocked()
	c.mode = ModeUninitialized
}

// Close tears down the session and the identity subscription.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.teardownLocked()
	c.mode = ModeUninitialized
	unsubscribe := c.unsubscribeProvider
	c.unsubscribeProvider = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// teardownLocked cancels subscriptions and clears session state. The
// epoch bump invalidates any in-flight async continuation.
func (c *Coordinator) teardownLocked() {
	c.epoch++
	if c.unsubscribeStore != nil {
		c.unsubscribeStore()
		c.unsubscribeStore = nil
	}
	if c.stopDebounce != nil {
		close(c.stopDebounce)
		c.stopDebounce = nil
	}
	c.refetchSignal = nil
	c.queue = nil
	c.tasks = nil
	c.tags = nil
	c.ownerID = ""
	c.strategy = nil
}

// onIdentityChange drives the state machine from provider events.
func (c *Coordinator) onIdentityChange(change identity.Change) {
	switch change.Event {
	case identity.EventSignedIn:
		if err := c.authenticate(context.Background(), change.Session.UserID); err != nil {
			c.logger.Printf("session: sign-in for %s failed: %v", change.Session.UserID, err)
		}
	case identity.EventSignedOut:
		c.SignOut()
	}
}

// startRealtimeLocked subscribes to the store's change feed. Signals
// are coalesced: bursts of notifications within the debounce window
// trigger a single refetch.
func (c *Coordinator) startRealtimeLocked(epoch int) {
	signal := make(chan struct{}, 1)
	stop := make(chan struct{})
	c.refetchSignal = signal
	c.stopDebounce = stop

	c.unsubscribeStore = c.remote.Subscribe(c.ownerID, func() {
		select {
		case signal <- struct{}{}:
		default:
		}
	})

	go c.debounceLoop(signal, stop, epoch)
}

func (c *Coordinator) debounceLoop(signal <-chan struct{}, stop <-chan struct{}, epoch int) {
	for {
		select {
		case <-stop:
			return
		case <-signal:
		}

		timer := time.NewTimer(refetchDebounce)
	drain:
		for {
			select {
			case <-stop:
				timer.Stop()
				return
			case <-signal:
				// coalesce
			case <-timer.C:
				break drain
			}
		}

		if err := c.refetchIfLive(context.Background(), epoch); err != nil {
			c.logger.Printf("session: realtime refetch failed: %v", err)
		}
	}
}

// refetchIfLive refetches only when the session that scheduled the
// work is still the live one.
func (c *Coordinator) refetchIfLive(ctx context.Context, epoch int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.mode != ModeAuthenticated {
		return nil
	}
	return c.refetchAuthenticatedLocked(ctx)
}
