package session

import (
	"log/slog"
	"sync"

	"github.com/Erkan3034/yurtgate/credstore"
	"github.com/Erkan3034/yurtgate/users"
)

// subscriberBuffer is the channel capacity handed to each subscriber.
// Slow consumers miss intermediate states, never the store's current
// one: every notification is a full snapshot, so the latest delivered
// state is always self-contained.
const subscriberBuffer = 16

// Store is the single source of truth for authentication state. All
// mutations are whole-state swaps under one mutex, so no observer can
// see a partially updated session. Durable credential writes happen
// outside the lock; they are the only I/O this type performs.
type Store struct {
	creds  credstore.Store
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]chan State
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger used for persistence warnings.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty, unresolved session Store that persists
// tokens through creds.
func NewStore(creds credstore.Store, opts ...Option) *Store {
	s := &Store{
		creds: creds,
		subs:  make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// State returns a synchronous snapshot of the session.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// AccessToken returns the current bearer token, or "" when anonymous.
// It exists so the API client can read the live token on every call.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccessToken
}

// SetTokens stores both tokens in memory and persists them so a
// restart survives. It performs no validation of the tokens; the first
// authenticated call is where a bad token surfaces.
func (s *Store) SetTokens(access, refresh string) {
	s.mu.Lock()
	s.state.AccessToken = access
	s.state.RefreshToken = refresh
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.creds.Save(credstore.Credentials{AccessToken: access, RefreshToken: refresh}); err != nil {
		s.logger.Warn("persisting credentials failed; session will not survive a restart", "error", err)
	}
	s.publish(snap)
}

// SetUser replaces the cached profile wholesale and marks the session
// resolved. Tokens are untouched.
func (s *Store) SetUser(profile *users.Profile) {
	s.mu.Lock()
	s.state.User = profile.Clone()
	s.state.Phase = Resolved
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// Logout clears tokens and profile, removes persisted credentials, and
// marks the session resolved (anonymous). It is idempotent and always
// succeeds; a failed durable delete is logged, not surfaced.
func (s *Store) Logout() {
	s.mu.Lock()
	s.state = State{Phase: Resolved}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.creds.Delete(); err != nil {
		s.logger.Warn("removing persisted credentials failed", "error", err)
	}
	s.publish(snap)
}

// resolveAnonymous marks an empty session resolved without touching
// durable storage. Used by the bootstrapper when nothing is persisted.
func (s *Store) resolveAnonymous() {
	s.mu.Lock()
	s.state.Phase = Resolved
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// Subscribe registers an observer. Every session mutation delivers a
// snapshot on the returned channel. The returned function unsubscribes
// and closes the channel; it is safe to call more than once.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan State, subscriberBuffer)
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// snapshotLocked copies the current state. Caller holds s.mu.
func (s *Store) snapshotLocked() State {
	snap := s.state
	snap.User = s.state.User.Clone()
	return snap
}

func (s *Store) publish(snap State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Subscriber is not keeping up; it will catch the next state.
		}
	}
}
