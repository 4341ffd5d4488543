package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one browser session.
type Session struct {
	ID        string
	State     *State
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns when the session was last touched.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}

// Store keeps live sessions in memory.
//
// All methods are thread-safe.
type Store struct {
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	onExpire func(id string)
	logger   Logger
}

// NewStore creates a Store whose sessions expire after idleTimeout without
// activity.
func NewStore(idleTimeout time.Duration) *Store {
	return &Store{
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*Session),
		logger:      noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (st *Store) SetLogger(logger Logger) {
	st.logger = logger
}

// SetOnExpire registers a callback run (outside the store lock) for each
// session removed by Expire or Delete.
func (st *Store) SetOnExpire(fn func(id string)) {
	st.mu.Lock()
	st.onExpire = fn
	st.mu.Unlock()
}

// Create starts a new session with empty state.
func (st *Store) Create() *Session {
	now := st.now()
	s := &Session{
		ID:        uuid.NewString(),
		State:     NewState(),
		CreatedAt: now,
		lastSeen:  now,
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	st.logger.Debug("session created", "session_id", s.ID)
	return s
}

// Get returns the session with id and marks it as active.
// Returns ErrNotFound if the session does not exist.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(st.now())
	return s, nil
}

// Delete removes the session with id.
// Returns ErrNotFound if the session does not exist.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	fn := st.onExpire
	st.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	if fn != nil {
		fn(id)
	}
	st.logger.Debug("session deleted", "session_id", id)
	return nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Expire removes sessions idle for longer than the idle timeout and
// returns their IDs.
func (st *Store) Expire() []string {
	cutoff := st.now().Add(-st.idleTimeout)

	st.mu.Lock()
	var expired []string
	for id, s := range st.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, id)
			delete(st.sessions, id)
		}
	}
	fn := st.onExpire
	st.mu.Unlock()

	for _, id := range expired {
		if fn != nil {
			fn(id)
		}
	}
	if len(expired) > 0 {
		st.logger.Info("expired idle sessions", "count", len(expired))
	}
	return expired
}

// Run expires idle sessions every interval until ctx is cancelled.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Expire()
		}
	}
}
