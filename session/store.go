// Package session implements the in-memory conversation store: opaque
// session identifiers mapped to ordered histories with creation and access
// timestamps and an expiry policy. The store is the single source of truth
// for history ordering; callers receive copies and never retain a session
// reference past a single call.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poegate/poegate"
)

// DefaultExpiry is the session expiry window used when none is configured.
const DefaultExpiry = 60 * time.Minute

// Store is an in-memory session map shared across concurrently handled
// requests. All mutations run under the lock, so the (user, bot) turn pair
// written by Update can never interleave with another update to the same
// session.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*poegate.Session
	window   time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore creates a session store with the given expiry window. A session
// is expired once now > last_accessed + window.
func NewStore(window time.Duration, opts ...Option) *Store {
	if window <= 0 {
		window = DefaultExpiry
	}
	s := &Store{
		sessions: make(map[string]*poegate.Session),
		window:   window,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.log.Info("session store initialized", "expiry", window)
	return s
}

// Create allocates a fresh session with a unique identifier and an empty
// history. It never fails.
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *Store) createLocked() string {
	id := uuid.NewString()
	now := s.now()
	s.sessions[id] = &poegate.Session{ID: id, CreatedAt: now, LastAccessedAt: now}
	s.log.Debug("created session", "session_id", id)
	return id
}

// Get returns a copy of the session if present and not expired, touching
// its access time. An expired session is deleted as a side effect.
func (s *Store) Get(id string) (poegate.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.lookupLocked(id)
	if !ok {
		return poegate.Session{}, false
	}
	sess.LastAccessedAt = s.now()
	cp := *sess
	cp.Messages = append([]poegate.Message(nil), sess.Messages...)
	return cp, true
}

// GetOrCreate returns id unchanged after touching its access time when the
// session is live, and a freshly created id when id is empty, unknown or
// expired.
func (s *Store) GetOrCreate(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		if sess, ok := s.lookupLocked(id); ok {
			sess.LastAccessedAt = s.now()
			s.log.Debug("resumed session", "session_id", id)
			return id
		}
	}
	return s.createLocked()
}

// Update appends one (user, bot) turn pair atomically and touches the
// access time. Returns false, without error, when the session is absent or
// expired.
func (s *Store) Update(id, userText, botText string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.lookupLocked(id)
	if !ok {
		s.log.Debug("cannot update missing session", "session_id", id)
		return false
	}
	sess.Messages = append(sess.Messages,
		poegate.Message{Role: poegate.RoleUser, Content: userText},
		poegate.Message{Role: poegate.RoleBot, Content: botText},
	)
	sess.LastAccessedAt = s.now()
	return true
}

// Delete removes the session. Returns false when it was not present.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	s.log.Debug("deleted session", "session_id", id)
	return true
}

// Messages returns the ordered history with legacy role labels normalized
// to their canonical form. Absent or expired sessions yield an empty
// history.
func (s *Store) Messages(id string) []poegate.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.lookupLocked(id)
	if !ok {
		return nil
	}
	sess.LastAccessedAt = s.now()
	msgs := make([]poegate.Message, len(sess.Messages))
	for i, m := range sess.Messages {
		m.Role = poegate.NormalizeRole(m.Role)
		msgs[i] = m
	}
	return msgs
}

// SweepExpired scans all sessions and deletes every expired entry,
// returning the count removed. The store is not self-scheduling; sweeping
// is driven by an external timer such as [Sweeper].
func (s *Store) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expiredLocked(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.log.Info("cleaned up expired sessions", "count", removed)
	}
	return removed
}

// Len reports the number of stored sessions, expired entries included
// until the next sweep.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// lookupLocked resolves a live session, deleting it when expired.
func (s *Store) lookupLocked(id string) (*poegate.Session, bool) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expiredLocked(sess) {
		delete(s.sessions, id)
		s.log.Debug("session expired", "session_id", id)
		return nil, false
	}
	return sess, true
}

func (s *Store) expiredLocked(sess *poegate.Session) bool {
	return s.now().After(sess.LastAccessedAt.Add(s.window))
}
