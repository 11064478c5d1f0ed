package booking

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"salonbook/internal/model"
)

// Session is one customer's wizard together with its catalog snapshot.
type Session struct {
	ID            string
	Wizard        Wizard
	Services      []model.Service
	Professionals []model.Professional
	StartedAt     time.Time
	UpdatedAt     time.Time
	mu            sync.Mutex
}

// NewSession creates a session holding an empty wizard.
func NewSession(now time.Time, rules Rules) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Wizard:    New(now, rules),
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot returns a copy of the wizard state.
func (s *Session) Snapshot() Wizard {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.Wizard
	w.Selection = s.Wizard.Selection.clone()
	return w
}

// IsExpired checks if the session has been idle longer than timeout.
func (s *Session) IsExpired(now time.Time, timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.UpdatedAt) > timeout
}

// SessionStore keeps wizard sessions in memory.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	timeout  time.Duration
	now      func() time.Time
}

// NewSessionStore creates a new session store.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		now:      time.Now,
	}
}

// Add registers a session.
func (ss *SessionStore) Add(s *Session) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[s.ID] = s
}

// Get returns a live session or nil.
func (ss *SessionStore) Get(id string) *Session {
	ss.mu.RLock()
	s, ok := ss.sessions[id]
	ss.mu.RUnlock()
	if !ok || s.IsExpired(ss.now(), ss.timeout) {
		return nil
	}
	return s
}

// Delete removes a session. Abandoning a wizard needs no other cleanup.
func (ss *SessionStore) Delete(id string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, id)
}

// Len returns the number of stored sessions.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// Cleanup removes expired sessions.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := ss.now()
	removed := 0
	for id, s := range ss.sessions {
		if s.IsExpired(now, ss.timeout) {
			delete(ss.sessions, id)
			removed++
		}
	}
	return removed
}

// SetClock overrides the time source used for expiry checks.
func (ss *SessionStore) SetClock(now func() time.Time) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.now = now
}
