package memory

import (
	"sync"
	"time"

	"trivia-quiz-client/internal/app"
	"trivia-quiz-client/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Detached sessions are kept for resuming until they have been idle for idleTTL.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	idleTTL  time.Duration
	clock    func() time.Time
}

type sessionEntry struct {
	session    *app.Session
	attached   bool
	releasedAt time.Time
}

// NewSessionStore creates a store; idleTTL <= 0 keeps detached sessions forever.
func NewSessionStore(idleTTL time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		idleTTL:  idleTTL,
		clock:    time.Now,
	}
}

// GetOrCreate attaches the caller to the session, creating it if needed.
// A session attached elsewhere yields domain.ErrSessionBusy.
func (s *SessionStore) GetOrCreate(sessionID string) (*app.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictIdle(s.clock())
	if entry, ok := s.sessions[sessionID]; ok {
		if entry.attached {
			return nil, domain.ErrSessionBusy
		}
		entry.attached = true
		return entry.session, nil
	}
	session := app.NewSession(sessionID)
	s.sessions[sessionID] = &sessionEntry{session: session, attached: true}
	return session, nil
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictIdle(s.clock())
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return entry.session, true
}

// Release detaches the owner; the session stays available for resuming.
func (s *SessionStore) Release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.sessions[sessionID]; ok {
		entry.attached = false
		entry.releasedAt = s.clock()
	}
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Sweep drops detached sessions idle for longer than the TTL and returns how many went.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictIdle(s.clock())
}

// Len returns the number of registered sessions, attached or not.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// evictIdle expects s.mu to be held.
func (s *SessionStore) evictIdle(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}
	evicted := 0
	for id, entry := range s.sessions {
		if !entry.attached && now.Sub(entry.releasedAt) > s.idleTTL {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
