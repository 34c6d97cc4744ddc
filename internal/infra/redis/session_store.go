package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz-client/internal/app"
	"trivia-quiz-client/internal/infra/memory"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions never leave process memory; Redis only carries a liveness marker
// per attached session so operators can see how many quizzes are running.
// The marker is refreshed while the session stays attached.
type SessionStore struct {
	*memory.SessionStore
	client       *redis.Client
	ttl          time.Duration
	refreshEvery time.Duration

	mu         sync.Mutex
	keepalives map[string]context.CancelFunc
}

// NewSessionStore creates a store whose liveness keys expire after ttl and
// whose detached sessions are dropped after idleTTL.
func NewSessionStore(client *redis.Client, ttl, idleTTL time.Duration) *SessionStore {
	return &SessionStore{
		SessionStore: memory.NewSessionStore(idleTTL),
		client:       client,
		ttl:          ttl,
		refreshEvery: ttl / 2,
		keepalives:   make(map[string]context.CancelFunc),
	}
}

func (s *SessionStore) GetOrCreate(sessionID string) (*app.Session, error) {
	session, err := s.SessionStore.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(sessionID), "1", s.ttl).Err()
	s.startKeepalive(sessionID)
	return session, nil
}

func (s *SessionStore) Release(sessionID string) {
	s.stopKeepalive(sessionID)
	s.SessionStore.Release(sessionID)
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) Delete(sessionID string) {
	s.stopKeepalive(sessionID)
	s.SessionStore.Delete(sessionID)
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) startKeepalive(sessionID string) {
	if s.refreshEvery <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if prev, ok := s.keepalives[sessionID]; ok {
		prev()
	}
	s.keepalives[sessionID] = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.refreshEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = s.client.Expire(ctx, s.key(sessionID), s.ttl).Err()
			}
		}
	}()
}

func (s *SessionStore) stopKeepalive(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.keepalives[sessionID]; ok {
		cancel()
		delete(s.keepalives, sessionID)
	}
}

func (s *SessionStore) key(sessionID string) string {
	return "trivia:session:" + sessionID
}
