// Package memory provides an in-memory session store for development and
// tests. Sessions are copied on the way in and out so callers never share
// the stored instance.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/webnyman/three-legged-Oauth/internal/domain/session"
	apperrors "github.com/webnyman/three-legged-Oauth/pkg/errors"
)

type storedSession struct {
	data      []byte
	expiresAt time.Time
}

// SessionStore is a thread-safe in-memory session store with TTL expiry.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]storedSession
	ttl      time.Duration
}

// NewSessionStore creates an in-memory session store.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]storedSession),
		ttl:      ttl,
	}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	stored, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(stored.expiresAt) {
		return nil, apperrors.ErrSessionNotFound
	}
	return session.FromJSON(stored.data)
}

func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	data, err := sess.ToJSON()
	if err != nil {
		return apperrors.Wrap(err, "failed to encode session")
	}

	s.mu.Lock()
	s.sessions[sess.ID] = storedSession{
		data:      data,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// StartJanitor removes expired sessions periodically until ctx is done.
func (s *SessionStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.removeExpired()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *SessionStore) removeExpired() {
	now := time.Now()
	s.mu.Lock()
	for id, stored := range s.sessions {
		if now.After(stored.expiresAt) {
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
}
