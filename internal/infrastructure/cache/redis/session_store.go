package redis

import (
	"context"
	"time"

	"github.com/webnyman/three-legged-Oauth/internal/domain/session"
	apperrors "github.com/webnyman/three-legged-Oauth/pkg/errors"
)

const sessionKeyPrefix = "session:"

// SessionStore persists sessions in Redis as JSON values with a TTL.
type SessionStore struct {
	client *Client
	ttl    time.Duration
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client *Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+id)
	if err != nil {
		if IsNil(err) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session")
	}

	sess, err := session.FromJSON([]byte(data))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decode session")
	}
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	data, err := sess.ToJSON()
	if err != nil {
		return apperrors.Wrap(err, "failed to encode session")
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sess.ID, data, s.ttl); err != nil {
		return apperrors.Wrap(err, "failed to save session")
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, sessionKeyPrefix+id); err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	return nil
}
