package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/webnyman/three-legged-Oauth/internal/domain/session"
	apperrors "github.com/webnyman/three-legged-Oauth/pkg/errors"
)

// SessionStore persists sessions in PostgreSQL. Session data lives in a
// JSONB column; expiry is enforced on read and swept in the background.
type SessionStore struct {
	db  *DB
	ttl time.Duration
}

// NewSessionStore creates a Postgres-backed session store and ensures its
// schema exists.
func NewSessionStore(db *DB, ttl time.Duration) (*SessionStore, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		data JSONB NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`
	if _, err := db.Pool.Exec(context.Background(), schema); err != nil {
		return nil, apperrors.Wrap(err, "failed to create sessions table")
	}
	return &SessionStore{db: db, ttl: ttl}, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	var data []byte
	err := s.db.Pool.QueryRow(ctx,
		`SELECT data FROM sessions WHERE id = $1 AND expires_at > now()`, id,
	).Scan(&data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session")
	}

	sess, err := session.FromJSON(data)
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

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO sessions (id, data, expires_at, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at, updated_at = now()
	`, sess.ID, data, time.Now().UTC().Add(s.ttl))
	if err != nil {
		return apperrors.Wrap(err, "failed to save session")
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	return nil
}

// DeleteExpired removes sessions past their expiry.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired sessions")
	}
	return tag.RowsAffected(), nil
}

// StartSweeper deletes expired sessions periodically until ctx is done.
func (s *SessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.DeleteExpired(context.Background())
			case <-ctx.Done():
				return
			}
		}
	}()
}
