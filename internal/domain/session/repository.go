package session

import "context"

// Store handles session persistence. Implementations exist for memory,
// Redis, and PostgreSQL; the hosting layer decides which one backs the app.
type Store interface {
	// Get retrieves a session by ID. Returns ErrSessionNotFound if the
	// session does not exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Save creates or replaces a session, refreshing its TTL.
	Save(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error
}
