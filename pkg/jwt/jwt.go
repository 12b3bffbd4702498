package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/webnyman/three-legged-Oauth/pkg/errors"
)

// Manager signs and verifies the session cookie. The cookie value is an
// HS256 JWT whose subject is the server-side session ID, so a tampered or
// forged cookie never maps to a stored session.
type Manager struct {
	issuer string
	secret []byte
	ttl    time.Duration
}

// NewManager creates a new cookie token manager.
func NewManager(issuer string, secret []byte, ttl time.Duration) *Manager {
	return &Manager{issuer: issuer, secret: secret, ttl: ttl}
}

// SessionClaims represents the claims in a session cookie token.
type SessionClaims struct {
	jwt.RegisteredClaims
	Type string `json:"typ"`
}

// CreateSessionToken creates a signed cookie token for a session ID.
func (m *Manager) CreateSessionToken(sessionID string) (string, error) {
	now := time.Now().UTC()

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		Type: "session",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign session token")
	}

	return signedToken, nil
}

// ParseSessionToken verifies a cookie token and returns the session ID.
func (m *Manager) ParseSessionToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrUnauthorized
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", apperrors.Wrap(err, "invalid session token")
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.Type != "session" || claims.Subject == "" {
		return "", apperrors.ErrUnauthorized
	}

	return claims.Subject, nil
}
