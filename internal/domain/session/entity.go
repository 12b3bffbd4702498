package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Session is the request-scoped session. It is created empty on first
// request, populated by a successful OAuth callback, and cleared on logout,
// a failed callback, or a failed token renewal.
type Session struct {
	ID           string `json:"id"`
	LoggedIn     bool   `json:"logged_in"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Flash        *Flash `json:"flash,omitempty"`

	// OAuthState is the CSRF nonce for the pending authorization attempt.
	// Written at login, checked and cleared at callback. Keeping it in the
	// session gives each attempt its own nonce instead of sharing one
	// across concurrent logins.
	OAuthState string `json:"oauth_state,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an empty anonymous session.
func New() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetTokens stores a token pair and marks the session authenticated. The
// pair is always written together; a failed exchange never reaches here.
func (s *Session) SetTokens(accessToken, refreshToken string) {
	s.AccessToken = accessToken
	s.RefreshToken = refreshToken
	s.LoggedIn = true
	s.UpdatedAt = time.Now().UTC()
}

// Clear resets the session to its anonymous state, keeping the ID.
func (s *Session) Clear() {
	s.LoggedIn = false
	s.AccessToken = ""
	s.RefreshToken = ""
	s.OAuthState = ""
	s.Flash = nil
	s.UpdatedAt = time.Now().UTC()
}

// SetFlash records a one-shot message.
func (s *Session) SetFlash(flashType, text string) {
	s.Flash = &Flash{Type: flashType, Text: text}
	s.UpdatedAt = time.Now().UTC()
}

// TakeFlash returns and clears the pending flash message, if any.
func (s *Session) TakeFlash() *Flash {
	f := s.Flash
	s.Flash = nil
	if f != nil {
		s.UpdatedAt = time.Now().UTC()
	}
	return f
}

// ToJSON serializes the session for storage.
func (s *Session) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// FromJSON deserializes a stored session.
func FromJSON(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
