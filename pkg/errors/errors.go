package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these map to specific user-visible behavior
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
	ErrNotLoggedIn     = errors.New("not logged in")

	// OAuth flow errors
	ErrStateMismatch       = errors.New("state parameter mismatch")
	ErrMissingCode         = errors.New("missing_code")
	ErrMissingRefreshToken = errors.New("missing_refresh_token")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports a malformed OAuth request body, such as a token
// exchange attempted without an authorization code.
type ValidationError struct {
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError creates a new validation error.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// AuthenticationError reports a failed authentication step: a non-200
// response from the token or profile endpoints, or a CSRF state mismatch.
type AuthenticationError struct {
	Reason string `json:"reason"`
	Status int    `json:"status,omitempty"`
}

func (e *AuthenticationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d", e.Reason, e.Status)
	}
	return e.Reason
}

// NewAuthenticationError creates a new authentication error.
func NewAuthenticationError(reason string, status int) *AuthenticationError {
	return &AuthenticationError{Reason: reason, Status: status}
}

// UpstreamError reports a network-level failure talking to the remote
// platform, as opposed to a well-formed error response from it.
type UpstreamError struct {
	Operation string `json:"operation"`
	Err       error  `json:"-"`
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Operation, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError wraps a transport error for the given operation.
func NewUpstreamError(operation string, err error) *UpstreamError {
	return &UpstreamError{Operation: operation, Err: err}
}

// ConfigurationError reports registry misuse at registration time: a
// duplicate name, a nil factory, or registration after freeze. These are
// wiring bugs and fatal at startup.
type ConfigurationError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("registry configuration: %s: %s", e.Name, e.Message)
}

// NewConfigurationError creates a new configuration error for an entry name.
func NewConfigurationError(name, message string) *ConfigurationError {
	return &ConfigurationError{Name: name, Message: message}
}

// ResolutionError reports a failed Resolve call: an unregistered name or a
// dependency cycle. Like ConfigurationError, fatal at startup.
type ResolutionError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("registry resolution: %s: %s", e.Name, e.Message)
}

// NewResolutionError creates a new resolution error for an entry name.
func NewResolutionError(name, message string) *ResolutionError {
	return &ResolutionError{Name: name, Message: message}
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
