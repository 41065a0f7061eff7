package domain

import (
	"errors"
	"fmt"
)

// GenericLoginFailure is reported when the remote endpoint gives no reason.
const GenericLoginFailure = "Login failed"

// LoginTimedOutMessage is reported when the credential check exceeds its deadline.
const LoginTimedOutMessage = "Login timed out"

// SessionExpiredMessage is recorded when an expired session is logged out.
const SessionExpiredMessage = "Session expired, please sign in again"

var (
	ErrLoginInProgress  = errors.New("login already in progress")
	ErrSessionCorrupt   = errors.New("persisted session is corrupt")
	ErrSessionNotFound  = errors.New("persisted session not found")
	ErrMissingIdentity  = errors.New("identity token is required")
	ErrMissingEmailPass = errors.New("email and password are required")
)

// Directory errors.
var (
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrUserNotFound             = errors.New("user not found")
	ErrUserExists               = errors.New("user already exists")
	ErrAccountDisabled          = errors.New("account is disabled")
	ErrUnknownRole              = errors.New("unknown role")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrInvalidIdentityToken     = errors.New("invalid identity token")
)

// AuthenticationError reports a failed credential check. Message is shown to
// the operator as is.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return GenericLoginFailure
	}
	return e.Message
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// NewAuthenticationError falls back to the generic message when msg is empty.
func NewAuthenticationError(msg string, cause error) *AuthenticationError {
	if msg == "" {
		msg = GenericLoginFailure
	}
	return &AuthenticationError{Message: msg, Err: cause}
}

// AuthorizationError reports a missing permission grant.
type AuthorizationError struct {
	RequiredPermission string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("Insufficient permissions. Required: %s", e.RequiredPermission)
}
