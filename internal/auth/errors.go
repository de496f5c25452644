package auth

import (
	"errors"

	apperrors "github.com/spec-kit/gym-platform/pkg/util"
)

// Reason distinguishes resolver failures so clients can tell "please log
// in" apart from "your session is stale."
type Reason string

const (
	ReasonNoToken          Reason = "AUTH_NO_TOKEN"
	ReasonInvalidSignature Reason = "AUTH_BAD_SIGNATURE"
	ReasonExpired          Reason = "AUTH_EXPIRED"
	ReasonIdentityNotFound Reason = "AUTH_UNKNOWN_IDENTITY"
)

// AuthError is returned by the resolver; every reason maps to HTTP 401.
type AuthError struct {
	Reason  Reason
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// Is allows errors.Is comparisons against reason sentinels.
func (e *AuthError) Is(target error) bool {
	var other *AuthError
	if errors.As(target, &other) {
		return e.Reason == other.Reason
	}
	return false
}

// Sentinels for tests and callers.
var (
	ErrNoToken          = &AuthError{Reason: ReasonNoToken, Message: "no session token"}
	ErrInvalidSignature = &AuthError{Reason: ReasonInvalidSignature, Message: "invalid session token"}
	ErrExpired          = &AuthError{Reason: ReasonExpired, Message: "session expired"}
	ErrIdentityNotFound = &AuthError{Reason: ReasonIdentityNotFound, Message: "identity not found"}
)

// ToDomainError maps an AuthError (or anything else) to the HTTP taxonomy.
func ToDomainError(err error) error {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return apperrors.NewUnauthorizedWithCode(string(authErr.Reason), authErr.Message)
	}
	return apperrors.MapError(err)
}
