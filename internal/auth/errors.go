package auth

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is the kind of errors caused by missing, invalid or unknown credentials.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is the kind of errors of authenticated principals lacking a required attribute.
	ErrForbidden = errors.New("forbidden")
)

// Client visible messages.
const (
	MsgNoToken              = "No authorization token provided"
	MsgInvalidToken         = "Invalid or expired token"
	MsgUserNotFound         = "User not found in database"
	MsgAuthenticationFailed = "Authentication failed"

	MsgInvalidCredentials = "Invalid email or password"
	MsgAdminRoleRequired  = "Access denied. Admin role required."
	MsgAccountNotActive   = "Access denied. Account is not active."
	MsgEmailNotVerified   = "Access denied. Email verification required."
	MsgNoPrincipal        = "No admin user found"

	MsgSignInFailed          = "Sign in failed"
	MsgSignOutFailed         = "Sign out failed"
	MsgInvalidRefreshToken   = "Invalid refresh token"
	MsgRefreshFailed         = "Session refresh failed"
	MsgInsufficientAccess    = "Invalid user or insufficient permissions"
	MsgVerificationFailed    = "Token verification failed"
	MsgMissingUserID         = "User ID not found in request"
	MsgMissingAccessToken    = "Access token not found in request"
	MsgSignedOutSuccessfully = "Signed out successfully"
)

// Error is an authentication or authorization failure.
// Its message is safe to return to clients. The cause is kept for logging and
// is not reachable through errors.Unwrap.
type Error struct {
	kind    error
	message string
	cause   error
}

func (e *Error) Error() string {
	return e.message
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.kind
}

// Kind returns ErrUnauthenticated or ErrForbidden.
func (e *Error) Kind() error {
	return e.kind
}

// Message returns the client visible message.
func (e *Error) Message() string {
	return e.message
}

// Cause returns the internal error that led to e, if any.
func (e *Error) Cause() error {
	return e.cause
}

// StatusCode returns the HTTP status of e.
func (e *Error) StatusCode() int {
	if e.kind == ErrForbidden {
		return http.StatusForbidden
	}

	return http.StatusUnauthorized
}

// Unauthenticated creates an error of kind ErrUnauthenticated.
func Unauthenticated(message string, cause error) *Error {
	return &Error{kind: ErrUnauthenticated, message: message, cause: cause}
}

// Forbidden creates an error of kind ErrForbidden.
func Forbidden(message string) *Error {
	return &Error{kind: ErrForbidden, message: message}
}

// asError returns err if it already is an *Error and an Unauthenticated
// error with the fallback message otherwise.
func asError(err error, fallback string) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	return Unauthenticated(fallback, err)
}
