package auth

import "errors"

// Error kinds surfaced to callers of the auth workflow. Every internal
// failure of an operation is reported as exactly one of these.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
)

const (
	MsgIncorrectCredentials    = "Incorrect email or password"
	MsgNotFound                = "Not found"
	MsgPleaseAuthenticate      = "Please authenticate"
	MsgPasswordResetFailed     = "Password reset failed"
	MsgEmailVerificationFailed = "Email verification failed"
)

// Error pairs an error kind with the fixed message shown to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Unauthenticated(message string) error {
	return &Error{Kind: ErrUnauthenticated, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}
