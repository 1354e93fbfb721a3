package auth

import "errors"

// Stable result codes. Clients key off these; messages are display text.
const (
	CodeVerificationRequired = "400-1" // email not verified / temp token expired
	CodeDuplicateUsername    = "400-2"
	CodeDuplicateNickname    = "400-3"
	CodeBadCredentials       = "401-1"
	CodeSessionExpired       = "401-2"
	CodeSessionSuperseded    = "401-3"
	CodeUserNotFound         = "404-1"
	CodeImageDeleteFailed    = "500-1"
)

// Error is the auth failure surfaced to handlers: a stable code plus a
// human-readable message.
type Error struct {
	Code string
	Msg  string
	err  error
}

func NewError(code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func WrapError(code, msg string, err error) *Error {
	return &Error{Code: code, Msg: msg, err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Code + ": " + e.Msg + ": " + e.err.Error()
	}
	return e.Code + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.err }

// AsError unwraps err into an *Error if one is in the chain.
func AsError(err error) (*Error, bool) {
	var authErr *Error
	ok := errors.As(err, &authErr)
	return authErr, ok
}
