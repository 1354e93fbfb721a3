package token

// Error covers signature, expiry and claim failures. Callers are expected
// to convert it into an auth decision; it never reaches a client as-is.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "token: " + e.Reason + ": " + e.Err.Error()
	}
	return "token: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }
