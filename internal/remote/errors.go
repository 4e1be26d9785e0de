package remote

import (
	"errors"
	"fmt"
)

// Sentinel errors checked with errors.Is().
var (
	// ErrUnauthorized indicates the token is missing or the backend
	// rejected it (HTTP 401). It is never surfaced inline; callers
	// resolve it by routing to the login surface.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates the login exchange itself was
	// refused (401 from POST /api/login). Distinct from ErrUnauthorized:
	// a failed login is shown inline on the login surface and must not
	// trigger a redirect.
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// APIError is a structured rejection from the backend: any non-2xx
// response other than 401. Detail carries the body's error detail when
// the backend supplied one.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server rejected request (HTTP %d)", e.StatusCode)
}

// ConnError indicates no response was received at all: DNS failure,
// refused connection, timeout. The wrapped transport error is kept for
// logs; user-facing surfaces show a generic connectivity message.
type ConnError struct {
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("cannot reach server: %v", e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}
