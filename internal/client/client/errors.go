package client

import "errors"

// Errors shared by the HTTP client and the remote adapters. Callers match
// them with errors.Is; the wrapped message carries the detail.
var (
	// ErrUnavailable covers transport failures and 5xx answers. A sync
	// that fails with it is retried on the next attempt.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized is a 401/403, or a call that needs a session while
	// there is none.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrLocalDataNotAvailable means the local database could not be
	// opened or migrated.
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)
