package backend

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no backend URL has been set.
var ErrNotConfigured = errors.New("backend not configured")

// FetchError describes a failed request. Status is 0 when the request never
// got a response.
type FetchError struct {
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend unreachable: %s", e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Unauthorized reports whether the backend rejected the token.
func (e *FetchError) Unauthorized() bool { return e.Status == 401 }
