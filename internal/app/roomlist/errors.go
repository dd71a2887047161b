package roomlist

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleResponse marks a fetch response that resolved after a newer
	// reload intent was issued. It is discarded without touching the store
	// and is never user visible.
	ErrStaleResponse = errors.New("roomlist: stale fetch response discarded")
	// ErrNotAuthenticated is returned when an operation runs with no
	// resolved viewer identity.
	ErrNotAuthenticated = errors.New("roomlist: no authenticated viewer")
)

// TransportError wraps a network/API failure crossing the subsystem boundary.
// Nothing propagates past this package as a raw transport error.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("roomlist: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
