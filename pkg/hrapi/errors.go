package hrapi

import (
	"errors"
	"fmt"
)

// Error describes a failed call to the HR API.
// Status is zero when the request never produced a response; Err is set for transport and decode failures.
type Error struct {
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("hrapi %s: %v", e.Op, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("hrapi %s: status %d: %s", e.Op, e.Status, e.Detail)
	default:
		return fmt.Sprintf("hrapi %s: status %d", e.Op, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Rejected reports whether the upstream answered with an error status rather than failing in transit.
func (e *Error) Rejected() bool { return e.Err == nil && e.Status >= 400 }

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
