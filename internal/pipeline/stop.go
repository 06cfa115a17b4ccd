package pipeline

import (
	"errors"
	"fmt"
)

// StopError halts a run early. It is an expected outcome, not a failure: Run
// logs the reason and returns nil.
type StopError struct {
	Reason string
}

func (e *StopError) Error() string { return "pipeline stopped: " + e.Reason }

// Stop returns a StopError with the given reason.
func Stop(reason string) error { return &StopError{Reason: reason} }

// Stopf formats a StopError reason.
func Stopf(format string, args ...any) error {
	return &StopError{Reason: fmt.Sprintf(format, args...)}
}

// IsStop reports whether err is or wraps a StopError and returns it.
func IsStop(err error) (*StopError, bool) {
	var se *StopError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
