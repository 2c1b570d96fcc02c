package scheme

import (
	"errors"
	"fmt"
)

// ErrNoSchemeMatch is matched by NoSchemeMatchError via errors.Is.
var ErrNoSchemeMatch = errors.New("no scheme matches")

// NoSchemeMatchError reports a file name no registered pattern accepts. It is
// informational: callers treat the file as an unstructured source.
type NoSchemeMatchError struct {
	Name string
}

func (e *NoSchemeMatchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, ErrNoSchemeMatch)
}

func (e *NoSchemeMatchError) Is(target error) bool { return target == ErrNoSchemeMatch }

// MalformedCoordinateError means a pattern accepted a capture its decoder
// rejects. That is a registry bug, so resolution passes abort on it.
type MalformedCoordinateError struct {
	Name    string
	Scheme  string
	Pattern string
	Group   string
	Raw     string
	Err     error
}

func (e *MalformedCoordinateError) Error() string {
	return fmt.Sprintf("malformed coordinate in %s (scheme %s, pattern %s, group %s=%q): %v",
		e.Name, e.Scheme, e.Pattern, e.Group, e.Raw, e.Err)
}

func (e *MalformedCoordinateError) Unwrap() error { return e.Err }
