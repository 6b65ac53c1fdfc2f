package hunt

import (
	"errors"
	"fmt"
)

// Sentinel errors for the lookup and identity failure classes. Callers
// match them with errors.Is and translate to their transport's error
// shape.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("invalid or expired session")

	// ErrExhausted signals that a team has burned through its attempts
	// and has no mercy challenge left for the current phase. It is a
	// game outcome, not a caller mistake: the team must be hard-reset.
	ErrExhausted = errors.New("attempts exhausted")
)

// ValidationError reports malformed caller input, naming the field at
// fault.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StateConflictError reports an operation that is well-formed but not
// legal in the game's current state (starting an ineligible game,
// joining a full team, stopping a game that is not running). Retrying
// the same request will not help.
type StateConflictError struct {
	Reason string
}

func (e *StateConflictError) Error() string {
	return e.Reason
}

// Conflict builds a StateConflictError.
func Conflict(format string, args ...any) error {
	return &StateConflictError{Reason: fmt.Sprintf(format, args...)}
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
