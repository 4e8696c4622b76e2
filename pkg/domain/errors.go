package domain

import (
	"errors"
	"fmt"
)

// ErrScreenNotFound is returned by screen stores when a slug is unknown.
var ErrScreenNotFound = errors.New("screen not found")

// PreconditionError reports a structural violation found while validating a
// flow against its screens: a schema-shape mismatch, an illegal null
// propagation, an unsafe sink for a client value, or an unresolvable
// discriminated union. Callers reject the whole mutation (HTTP 412); the
// validation is deterministic, so retrying with the same inputs reproduces
// the same failure.
type PreconditionError struct {
	// Field locates the offending declaration, e.g.
	// "screens[2].parameters[0].input_path[1]".
	Field string
	// Expected describes what the validator needed, e.g.
	// `to have a property named "name"`.
	Expected string
	// Actual describes what it found instead.
	Actual string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("expected %s %s, but %s", e.Field, e.Expected, e.Actual)
}

// SubresourceMissingError reports a reference to a subresource (a screen
// slug) that does not exist. Callers surface it as HTTP 404.
type SubresourceMissingError struct {
	Kind  string // the kind of subresource, e.g. "screen"
	Field string // where the reference appeared, e.g. "screens[3].screen"
	Key   string // the slug or uid that failed to resolve
}

func (e *SubresourceMissingError) Error() string {
	return fmt.Sprintf("the %s %q referenced by %s does not exist", e.Kind, e.Key, e.Field)
}
