package domain

import (
	json "github.com/goccy/go-json"
)

// Screen is a reusable UI unit with its own declared parameter schema.
// Flows reference screens by slug; the schema stays serialized so stores can
// round-trip it byte-for-byte and callers can compare snapshots exactly.
type Screen struct {
	// UID is the stable unique identifier of this screen revision.
	UID string `json:"uid"`
	// Slug is the human-readable reference key used by flows.
	Slug string `json:"slug"`
	// Schema is the screen's declared parameter schema document.
	Schema json.RawMessage `json:"schema"`
}

// UnchangedScreen is a (uid, slug, schema) snapshot captured while validating
// a flow. The caller turns the set of these into an optimistic-concurrency
// precondition: each referenced screen must still carry this exact schema at
// commit time. Created during validation, consumed once, then discarded.
type UnchangedScreen struct {
	UID    string
	Slug   string
	Schema json.RawMessage
}

// FlowScreen is one screen instance inside a flow: a reference to a screen
// definition plus the instance's literal fixed values and its required
// parameter declarations.
type FlowScreen struct {
	// Name labels the instance inside the flow, for humans.
	Name string `json:"name" mapstructure:"name"`
	// Screen is the slug of the referenced screen definition.
	Screen string `json:"screen" mapstructure:"screen"`
	// Fixed optionally supplies literal values mirroring the shape of the
	// screen's schema. It disambiguates discriminated unions and marks
	// nullable fields as guaranteed present. Read-only to the validator.
	Fixed any `json:"fixed,omitempty" mapstructure:"fixed"`
	// Parameters are the instance's required parameter declarations, in the
	// order they are validated.
	Parameters []RequiredParameter `json:"parameters" mapstructure:"parameters"`
}
