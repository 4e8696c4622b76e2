package domain

import (
	json "github.com/goccy/go-json"
)

// Flow is a named, ordered sequence of screens presented to an end user,
// together with the schemas of the inputs its caller must provide.
type Flow struct {
	// Slug identifies the flow.
	Slug string `json:"slug" mapstructure:"slug"`

	// ClientSchema describes the less trusted inputs supplied by the
	// client triggering the flow.
	ClientSchema json.RawMessage `json:"client_schema,omitempty"`

	// ServerSchema describes the trusted inputs supplied by the server
	// triggering the flow.
	ServerSchema json.RawMessage `json:"server_schema,omitempty"`

	// Screens are the flow's screen instances, validated in order.
	Screens []FlowScreen `json:"screens" mapstructure:"screens"`
}
