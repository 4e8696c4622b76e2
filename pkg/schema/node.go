package schema

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Scalar type names used by schema documents.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeNull    = "null"
)

// Discriminator is the extension key naming the property that selects a
// oneOf branch in the flow dialect.
const Discriminator = "x-enum-discriminator"

// Node is a single node of a schema document. A zero Node is the empty
// schema, which accepts anything.
type Node struct {
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Nullable marks an optional value in the flow dialect (and in OAS 3.0
	// documents). The standard dialect instead wraps the node in an anyOf
	// with a null branch.
	Nullable bool `json:"nullable,omitempty"`

	// Object form.
	Properties map[string]*Node `json:"properties,omitempty"`
	Required   []string         `json:"required,omitempty"`

	// Array form.
	Items *Node `json:"items,omitempty"`

	// Scalar constraints.
	Enum    []any `json:"enum,omitempty"`
	Example any   `json:"example,omitempty"`

	// Union and indirection forms.
	AnyOf []*Node `json:"anyOf,omitempty"`
	AllOf []*Node `json:"allOf,omitempty"`
	OneOf []*Node `json:"oneOf,omitempty"`
	Ref   string  `json:"$ref,omitempty"`

	// Defs holds named sub-schemas addressed via "#/$defs/<name>". A
	// non-nil Defs marks the document as standard-dialect.
	Defs map[string]*Node `json:"$defs,omitempty"`

	// EnumDiscriminator names the sibling property whose fixed literal
	// selects a oneOf branch (flow dialect tagged unions).
	EnumDiscriminator string `json:"x-enum-discriminator,omitempty"`
}

// Parse decodes a schema document.
func Parse(data []byte) (*Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}
	return &n, nil
}

// MustParse is Parse that panics on error, for embedded documents and tests.
func MustParse(data []byte) *Node {
	n, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return n
}

// Encode serializes the node back to JSON.
func (n *Node) Encode() ([]byte, error) {
	return json.Marshal(n)
}

// IsEmpty reports whether the node is the empty schema, the "anything goes"
// escape hatch the walker returns for loosely-typed leaves.
func (n *Node) IsEmpty() bool {
	return n.Type == "" && n.Format == "" && !n.Nullable &&
		n.Properties == nil && n.Items == nil &&
		len(n.Enum) == 0 && len(n.AnyOf) == 0 && len(n.AllOf) == 0 &&
		len(n.OneOf) == 0 && n.Ref == "" && n.Defs == nil &&
		n.EnumDiscriminator == ""
}
