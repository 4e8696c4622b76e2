// Package catalog holds the fixed table of standard parameters: well-known
// computed values every flow may reference without declaring them in its own
// schemas. Lookup is a flat map access; the standard namespace is always
// fully determined without per-instance data, so there is no traversal and
// no fixed-value interaction.
package catalog

import (
	"strings"

	"github.com/mirelo/flowcheck/pkg/schema"
)

// standard maps dotted parameter paths to their constant schemas. Every
// entry carries an example so copy-usage validation has a value to check.
var standard = map[string]*schema.Node{
	"name.given":  {Type: schema.TypeString, Example: "John"},
	"name.family": {Type: schema.TypeString, Example: "Smith"},
	"name.full":   {Type: schema.TypeString, Example: "John Smith"},
	"time_of_day": {Type: schema.TypeString, Example: "morning"},
	"goal":        {Type: schema.TypeString, Example: "Sleep better"},
	"merge.url":   {Type: schema.TypeString, Example: "https://app.example.com/merge/abc123"},
}

// Lookup returns the schema of the standard parameter at path, or nil when
// the path is not a recognized standard parameter. A nil return is not an
// error; the caller decides how to report unknown references.
func Lookup(path []string) *schema.Node {
	return standard[strings.Join(path, ".")]
}

// Paths returns the recognized standard parameter paths in no particular
// order, for introspection and documentation tooling.
func Paths() []string {
	out := make([]string, 0, len(standard))
	for k := range standard {
		out = append(out, k)
	}
	return out
}
