// Package schema models the JSON-Schema-like documents flows and screens
// declare their parameters with, and implements the path walker that resolves
// a parameter reference to the sub-schema it denotes.
//
// Two schema dialects share the Node type. The flow dialect uses a nullable
// flag and the x-enum-discriminator extension to express optionality and
// tagged unions. The standard dialect, entered through documents that carry
// $defs (external course/journey models reached by auto-extraction), uses
// $ref indirection, single-element allOf, and the anyOf nullable idiom.
// The walker tracks the active dialect explicitly rather than inferring it
// at every step.
//
// Resolution is a pure function of its inputs: the same document, fixed
// value tree, and path always produce the same result, and concurrent calls
// need no coordination.
package schema
