package schema

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/mirelo/flowcheck/pkg/domain"
)

// ExternalResolver supplies the standard-dialect documents the walker may
// redirect into when it meets an extractable string format (e.g.
// "course_uid"). Implemented by pkg/registry.
type ExternalResolver interface {
	// SchemaFor returns the document registered for a string format.
	SchemaFor(format string) (*Node, bool)
}

// ResolveOptions configures one resolution pass.
type ResolveOptions struct {
	// Field is the error-field prefix for failures, e.g.
	// "screens[0].parameters[1].input_path".
	Field string

	// StartingLevel is the number of path segments the caller already
	// consumed before invoking the walker; it offsets the indexes reported
	// in error fields.
	StartingLevel int

	// AllowAutoExtract lets the walker follow extractable string formats
	// into their external documents mid-path. Enabled for trusted
	// (server-rooted) references only.
	AllowAutoExtract bool

	// External resolves extractable formats. May be nil, which disables
	// auto-extraction regardless of AllowAutoExtract.
	External ExternalResolver
}

// dialect records which schema conventions are in force at the current node.
// The standard dialect carries the $defs of the document it was entered
// through.
type dialect struct {
	standard bool
	defs     map[string]*Node
}

// Resolve descends node along path, consuming fixed in lockstep, and returns
// the sub-schema the path denotes. Every failure is a
// *domain.PreconditionError naming the path position that could not be
// consumed; a nil error guarantees a non-nil node.
//
// fixed is the screen instance's literal value tree (or nil). It is never
// mutated: the walker only reads it to prove presence of nullable values and
// to select discriminated-union branches.
func Resolve(node *Node, fixed any, path domain.Path, opts ResolveOptions) (*Node, error) {
	w := walker{opts: opts, path: path}
	if node == nil {
		return nil, w.failf(0, "to resolve against a schema", "no schema document was provided")
	}
	d := dialect{}
	if node.Defs != nil {
		d = dialect{standard: true, defs: node.Defs}
	}

	idx := 0
	for idx < len(path) {
		remaining := len(path) - idx

		var err error
		node, d, err = w.normalize(node, fixed, remaining, idx, d)
		if err != nil {
			return nil, err
		}

		seg := path[idx]
		switch {
		case node.Type == TypeArray:
			// The segment is consumed positionally; the items schema covers
			// every position, so the index only matters to the fixed tree.
			if !seg.IsIndex {
				return nil, w.failf(idx, "to be addressed by an array index",
					fmt.Sprintf("the path segment %q is a property name and the schema%s is an array", seg.Key, w.at(idx)))
			}
			subFixed, err := w.descendFixedIndex(fixed, seg.Index, remaining, idx)
			if err != nil {
				return nil, err
			}
			if node.Items == nil {
				return nil, w.failf(idx, "to have an items schema",
					fmt.Sprintf("the array schema%s declares no items", w.at(idx)))
			}
			node = node.Items
			fixed = subFixed
			idx++

		default:
			if node.Type != TypeObject {
				actual := fmt.Sprintf("the schema%s has type %q", w.at(idx), node.Type)
				if node.Type == "" {
					actual = fmt.Sprintf("the schema%s declares no type", w.at(idx))
				}
				return nil, w.failf(idx, "to be an object", actual)
			}
			if seg.IsIndex {
				return nil, w.failf(idx, "to be addressed by a property name",
					fmt.Sprintf("the path segment [%d] is an array index and the schema%s is an object", seg.Index, w.at(idx)))
			}

			if node.Properties == nil {
				if node.EnumDiscriminator != "" {
					branch, err := w.selectBranch(node, fixed, idx)
					if err != nil {
						return nil, err
					}
					// Retry the same segment against the selected branch.
					node = branch
					continue
				}
				// No properties and no discriminator: the schema denotes
				// "anything", so any remaining path is trivially valid.
				return &Node{}, nil
			}

			subFixed, err := w.descendFixedKey(fixed, seg.Key, remaining, idx)
			if err != nil {
				return nil, err
			}
			if fixed == nil && remaining > 1 {
				// Presence of intermediate properties must be guaranteed
				// either by the required list or by a fixed literal.
				if !slices.Contains(node.Required, seg.Key) {
					return nil, w.failf(idx, fmt.Sprintf("to mark the property %q required", seg.Key),
						fmt.Sprintf("the object%s does not require %q and no fixed value guarantees it is present", w.at(idx), seg.Key))
				}
			}
			child, ok := node.Properties[seg.Key]
			if !ok || child == nil {
				return nil, w.failf(idx, fmt.Sprintf("to have a property named %q", seg.Key),
					fmt.Sprintf("the object%s has no property named %q", w.at(idx), seg.Key))
			}
			node = child
			fixed = subFixed
			idx++
		}
	}

	// Leave unions and nullability markers on the final node for the
	// compatibility checker, but chase pure indirection so callers never see
	// a bare $ref or a single-element allOf.
	return w.deref(node, d, len(path))
}

// normalize resolves indirection at the current node before a segment is
// consumed: $ref, single-element allOf, and the anyOf nullable idiom in the
// standard dialect; the nullable flag in either dialect; and auto-extract
// redirection into external documents.
func (w *walker) normalize(node *Node, fixed any, remaining, idx int, d dialect) (*Node, dialect, error) {
	for {
		if d.standard {
			switch {
			case node.Ref != "":
				target, err := w.followRef(node.Ref, d, idx)
				if err != nil {
					return nil, d, err
				}
				node = target
				continue
			case len(node.AllOf) > 0:
				// allOf is only ever used to indirect through a $ref.
				if len(node.AllOf) != 1 || node.AllOf[0] == nil {
					return nil, d, w.failf(idx, "to have an allOf with exactly one element",
						fmt.Sprintf("the schema%s has an allOf with %d elements", w.at(idx), len(node.AllOf)))
				}
				node = node.AllOf[0]
				continue
			case len(node.AnyOf) > 0:
				var concrete []*Node
				hasNull := false
				for _, b := range node.AnyOf {
					if b == nil {
						continue
					}
					if b.Type == TypeNull {
						hasNull = true
						continue
					}
					concrete = append(concrete, b)
				}
				if len(concrete) != 1 {
					return nil, d, w.failf(idx, "to have an anyOf with exactly one non-null branch",
						fmt.Sprintf("the schema%s has an anyOf with %d non-null branches", w.at(idx), len(concrete)))
				}
				if hasNull && fixed == nil && remaining > 1 {
					return nil, d, w.failf(idx, "to be set in fixed",
						fmt.Sprintf("the value%s is nullable and not set in fixed, so there is no way to know it is present", w.at(idx)))
				}
				node = concrete[0]
				continue
			}
		}

		if node.Nullable && fixed == nil && remaining > 1 {
			return nil, d, w.failf(idx, "to be set in fixed",
				fmt.Sprintf("the value%s is nullable and not set in fixed, so there is no way to know it is present", w.at(idx)))
		}

		if w.opts.AllowAutoExtract && w.opts.External != nil &&
			node.Type == TypeString && node.Format != "" {
			if doc, ok := w.opts.External.SchemaFor(node.Format); ok {
				// Redirect into the external model and restart at the same
				// path position, now in the standard dialect.
				node = doc
				d = dialect{standard: true, defs: doc.Defs}
				continue
			}
		}

		return node, d, nil
	}
}

type walker struct {
	opts ResolveOptions
	path domain.Path
}

// deref chases $ref and single-element allOf on the final node so the result
// is always a concrete schema. Nullability checks do not apply here: the
// path is exhausted.
func (w *walker) deref(node *Node, d dialect, idx int) (*Node, error) {
	if !d.standard {
		return node, nil
	}
	for {
		switch {
		case node.Ref != "":
			target, err := w.followRef(node.Ref, d, idx)
			if err != nil {
				return nil, err
			}
			node = target
		case len(node.AllOf) == 1 && node.AllOf[0] != nil:
			node = node.AllOf[0]
		default:
			return node, nil
		}
	}
}

func (w *walker) followRef(ref string, d dialect, idx int) (*Node, error) {
	name, ok := strings.CutPrefix(ref, "#/$defs/")
	if !ok {
		return nil, w.failf(idx, `to have a $ref into "#/$defs/"`,
			fmt.Sprintf("the schema%s has $ref %q", w.at(idx), ref))
	}
	target, ok := d.defs[name]
	if !ok || target == nil {
		return nil, w.failf(idx, fmt.Sprintf("to have a $defs entry named %q", name),
			fmt.Sprintf("the document reached%s declares no such definition", w.at(idx)))
	}
	return target, nil
}

// selectBranch resolves a flow-dialect tagged union: the fixed value at the
// discriminator property must match exactly one oneOf branch's single-valued
// enum for that property.
func (w *walker) selectBranch(node *Node, fixed any, idx int) (*Node, error) {
	disc := node.EnumDiscriminator
	m, ok := fixed.(map[string]any)
	if !ok {
		return nil, w.failf(idx, fmt.Sprintf("to have a fixed object carrying the discriminator %q", disc),
			fmt.Sprintf("the fixed value%s is %s", w.at(idx), describeValue(fixed)))
	}
	literal, ok := m[disc]
	if !ok {
		return nil, w.failf(idx, fmt.Sprintf("to have the discriminator %q set in fixed", disc),
			fmt.Sprintf("the fixed object%s has no %q entry", w.at(idx), disc))
	}
	if len(node.OneOf) == 0 {
		return nil, w.failf(idx, "to have a oneOf list of branches",
			fmt.Sprintf("the discriminated schema%s declares no oneOf", w.at(idx)))
	}

	var selected *Node
	matches := 0
	for _, branch := range node.OneOf {
		if branch == nil || branch.Properties == nil {
			continue
		}
		tag := branch.Properties[disc]
		if tag == nil || len(tag.Enum) != 1 {
			continue
		}
		if reflect.DeepEqual(tag.Enum[0], literal) {
			selected = branch
			matches++
		}
	}
	if matches != 1 {
		return nil, w.failf(idx, fmt.Sprintf("the fixed discriminator %q = %v to select exactly one oneOf branch", disc, literal),
			fmt.Sprintf("%d branches%s matched", matches, w.at(idx)))
	}
	return selected, nil
}

// descendFixedKey descends the fixed tree through an object property. A
// missing key yields nil fixed below, which re-arms the nullable and
// required checks.
func (w *walker) descendFixedKey(fixed any, key string, remaining, idx int) (any, error) {
	if fixed == nil {
		return nil, nil
	}
	m, ok := fixed.(map[string]any)
	if !ok {
		return nil, w.failf(idx, "to have an object fixed value",
			fmt.Sprintf("the fixed value%s is %s", w.at(idx), describeValue(fixed)))
	}
	return w.checkSubFixed(m[key], remaining, idx)
}

// descendFixedIndex descends the fixed tree through an array position.
func (w *walker) descendFixedIndex(fixed any, index, remaining, idx int) (any, error) {
	if fixed == nil {
		return nil, nil
	}
	list, ok := fixed.([]any)
	if !ok {
		return nil, w.failf(idx, "to have an array fixed value",
			fmt.Sprintf("the fixed value%s is %s", w.at(idx), describeValue(fixed)))
	}
	if index < 0 || index >= len(list) {
		return nil, w.failf(idx, fmt.Sprintf("to have a fixed array covering index %d", index),
			fmt.Sprintf("the fixed array%s has %d elements", w.at(idx), len(list)))
	}
	return w.checkSubFixed(list[index], remaining, idx)
}

// checkSubFixed enforces the fixed tree contract: below a consumed segment
// that is not the last one, fixed must be an object, an array, or absent.
// Scalar fixed leaves at a non-terminal position are a contract violation.
func (w *walker) checkSubFixed(sub any, remaining, idx int) (any, error) {
	if remaining <= 1 {
		return sub, nil
	}
	switch sub.(type) {
	case nil, map[string]any, []any:
		return sub, nil
	default:
		return nil, w.failf(idx, "to have an object, array, or null fixed value at a non-terminal position",
			fmt.Sprintf("the fixed value%s is %s", w.at(idx+1), describeValue(sub)))
	}
}

// failf builds a precondition error pointing at path position idx.
func (w *walker) failf(idx int, expected, actual string) error {
	return &domain.PreconditionError{
		Field:    fmt.Sprintf("%s[%d]", w.opts.Field, w.opts.StartingLevel+idx),
		Expected: expected,
		Actual:   actual,
	}
}

// at renders the consumed path prefix for error messages, e.g.
// ` at "user.name"`. Empty at the document root.
func (w *walker) at(idx int) string {
	if idx <= 0 || idx > len(w.path) {
		return ""
	}
	return fmt.Sprintf(" at %q", w.path[:idx].String())
}

func describeValue(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case float64, float32, int, int64, json.Number:
		return "a number"
	default:
		return fmt.Sprintf("a %T", v)
	}
}
