// Package checker decides whether a resolved input schema may feed a
// resolved screen field, per usage category. It is a pure validation pass:
// no side effects, and every failure is a *domain.PreconditionError.
package checker

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"

	"github.com/mirelo/flowcheck/pkg/domain"
	"github.com/mirelo/flowcheck/pkg/schema"
)

// Sink identifies a screen schema leaf by its declared type and format.
type Sink struct {
	Type   string
	Format string
}

// DefaultUnsafeSinks returns the default denylist of screen fields that must
// never be filled from a client-controlled value: formats the client UI
// renders as raw HTML or treats as privileged navigation or lookup keys.
// The membership is configuration; override it with WithUnsafeSinks.
func DefaultUnsafeSinks() map[Sink]struct{} {
	return map[Sink]struct{}{
		{Type: schema.TypeString, Format: "html"}:        {},
		{Type: schema.TypeString, Format: "url"}:         {},
		{Type: schema.TypeString, Format: "flow_slug"}:   {},
		{Type: schema.TypeString, Format: "course_uid"}:  {},
		{Type: schema.TypeString, Format: "journey_uid"}: {},
	}
}

// Checker validates produced/target schema pairs.
type Checker struct {
	unsafe   map[Sink]struct{}
	external schema.ExternalResolver
}

// Option configures a Checker.
type Option func(*Checker)

// WithUnsafeSinks replaces the unsafe sink denylist.
func WithUnsafeSinks(sinks map[Sink]struct{}) Option {
	return func(c *Checker) {
		c.unsafe = sinks
	}
}

// WithExternalSchemas sets the resolver used to validate extract usage.
func WithExternalSchemas(r schema.ExternalResolver) Option {
	return func(c *Checker) {
		c.external = r
	}
}

// New creates a Checker with the default denylist and no external schemas.
func New(opts ...Option) *Checker {
	c := &Checker{unsafe: DefaultUnsafeSinks()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Input is one produced/target pair to check.
type Input struct {
	// Produced is the schema resolved from the standard, client, or server
	// namespace.
	Produced *schema.Node
	// ProducedExample is the example value the produced schema declares.
	ProducedExample any
	// Target is the schema of the screen field consuming the value.
	Target *schema.Node
	// Usage is how the screen consumes the value.
	Usage domain.UsageCategory
	// Root is the namespace root of the reference.
	Root string
	// ClientSourced is true when Root is the client namespace; it arms the
	// unsafe sink denylist. Server and standard values are trusted.
	ClientSourced bool
	// ExtractedPath navigates the looked-up record for extract usage.
	ExtractedPath domain.Path
	// Field is the error-field prefix for failures, e.g.
	// "screens[0].parameters[1]".
	Field string
}

// Check validates one pair. A nil return means the parameter wiring is
// compatible.
func (c *Checker) Check(in Input) error {
	switch in.Usage {
	case domain.UsageStringFormattable:
		return c.checkStringFormattable(in)
	case domain.UsageCopy:
		return c.checkCopy(in)
	case domain.UsageExtract:
		return c.checkExtract(in)
	default:
		return &domain.PreconditionError{
			Field:    in.Field + ".usage",
			Expected: "to declare a usage of string_formattable, copy, or extract",
			Actual:   fmt.Sprintf("the usage is %q", in.Usage),
		}
	}
}

func (c *Checker) checkStringFormattable(in Input) error {
	if in.ClientSourced {
		if err := c.checkSink(in); err != nil {
			return err
		}
	}
	switch in.Produced.Type {
	case schema.TypeInteger, schema.TypeNumber, schema.TypeString, schema.TypeBoolean:
	default:
		actual := fmt.Sprintf("the input schema has type %q", in.Produced.Type)
		if in.Produced.Type == "" {
			actual = "the input schema declares no type"
		}
		return &domain.PreconditionError{
			Field:    in.Field + ".input_path",
			Expected: "to produce an integer, number, string, or boolean",
			Actual:   actual,
		}
	}
	// An untyped target is a duck-typed leaf and accepts any formatted value.
	if in.Target.Type != "" && in.Target.Type != schema.TypeString {
		return &domain.PreconditionError{
			Field:    in.Field + ".output_path",
			Expected: "to target a string (or untyped) screen field",
			Actual:   fmt.Sprintf("the screen field has type %q", in.Target.Type),
		}
	}
	return nil
}

func (c *Checker) checkCopy(in Input) error {
	if in.ClientSourced {
		if err := c.checkSink(in); err != nil {
			return err
		}
	}
	if err := validateExample(in.Target, in.ProducedExample); err != nil {
		return &domain.PreconditionError{
			Field:    in.Field + ".input_path",
			Expected: "the input example to satisfy the screen field's schema",
			Actual:   err.Error(),
		}
	}
	// Nullability must propagate structurally, not just at the value level:
	// a nullable input can only feed a nullable screen field.
	if in.Produced.Nullable && !in.Target.Nullable {
		return &domain.PreconditionError{
			Field:    in.Field + ".input_path",
			Expected: "to have a nullable target, given that the input is nullable",
			Actual:   "the screen field is not nullable",
		}
	}
	return nil
}

func (c *Checker) checkExtract(in Input) error {
	// Client-provided lookup keys used to synthesize larger values are
	// disallowed: the extraction target is implicitly trusted-format data.
	if in.Root != domain.RootServer {
		return &domain.PreconditionError{
			Field:    in.Field + ".input_path",
			Expected: "to reference a server parameter for extraction",
			Actual:   fmt.Sprintf("the reference is rooted at %q", in.Root),
		}
	}
	if in.Produced.Type != schema.TypeString || in.Produced.Format == "" {
		return &domain.PreconditionError{
			Field:    in.Field + ".input_path",
			Expected: "to produce a string with an extractable format",
			Actual:   fmt.Sprintf("the input schema has type %q and format %q", in.Produced.Type, in.Produced.Format),
		}
	}
	if c.external == nil {
		return &domain.PreconditionError{
			Field:    in.Field + ".input_path",
			Expected: "to produce a string with an extractable format",
			Actual:   "no external schemas are registered",
		}
	}
	doc, ok := c.external.SchemaFor(in.Produced.Format)
	if !ok {
		return &domain.PreconditionError{
			Field:    in.Field + ".input_path",
			Expected: "to produce a string with an extractable format",
			Actual:   fmt.Sprintf("no external schema is registered for format %q", in.Produced.Format),
		}
	}
	extracted, err := schema.Resolve(doc, nil, in.ExtractedPath, schema.ResolveOptions{
		Field:    in.Field + ".extracted_path",
		External: c.external,
	})
	if err != nil {
		return err
	}
	// The extracted value is copied into the screen field, so the copy rules
	// apply; the source is server-trusted, so the sink denylist does not.
	if err := validateExample(in.Target, extracted.Example); err != nil {
		return &domain.PreconditionError{
			Field:    in.Field + ".extracted_path",
			Expected: "the extracted example to satisfy the screen field's schema",
			Actual:   err.Error(),
		}
	}
	if extracted.Nullable && !in.Target.Nullable {
		return &domain.PreconditionError{
			Field:    in.Field + ".extracted_path",
			Expected: "to have a nullable target, given that the input is nullable",
			Actual:   "the screen field is not nullable",
		}
	}
	return nil
}

func (c *Checker) checkSink(in Input) error {
	key := Sink{Type: in.Target.Type, Format: in.Target.Format}
	if _, unsafe := c.unsafe[key]; unsafe {
		return &domain.PreconditionError{
			Field:    in.Field + ".output_path",
			Expected: "to target a screen field that is safe to fill from a client value",
			Actual:   fmt.Sprintf("a field of type %q and format %q must not be client-controlled", key.Type, key.Format),
		}
	}
	return nil
}

// validateExample checks a literal value against a target schema using the
// OAS 3.0 dialect.
func validateExample(target *schema.Node, example any) error {
	data, err := json.Marshal(target)
	if err != nil {
		return fmt.Errorf("failed to serialize the screen field's schema: %w", err)
	}
	var oas openapi3.Schema
	if err := oas.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("the screen field's schema is not a valid OAS 3.0 schema: %w", err)
	}
	return oas.VisitJSON(example)
}
