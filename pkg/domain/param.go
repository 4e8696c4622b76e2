package domain

// Namespace roots a parameter reference may be drawn from.
const (
	// RootStandard addresses built-in computed values (see pkg/catalog).
	RootStandard = "standard"
	// RootClient addresses flow-caller-supplied, less trusted values.
	RootClient = "client"
	// RootServer addresses flow-caller-supplied, trusted values.
	RootServer = "server"
)

// UsageCategory describes how a screen field consumes a resolved value.
type UsageCategory string

const (
	// UsageStringFormattable substitutes the value into a format string.
	UsageStringFormattable UsageCategory = "string_formattable"
	// UsageCopy copies the whole value into the screen field.
	UsageCopy UsageCategory = "copy"
	// UsageExtract treats the value as a server-side lookup key and copies a
	// field of the looked-up record. Only legal for server-rooted references.
	UsageExtract UsageCategory = "extract"
)

// Valid reports whether the category is one of the three known usages.
func (u UsageCategory) Valid() bool {
	switch u {
	case UsageStringFormattable, UsageCopy, UsageExtract:
		return true
	}
	return false
}

// RequiredParameter declares one input a screen instance needs.
// These are computed fresh on every validation pass and never persisted.
type RequiredParameter struct {
	// Usage is how the screen consumes the value.
	Usage UsageCategory `json:"usage" mapstructure:"usage"`

	// InputPath says where the value comes from. The first segment must be
	// one of the namespace roots.
	InputPath Path `json:"input_path" mapstructure:"input_path"`

	// OutputPath locates the consuming field within the screen's own
	// declared parameter schema.
	OutputPath Path `json:"output_path" mapstructure:"output_path"`

	// ExtractedPath navigates within the looked-up record for extract
	// usage. Empty for the other categories.
	ExtractedPath Path `json:"extracted_path,omitempty" mapstructure:"extracted_path"`
}

// Root returns the namespace root of the input path, or "" when the path is
// empty or starts with an array index.
func (p RequiredParameter) Root() string {
	return p.InputPath.Root()
}
