package domain

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// PathSegment is one step of a parameter path: either an object property
// name or an array index. Use Key and Index to construct segments.
type PathSegment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns a segment addressing an object property.
func Key(name string) PathSegment {
	return PathSegment{Key: name}
}

// Index returns a segment addressing an array position.
func Index(i int) PathSegment {
	return PathSegment{Index: i, IsIndex: true}
}

func (s PathSegment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// Path is an ordered sequence of segments into a schema document.
// Parameter references are paths whose first segment is one of the
// namespace roots ("standard", "client", "server").
type Path []PathSegment

// NewPath builds a path from raw segments: strings become property keys,
// ints become array indexes.
func NewPath(segments ...any) (Path, error) {
	p := make(Path, 0, len(segments))
	for i, seg := range segments {
		switch v := seg.(type) {
		case string:
			p = append(p, Key(v))
		case int:
			p = append(p, Index(v))
		case int64:
			p = append(p, Index(int(v)))
		case float64:
			// JSON numbers arrive as float64; only whole values are indexes.
			if v != float64(int(v)) {
				return nil, fmt.Errorf("path segment %d: %v is not a whole number", i, v)
			}
			p = append(p, Index(int(v)))
		default:
			return nil, fmt.Errorf("path segment %d: unsupported type %T", i, seg)
		}
	}
	return p, nil
}

// MustPath is NewPath that panics on error, for tests and fixed tables.
func MustPath(segments ...any) Path {
	p, err := NewPath(segments...)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the path in dotted form, e.g. "user.name" or
// "journeys[0].title".
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 && !seg.IsIndex {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Keys returns the property names of a path containing no array indexes.
// The second return is false if any segment is an index.
func (p Path) Keys() ([]string, bool) {
	keys := make([]string, 0, len(p))
	for _, seg := range p {
		if seg.IsIndex {
			return nil, false
		}
		keys = append(keys, seg.Key)
	}
	return keys, true
}

// Root returns the first segment's key, or "" when the path is empty or
// starts with an index.
func (p Path) Root() string {
	if len(p) == 0 || p[0].IsIndex {
		return ""
	}
	return p[0].Key
}

// MarshalJSON encodes the path as a JSON array of strings and integers,
// e.g. ["server","journeys",0,"title"].
func (p Path) MarshalJSON() ([]byte, error) {
	raw := make([]any, len(p))
	for i, seg := range p {
		if seg.IsIndex {
			raw[i] = seg.Index
		} else {
			raw[i] = seg.Key
		}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes a JSON array of strings and integers.
func (p *Path) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewPath(raw...)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
