// Package registry maps extractable string formats (e.g. "course_uid") to
// the standard-dialect schema documents of the records those formats look
// up. The walker redirects through these documents when it auto-extracts a
// server-rooted reference.
package registry

import (
	_ "embed"
	"sync"

	"github.com/mirelo/flowcheck/pkg/schema"
)

//go:embed course.json
var courseDoc []byte

//go:embed journey.json
var journeyDoc []byte

// Formats shipped with the default registry.
const (
	FormatCourseUID  = "course_uid"
	FormatJourneyUID = "journey_uid"
)

// Registry is a thread-safe format -> document table. It implements
// schema.ExternalResolver.
type Registry struct {
	mu   sync.RWMutex
	docs map[string]*schema.Node
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{docs: make(map[string]*schema.Node)}
}

// Default returns a registry preloaded with the embedded course and journey
// models.
func Default() *Registry {
	r := New()
	r.Register(FormatCourseUID, schema.MustParse(courseDoc))
	r.Register(FormatJourneyUID, schema.MustParse(journeyDoc))
	return r
}

// Register adds or replaces the document for a format.
func (r *Registry) Register(format string, doc *schema.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[format] = doc
}

// SchemaFor returns the document registered for format.
func (r *Registry) SchemaFor(format string) (*schema.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[format]
	return doc, ok
}

// Formats returns the registered formats in no particular order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.docs))
	for f := range r.docs {
		out = append(out, f)
	}
	return out
}
