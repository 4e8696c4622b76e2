package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirelo/flowcheck/pkg/schema"
)

func TestDefault_ShipsCourseAndJourney(t *testing.T) {
	r := Default()

	course, ok := r.SchemaFor(FormatCourseUID)
	require.True(t, ok)
	assert.NotNil(t, course.Defs, "external documents must be standard-dialect")

	journey, ok := r.SchemaFor(FormatJourneyUID)
	require.True(t, ok)
	assert.NotNil(t, journey.Defs)

	_, ok = r.SchemaFor("playlist_uid")
	assert.False(t, ok)
}

func TestRegister_Replaces(t *testing.T) {
	r := New()
	r.Register("playlist_uid", &schema.Node{Type: schema.TypeObject})

	doc, ok := r.SchemaFor("playlist_uid")
	require.True(t, ok)
	assert.Equal(t, schema.TypeObject, doc.Type)
	assert.Equal(t, []string{"playlist_uid"}, r.Formats())
}

func TestEmbeddedDocumentsResolve(t *testing.T) {
	r := Default()
	for _, format := range r.Formats() {
		doc, _ := r.SchemaFor(format)
		node, err := schema.Resolve(doc, nil, nil, schema.ResolveOptions{Field: format})
		require.NoError(t, err, "the %s document must dereference cleanly", format)
		assert.Equal(t, schema.TypeObject, node.Type)
		assert.NotEmpty(t, node.Required, "the %s record must require its core fields", format)
	}
}
