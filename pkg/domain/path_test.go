package domain

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPath(t *testing.T) {
	p, err := NewPath("server", "journeys", 0, "title")
	require.NoError(t, err)
	assert.Equal(t, Path{Key("server"), Key("journeys"), Index(0), Key("title")}, p)
}

func TestNewPath_RejectsFractionalIndex(t *testing.T) {
	_, err := NewPath("items", 1.5)
	assert.Error(t, err)
}

func TestNewPath_RejectsUnsupportedType(t *testing.T) {
	_, err := NewPath("items", true)
	assert.Error(t, err)
}

func TestPath_String(t *testing.T) {
	tests := []struct {
		name string
		path Path
		want string
	}{
		{"keys only", MustPath("user", "name"), "user.name"},
		{"with index", MustPath("journeys", 0, "title"), "journeys[0].title"},
		{"single key", MustPath("goal"), "goal"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.path.String())
		})
	}
}

func TestPath_Root(t *testing.T) {
	assert.Equal(t, "client", MustPath("client", "user").Root())
	assert.Equal(t, "", Path{}.Root())
	assert.Equal(t, "", MustPath(0, "title").Root())
}

func TestPath_Keys(t *testing.T) {
	keys, ok := MustPath("name", "given").Keys()
	require.True(t, ok)
	assert.Equal(t, []string{"name", "given"}, keys)

	_, ok = MustPath("items", 0).Keys()
	assert.False(t, ok)
}

func TestPath_JSONRoundTrip(t *testing.T) {
	original := MustPath("server", "journeys", 2, "title")

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `["server","journeys",2,"title"]`, string(data))

	var decoded Path
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestRequiredParameter_Root(t *testing.T) {
	p := RequiredParameter{InputPath: MustPath("standard", "name", "given")}
	assert.Equal(t, RootStandard, p.Root())

	assert.Equal(t, "", RequiredParameter{}.Root())
}

func TestUsageCategory_Valid(t *testing.T) {
	assert.True(t, UsageStringFormattable.Valid())
	assert.True(t, UsageCopy.Valid())
	assert.True(t, UsageExtract.Valid())
	assert.False(t, UsageCategory("paste").Valid())
}
