package flowcheck_test

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowcheck "github.com/mirelo/flowcheck"
	"github.com/mirelo/flowcheck/pkg/domain"
)

const welcomeSchema = `{
	"type": "object",
	"required": ["title"],
	"properties": {
		"title": {"type": "string"},
		"subtitle": {"type": "string"},
		"banner": {"type": "string", "format": "html"}
	}
}`

const playerSchema = `{
	"type": "object",
	"required": ["content"],
	"properties": {
		"content": {
			"type": "object",
			"x-enum-discriminator": "kind",
			"oneOf": [
				{
					"type": "object",
					"required": ["kind", "audio_url"],
					"properties": {
						"kind": {"enum": ["audio"]},
						"audio_url": {"type": "string"}
					}
				},
				{
					"type": "object",
					"required": ["kind", "video_url"],
					"properties": {
						"kind": {"enum": ["video"]},
						"video_url": {"type": "string"}
					}
				}
			]
		}
	}
}`

const clientSchemaDoc = `{
	"type": "object",
	"required": ["mood"],
	"properties": {
		"mood": {"type": "string", "example": "calm"},
		"note": {"type": "string"}
	}
}`

const serverSchemaDoc = `{
	"type": "object",
	"required": ["journey", "greeting"],
	"properties": {
		"journey": {"type": "string", "format": "journey_uid"},
		"greeting": {"type": "string", "example": "Good evening"}
	}
}`

func newEngine(t *testing.T) *flowcheck.Engine {
	t.Helper()
	eng := flowcheck.New()
	ctx := context.Background()
	for slug, doc := range map[string]string{
		"welcome": welcomeSchema,
		"player":  playerSchema,
	} {
		err := eng.Screens().PutScreen(ctx, &domain.Screen{
			Slug:   slug,
			Schema: json.RawMessage(doc),
		})
		require.NoError(t, err)
	}
	return eng
}

func baseFlow(screens ...domain.FlowScreen) *domain.Flow {
	return &domain.Flow{
		Slug:         "evening-winddown",
		ClientSchema: json.RawMessage(clientSchemaDoc),
		ServerSchema: json.RawMessage(serverSchemaDoc),
		Screens:      screens,
	}
}

func requirePrecondition(t *testing.T, err error) *domain.PreconditionError {
	t.Helper()
	var pre *domain.PreconditionError
	require.ErrorAs(t, err, &pre)
	return pre
}

func TestCheckFlowScreens_Valid(t *testing.T) {
	eng := newEngine(t)

	unchanged, err := eng.CheckFlowScreens(context.Background(), baseFlow(
		domain.FlowScreen{
			Name:   "greeting",
			Screen: "welcome",
			Parameters: []domain.RequiredParameter{
				{
					Usage:      domain.UsageStringFormattable,
					InputPath:  domain.MustPath("standard", "name", "given"),
					OutputPath: domain.MustPath("title"),
				},
				{
					Usage:      domain.UsageCopy,
					InputPath:  domain.MustPath("server", "greeting"),
					OutputPath: domain.MustPath("subtitle"),
				},
				{
					Usage:      domain.UsageStringFormattable,
					InputPath:  domain.MustPath("client", "mood"),
					OutputPath: domain.MustPath("subtitle"),
				},
			},
		},
	))
	require.NoError(t, err)
	require.Len(t, unchanged, 1)
	assert.NotEmpty(t, unchanged[0].UID)
	assert.Equal(t, "welcome", unchanged[0].Slug)
	assert.JSONEq(t, welcomeSchema, string(unchanged[0].Schema))
}

func TestCheckFlowScreens_SnapshotsAreDistinct(t *testing.T) {
	eng := newEngine(t)

	instance := domain.FlowScreen{Name: "greeting", Screen: "welcome"}
	again := instance
	again.Name = "farewell"

	unchanged, err := eng.CheckFlowScreens(context.Background(), baseFlow(instance, again,
		domain.FlowScreen{Name: "listen", Screen: "player", Fixed: map[string]any{
			"content": map[string]any{"kind": "audio"},
		}},
	))
	require.NoError(t, err)
	require.Len(t, unchanged, 2, "one snapshot per referenced screen, not per instance")
	assert.Equal(t, "welcome", unchanged[0].Slug)
	assert.Equal(t, "player", unchanged[1].Slug)
}

func TestCheckFlowScreens_UnknownScreenIs404(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.CheckFlowScreens(context.Background(), baseFlow(
		domain.FlowScreen{Name: "greeting", Screen: "welcome"},
		domain.FlowScreen{Name: "missing", Screen: "celebration"},
	))

	var missing *domain.SubresourceMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "screen", missing.Kind)
	assert.Equal(t, "screens[1].screen", missing.Field)
	assert.Equal(t, "celebration", missing.Key)
}

func TestCheckFlowScreens_ClientValueIntoHTMLSink(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.CheckFlowScreens(context.Background(), baseFlow(
		domain.FlowScreen{
			Name:   "greeting",
			Screen: "welcome",
			Parameters: []domain.RequiredParameter{{
				Usage:      domain.UsageStringFormattable,
				InputPath:  domain.MustPath("client", "note"),
				OutputPath: domain.MustPath("banner"),
			}},
		},
	))
	pre := requirePrecondition(t, err)
	assert.Equal(t, "screens[0].parameters[0].output_path", pre.Field)
	assert.Contains(t, pre.Actual, "client-controlled")
}

func TestCheckFlowScreens_ServerValueIntoHTMLSink(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.CheckFlowScreens(context.Background(), baseFlow(
		domain.FlowScreen{
			Name:   "greeting",
			Screen: "welcome",
			Parameters: []domain.RequiredParameter{{
				Usage:      domain.UsageStringFormattable,
				InputPath:  domain.MustPath("server", "greeting"),
				OutputPath: domain.MustPath("banner"),
			}},
		},
	))
	assert.NoError(t, err, "the denylist only guards client-sourced values")
}

func TestCheckFlowScreens_UnknownRoot(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.CheckFlowScreens(context.Background(), baseFlow(
		domain.FlowScreen{
			Name:   "greeting",
			Screen: "welcome",
			Parameters: []domain.RequiredParameter{{
				Usage:      domain.UsageCopy,
				InputPath:  domain.MustPath("session", "mood"),
				OutputPath: domain.MustPath("title"),
			}},
		},
	))
	pre := requirePrecondition(t, err)
	assert.Equal(t, "screens[0].parameters[0].input_path[0]", pre.Field)
	assert.Contains(t, pre.Expected, "standard, client, or server")
}

func TestCheckFlowScreens_UnknownStandardParameter(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.CheckFlowScreens(context.Background(), baseFlow(
		domain.FlowScreen{
			Name:   "greeting",
			Screen: "welcome",
			Parameters: []domain.RequiredParameter{{
				Usage:      domain.UsageStringFormattable,
				InputPath:  domain.MustPath("standard", "shoe_size"),
				OutputPath: domain.MustPath("title"),
			}},
		},
	))
	pre := requirePrecondition(t, err)
	assert.Equal(t, "screens[0].parameters[0].input_path", pre.Field)
	assert.Contains(t, pre.Actual, "standard.shoe_size")
}

func TestCheckFlowScreens_FirstViolationWins(t *testing.T) {
	eng := newEngine(t)

	// Both parameters are broken; scan order pins the report to the first.
	_, err := eng.CheckFlowScreens(context.Background(), baseFlow(
		domain.FlowScreen{
			Name:   "greeting",
			Screen: "welcome",
			Parameters: []domain.RequiredParameter{
				{
					Usage:      domain.UsageStringFormattable,
					InputPath:  domain.MustPath("client", "nonexistent"),
					OutputPath: domain.MustPath("title"),
				},
				{
					Usage:      domain.UsageStringFormattable,
					InputPath:  domain.MustPath("standard", "shoe_size"),
					OutputPath: domain.MustPath("title"),
				},
			},
		},
	))
	pre := requirePrecondition(t, err)
	assert.Contains(t, pre.Field, "screens[0].parameters[0]")
}

func TestCheckFlowScreens_AutoExtractThroughLookupKey(t *testing.T) {
	eng := newEngine(t)

	// The path walks through the journey_uid string into the journey record.
	_, err := eng.CheckFlowScreens(context.Background(), baseFlow(
		domain.FlowScreen{
			Name:   "greeting",
			Screen: "welcome",
			Parameters: []domain.RequiredParameter{{
				Usage:      domain.UsageCopy,
				InputPath:  domain.MustPath("server", "journey", "title"),
				OutputPath: domain.MustPath("title"),
			}},
		},
	))
	assert.NoError(t, err)
}

func TestCheckFlowScreens_ExtractStopsAtLookupKey(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.CheckFlowScreens(context.Background(), baseFlow(
		domain.FlowScreen{
			Name:   "greeting",
			Screen: "welcome",
			Parameters: []domain.RequiredParameter{{
				Usage:         domain.UsageExtract,
				InputPath:     domain.MustPath("server", "journey"),
				OutputPath:    domain.MustPath("title"),
				ExtractedPath: domain.MustPath("audio", "url"),
			}},
		},
	))
	assert.NoError(t, err)
}

func TestCheckFlowScreens_ExtractFromClientIsRejected(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.CheckFlowScreens(context.Background(), baseFlow(
		domain.FlowScreen{
			Name:   "greeting",
			Screen: "welcome",
			Parameters: []domain.RequiredParameter{{
				Usage:         domain.UsageExtract,
				InputPath:     domain.MustPath("client", "mood"),
				OutputPath:    domain.MustPath("title"),
				ExtractedPath: domain.MustPath("title"),
			}},
		},
	))
	pre := requirePrecondition(t, err)
	assert.Contains(t, pre.Expected, "server parameter")
}

func TestCheckFlowScreens_DiscriminatorNeedsFixed(t *testing.T) {
	eng := newEngine(t)

	instance := domain.FlowScreen{
		Name:   "listen",
		Screen: "player",
		Parameters: []domain.RequiredParameter{{
			Usage:      domain.UsageStringFormattable,
			InputPath:  domain.MustPath("client", "mood"),
			OutputPath: domain.MustPath("content", "audio_url"),
		}},
	}

	_, err := eng.CheckFlowScreens(context.Background(), baseFlow(instance))
	requirePrecondition(t, err)

	instance.Fixed = map[string]any{"content": map[string]any{"kind": "audio"}}
	_, err = eng.CheckFlowScreens(context.Background(), baseFlow(instance))
	assert.NoError(t, err)
}

func TestCheckFlowScreens_MissingFlowSchemasActAsEmptyObjects(t *testing.T) {
	eng := newEngine(t)

	flow := &domain.Flow{
		Slug: "bare",
		Screens: []domain.FlowScreen{{
			Name:   "greeting",
			Screen: "welcome",
			Parameters: []domain.RequiredParameter{{
				Usage:      domain.UsageStringFormattable,
				InputPath:  domain.MustPath("client", "mood"),
				OutputPath: domain.MustPath("title"),
			}},
		}},
	}

	_, err := eng.CheckFlowScreens(context.Background(), flow)
	pre := requirePrecondition(t, err)
	assert.Contains(t, pre.Field, "input_path")
	assert.Contains(t, pre.Actual, `"mood"`)
}

func TestCheckFlowScreens_InvalidUsage(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.CheckFlowScreens(context.Background(), baseFlow(
		domain.FlowScreen{
			Name:   "greeting",
			Screen: "welcome",
			Parameters: []domain.RequiredParameter{{
				Usage:      domain.UsageCategory("paste"),
				InputPath:  domain.MustPath("client", "mood"),
				OutputPath: domain.MustPath("title"),
			}},
		},
	))
	pre := requirePrecondition(t, err)
	assert.Equal(t, "screens[0].parameters[0].usage", pre.Field)
}
