package flowcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mirelo/flowcheck/internal/logging"
	"github.com/mirelo/flowcheck/pkg/adapters/memory"
	"github.com/mirelo/flowcheck/pkg/catalog"
	"github.com/mirelo/flowcheck/pkg/checker"
	"github.com/mirelo/flowcheck/pkg/domain"
	"github.com/mirelo/flowcheck/pkg/ports"
	"github.com/mirelo/flowcheck/pkg/registry"
	"github.com/mirelo/flowcheck/pkg/schema"
)

// Engine is the high-level entry point for the flowcheck library.
// It wires the schema walker, the standard catalog, and the compatibility
// checker into a single validation pass over a flow.
type Engine struct {
	screens  ports.ScreenStore
	external *registry.Registry
	checker  *checker.Checker
	unsafe   map[checker.Sink]struct{}
	logger   *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithScreenStore injects the store screen slugs are resolved against.
// Defaults to an empty in-memory store.
func WithScreenStore(store ports.ScreenStore) Option {
	return func(e *Engine) {
		e.screens = store
	}
}

// WithExternalSchemas replaces the registry of extractable formats.
// Defaults to the embedded course and journey models.
func WithExternalSchemas(r *registry.Registry) Option {
	return func(e *Engine) {
		e.external = r
	}
}

// WithUnsafeSinks replaces the denylist of screen fields that must never be
// filled from client-controlled values.
func WithUnsafeSinks(sinks map[checker.Sink]struct{}) Option {
	return func(e *Engine) {
		e.unsafe = sinks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new validation Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{
		unsafe: checker.DefaultUnsafeSinks(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.screens == nil {
		eng.screens = memory.NewStore()
	}
	if eng.external == nil {
		eng.external = registry.Default()
	}
	eng.checker = checker.New(
		checker.WithUnsafeSinks(eng.unsafe),
		checker.WithExternalSchemas(eng.external),
	)
	return eng
}

// Screens returns the engine's screen store, for callers that register
// definitions through the engine they validate with.
func (e *Engine) Screens() ports.ScreenStore {
	return e.screens
}

// CheckFlowScreens validates every screen instance of the flow: each
// declared required parameter must resolve against the flow's client/server
// schemas (or the standard catalog) and be compatible with the screen's own
// declared parameter schema.
//
// On success it returns the distinct set of referenced screens as
// (uid, slug, schema) snapshots; the caller turns those into an
// optimistic-concurrency precondition guarding the commit. On the first
// violation it returns a *domain.PreconditionError (reject with HTTP 412) or
// a *domain.SubresourceMissingError (HTTP 404) and no snapshots. Screens are
// processed in list order, parameters in declared order.
func (e *Engine) CheckFlowScreens(ctx context.Context, flow *domain.Flow) ([]domain.UnchangedScreen, error) {
	clientSchema, err := parseFlowSchema(flow.ClientSchema, "client_schema")
	if err != nil {
		return nil, err
	}
	serverSchema, err := parseFlowSchema(flow.ServerSchema, "server_schema")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var unchanged []domain.UnchangedScreen

	for i, instance := range flow.Screens {
		screen, err := e.screens.GetScreen(ctx, instance.Screen)
		if errors.Is(err, domain.ErrScreenNotFound) {
			return nil, &domain.SubresourceMissingError{
				Kind:  "screen",
				Field: fmt.Sprintf("screens[%d].screen", i),
				Key:   instance.Screen,
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load screen %q: %w", instance.Screen, err)
		}
		if _, ok := seen[screen.UID]; !ok {
			seen[screen.UID] = struct{}{}
			unchanged = append(unchanged, domain.UnchangedScreen{
				UID:    screen.UID,
				Slug:   screen.Slug,
				Schema: screen.Schema,
			})
		}

		screenSchema, err := schema.Parse(screen.Schema)
		if err != nil {
			return nil, fmt.Errorf("screen %q has a corrupt schema document: %w", screen.Slug, err)
		}

		for j, param := range instance.Parameters {
			if err := e.checkParameter(i, j, param, instance, clientSchema, serverSchema, screenSchema); err != nil {
				return nil, err
			}
		}

		e.logger.Debug("screen instance validated",
			"flow", flow.Slug,
			"screen", screen.Slug,
			"parameters", len(instance.Parameters))
	}

	return unchanged, nil
}

func (e *Engine) checkParameter(
	i, j int,
	param domain.RequiredParameter,
	instance domain.FlowScreen,
	clientSchema, serverSchema, screenSchema *schema.Node,
) error {
	base := fmt.Sprintf("screens[%d].parameters[%d]", i, j)

	if !param.Usage.Valid() {
		return &domain.PreconditionError{
			Field:    base + ".usage",
			Expected: "to declare a usage of string_formattable, copy, or extract",
			Actual:   fmt.Sprintf("the usage is %q", param.Usage),
		}
	}

	root := param.Root()
	var produced *schema.Node
	switch root {
	case domain.RootStandard:
		keys, ok := param.InputPath[1:].Keys()
		if !ok {
			return &domain.PreconditionError{
				Field:    base + ".input_path",
				Expected: "to address a standard parameter by name",
				Actual:   "the path contains an array index",
			}
		}
		produced = catalog.Lookup(keys)
		if produced == nil {
			return &domain.PreconditionError{
				Field:    base + ".input_path",
				Expected: "to reference a recognized standard parameter",
				Actual:   fmt.Sprintf("%q is not a standard parameter", param.InputPath.String()),
			}
		}
	case domain.RootClient:
		var err error
		produced, err = schema.Resolve(clientSchema, nil, param.InputPath[1:], schema.ResolveOptions{
			Field:         base + ".input_path",
			StartingLevel: 1,
			External:      e.external,
		})
		if err != nil {
			return err
		}
	case domain.RootServer:
		var err error
		produced, err = schema.Resolve(serverSchema, nil, param.InputPath[1:], schema.ResolveOptions{
			Field:         base + ".input_path",
			StartingLevel: 1,
			// Extract usage must stop at the lookup key itself; the checker
			// performs the secondary resolution.
			AllowAutoExtract: param.Usage != domain.UsageExtract,
			External:         e.external,
		})
		if err != nil {
			return err
		}
	default:
		return &domain.PreconditionError{
			Field:    base + ".input_path[0]",
			Expected: "to reference a standard, client, or server parameter",
			Actual:   fmt.Sprintf("the path starts with %q", root),
		}
	}

	target, err := schema.Resolve(screenSchema, instance.Fixed, param.OutputPath, schema.ResolveOptions{
		Field:    base + ".output_path",
		External: e.external,
	})
	if err != nil {
		return err
	}

	return e.checker.Check(checker.Input{
		Produced:        produced,
		ProducedExample: produced.Example,
		Target:          target,
		Usage:           param.Usage,
		Root:            root,
		ClientSourced:   root == domain.RootClient,
		ExtractedPath:   param.ExtractedPath,
		Field:           base,
	})
}

// parseFlowSchema decodes a flow input schema document. A missing document
// behaves as an empty object schema: any reference into it fails with a
// precise "no property" error rather than a decode error.
func parseFlowSchema(raw []byte, which string) (*schema.Node, error) {
	if len(raw) == 0 {
		return &schema.Node{
			Type:       schema.TypeObject,
			Properties: map[string]*schema.Node{},
		}, nil
	}
	node, err := schema.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", which, err)
	}
	return node, nil
}
