// Package loader reads flow and screen definitions from YAML or JSON files
// for the CLI. Schema payloads stay serialized as JSON so the engine and the
// stores see the same bytes a backend would persist.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/mirelo/flowcheck/pkg/domain"
)

// LoadFlow reads a flow definition from path (.yaml, .yml, or .json).
func LoadFlow(path string) (*domain.Flow, error) {
	raw, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	clientSchema, err := extractSchema(raw, "client_schema")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	serverSchema, err := extractSchema(raw, "server_schema")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var flow domain.Flow
	if err := decodeInto(raw, &flow); err != nil {
		return nil, fmt.Errorf("%s: invalid flow definition: %w", path, err)
	}
	flow.ClientSchema = clientSchema
	flow.ServerSchema = serverSchema
	return &flow, nil
}

// LoadScreens reads every screen definition (.yaml, .yml, .json) in dir.
func LoadScreens(dir string) ([]*domain.Screen, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read screen library %s: %w", dir, err)
	}

	var screens []*domain.Screen
	for _, entry := range entries {
		if entry.IsDir() || !isDefinitionFile(entry.Name()) {
			continue
		}
		screen, err := LoadScreen(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		screens = append(screens, screen)
	}
	return screens, nil
}

// LoadScreen reads a single screen definition.
func LoadScreen(path string) (*domain.Screen, error) {
	raw, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	schemaDoc, err := extractSchema(raw, "schema")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var screen domain.Screen
	if err := decodeInto(raw, &screen); err != nil {
		return nil, fmt.Errorf("%s: invalid screen definition: %w", path, err)
	}
	screen.Schema = schemaDoc
	if screen.Slug == "" {
		return nil, fmt.Errorf("%s: screen definition has no slug", path)
	}
	return &screen, nil
}

func decodeFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: invalid JSON: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: invalid YAML: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported definition format %q", path, filepath.Ext(path))
	}
	return raw, nil
}

// extractSchema pulls a schema subtree out of the decoded document and
// re-serializes it as JSON. The key is removed so the struct decode below
// does not see it.
func extractSchema(raw map[string]any, key string) (json.RawMessage, error) {
	sub, ok := raw[key]
	if !ok || sub == nil {
		return nil, nil
	}
	delete(raw, key)
	data, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return json.RawMessage(data), nil
}

// decodeInto maps the decoded document onto a definition struct, converting
// path arrays (["server","journey",0,"title"]) into domain.Path values.
func decodeInto(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		DecodeHook: pathHook,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

var pathType = reflect.TypeOf(domain.Path{})

func pathHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != pathType {
		return data, nil
	}
	segments, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("a parameter path must be an array of names and indexes, got %T", data)
	}
	return domain.NewPath(segments...)
}

func isDefinitionFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
