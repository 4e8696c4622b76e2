package ports

import (
	"context"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirelo/flowcheck/pkg/domain"
)

// RunScreenStoreContract runs a suite of tests to verify that a ScreenStore
// implementation adheres to the defined interface contract.
func RunScreenStoreContract(t *testing.T, store ScreenStore) {
	ctx := context.Background()
	slug := "contract-test-screen-" + time.Now().Format("20060102150405")
	schemaDoc := json.RawMessage(`{"type":"object","required":["title"],"properties":{"title":{"type":"string"}}}`)

	t.Run("Put and Get", func(t *testing.T) {
		screen := &domain.Screen{Slug: slug, Schema: schemaDoc}
		err := store.PutScreen(ctx, screen)
		require.NoError(t, err, "PutScreen should not return error")

		loaded, err := store.GetScreen(ctx, slug)
		require.NoError(t, err, "GetScreen should not return error")
		assert.Equal(t, slug, loaded.Slug)
		assert.NotEmpty(t, loaded.UID, "stores must assign a UID when none is given")
		assert.JSONEq(t, string(schemaDoc), string(loaded.Schema), "schema must round-trip")
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.GetScreen(ctx, "non-existent-"+slug)
		assert.ErrorIs(t, err, domain.ErrScreenNotFound)
	})

	t.Run("Replace keeps slug stable", func(t *testing.T) {
		updated := &domain.Screen{
			UID:    "scr_fixed_uid",
			Slug:   slug,
			Schema: json.RawMessage(`{"type":"object","properties":{}}`),
		}
		require.NoError(t, store.PutScreen(ctx, updated))

		loaded, err := store.GetScreen(ctx, slug)
		require.NoError(t, err)
		assert.Equal(t, "scr_fixed_uid", loaded.UID, "an explicit UID must be preserved")
	})

	t.Run("List", func(t *testing.T) {
		other := &domain.Screen{Slug: slug + "-other", Schema: schemaDoc}
		require.NoError(t, store.PutScreen(ctx, other))

		slugs, err := store.ListScreens(ctx)
		require.NoError(t, err)
		assert.Contains(t, slugs, slug)
		assert.Contains(t, slugs, slug+"-other")
	})
}
