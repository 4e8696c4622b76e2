package ports

import (
	"context"

	"github.com/mirelo/flowcheck/pkg/domain"
)

// ScreenStore resolves reusable screen definitions by slug.
// This allows the storage layer (memory, Redis, SQL) to be decoupled from
// the validation engine.
type ScreenStore interface {
	// GetScreen retrieves the screen registered under slug.
	// Returns domain.ErrScreenNotFound if the slug is unknown.
	GetScreen(ctx context.Context, slug string) (*domain.Screen, error)

	// PutScreen registers or replaces a screen definition. Implementations
	// assign a fresh UID when the screen carries none.
	PutScreen(ctx context.Context, screen *domain.Screen) error

	// ListScreens returns the registered slugs. Used for introspection and
	// CLI tooling.
	ListScreens(ctx context.Context) ([]string, error)
}
