// Package memory provides an in-memory ScreenStore, used as the engine
// default and in tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mirelo/flowcheck/pkg/domain"
)

// Store implements ports.ScreenStore in memory.
// Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	bySlug map[string]*domain.Screen
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{bySlug: make(map[string]*domain.Screen)}
}

// GetScreen retrieves a screen by slug.
func (s *Store) GetScreen(ctx context.Context, slug string) (*domain.Screen, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	screen, ok := s.bySlug[slug]
	if !ok {
		return nil, domain.ErrScreenNotFound
	}
	// Copy on read so callers can't mutate store state through the pointer.
	return copyScreen(screen), nil
}

// PutScreen registers or replaces a screen, assigning a UID when missing.
func (s *Store) PutScreen(ctx context.Context, screen *domain.Screen) error {
	stored := copyScreen(screen)
	if stored.UID == "" {
		stored.UID = "scr_" + uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySlug[stored.Slug] = stored
	return nil
}

// ListScreens returns the registered slugs.
func (s *Store) ListScreens(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slugs := make([]string, 0, len(s.bySlug))
	for slug := range s.bySlug {
		slugs = append(slugs, slug)
	}
	slices.Sort(slugs)
	return slugs, nil
}

func copyScreen(in *domain.Screen) *domain.Screen {
	out := *in
	out.Schema = slices.Clone(in.Schema)
	return &out
}
