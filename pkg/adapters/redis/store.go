// Package redis provides a Redis-backed ScreenStore for deployments where
// the screen library is shared between several validator instances.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"

	"github.com/mirelo/flowcheck/pkg/domain"
)

const defaultPrefix = "flowcheck:"

// Store implements ports.ScreenStore on Redis. Screens are stored as JSON
// documents under "<prefix>screen:<slug>".
type Store struct {
	client *backend.Client
	prefix string
}

// Option configures the store.
type Option func(*Store)

// WithPrefix overrides the key prefix (default "flowcheck:").
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewFromClient creates a store on an existing Redis client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetScreen retrieves a screen by slug.
func (s *Store) GetScreen(ctx context.Context, slug string) (*domain.Screen, error) {
	data, err := s.client.Get(ctx, s.key(slug)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrScreenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis error loading screen %q: %w", slug, err)
	}

	var screen domain.Screen
	if err := json.Unmarshal(data, &screen); err != nil {
		return nil, fmt.Errorf("corrupt screen document for %q: %w", slug, err)
	}
	return &screen, nil
}

// PutScreen registers or replaces a screen, assigning a UID when missing.
func (s *Store) PutScreen(ctx context.Context, screen *domain.Screen) error {
	stored := *screen
	if stored.UID == "" {
		stored.UID = "scr_" + uuid.NewString()
	}

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to serialize screen %q: %w", stored.Slug, err)
	}
	if err := s.client.Set(ctx, s.key(stored.Slug), data, 0).Err(); err != nil {
		return fmt.Errorf("redis error saving screen %q: %w", stored.Slug, err)
	}
	return nil
}

// ListScreens returns the registered slugs.
func (s *Store) ListScreens(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		slugs  []string
	)
	pattern := s.key("*")
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error listing screens: %w", err)
		}
		for _, key := range keys {
			slugs = append(slugs, strings.TrimPrefix(key, s.key("")))
		}
		cursor = next
		if cursor == 0 {
			return slugs, nil
		}
	}
}

func (s *Store) key(slug string) string {
	return s.prefix + "screen:" + slug
}
