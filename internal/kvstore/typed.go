package kvstore

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Typed adapts a Store to a single expected value shape T for callers that
// own a namespace with a known schema (e.g. the item catalog). Structured
// path operations remain available on the underlying Store.
type Typed[T any] struct {
	store *Store
}

// NewTyped wraps a Store with a typed accessor.
func NewTyped[T any](s *Store) Typed[T] {
	return Typed[T]{store: s}
}

// Store returns the underlying untyped store.
func (t Typed[T]) Store() *Store {
	return t.store
}

// Get returns the stored value decoded into T, or defaultValue when absent.
// A payload that fails to decode into T is logged and treated as absent.
func (t Typed[T]) Get(ctx context.Context, defaultValue T) (T, error) {
	s := t.store
	raw, found, err := s.backend.Load(ctx, s.class, s.namespace)
	if err != nil {
		return defaultValue, s.backendError("get", err)
	}
	if !found {
		return defaultValue, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("stored payload failed to deserialize, returning default",
			zap.String("namespace", s.namespace),
			zap.Error(err))
		return defaultValue, nil
	}
	return v, nil
}

// Set serializes and persists value, emitting a set event.
func (t Typed[T]) Set(ctx context.Context, value T) error {
	return t.store.Set(ctx, value)
}
