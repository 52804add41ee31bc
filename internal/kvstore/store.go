package kvstore

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roach88/cartful/internal/bus"
)

// namespaceRe constrains namespaces to filesystem- and key-safe names.
var namespaceRe = regexp.MustCompile(`^[A-Za-z0-9._-]{1,255}$`)

// Store persists one JSON-serializable value under a namespace, layering
// structured operations (path edits, array append, merge) and change
// notification over a flat Backend.
//
// A Store holds no authoritative copy of the value: every operation loads,
// transforms, and saves through the backend. Instances bound to different
// namespaces are independent. There is no per-namespace write queue; a
// caller that needs strict serialization within one namespace must await
// each write before issuing the next.
type Store struct {
	namespace string
	class     StorageClass
	backend   Backend
	bus       *bus.Bus
	logger    *zap.Logger

	mu        sync.Mutex
	nextSub   bus.Subscription
	listeners map[bus.Subscription]bus.Handler
}

// Option configures a Store at construction.
type Option func(*Store)

// WithClass selects the storage class. Default is ClassLocal.
func WithClass(class StorageClass) Option {
	return func(s *Store) { s.class = class }
}

// WithBus wires the process-wide event bus. Mutations are broadcast to it
// in addition to per-instance listeners.
func WithBus(b *bus.Bus) Option {
	return func(s *Store) { s.bus = b }
}

// WithLogger sets the logger used for soft-fail diagnostics.
// Default is zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store bound to a namespace.
//
// The namespace must be a non-empty string of at most 255 characters
// matching [A-Za-z0-9._-]+; anything else is rejected with a validation
// error. The backend is selected explicitly by the host.
func New(backend Backend, namespace string, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, newValidationError(ErrCodeBackend, "backend must not be nil")
	}
	if !namespaceRe.MatchString(namespace) {
		return nil, newValidationError(ErrCodeInvalidNamespace,
			"namespace %q must match [A-Za-z0-9._-]{1,255}", namespace)
	}

	s := &Store{
		namespace: namespace,
		class:     ClassLocal,
		backend:   backend,
		logger:    zap.NewNop(),
		listeners: make(map[bus.Subscription]bus.Handler),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !validClasses[s.class] {
		return nil, newValidationError(ErrCodeInvalidClass,
			"unknown storage class %q", s.class)
	}
	return s, nil
}

// Namespace returns the namespace this store is bound to.
func (s *Store) Namespace() string {
	return s.namespace
}

// Class returns the storage class this store persists under.
func (s *Store) Class() StorageClass {
	return s.class
}

// Subscribe registers a per-instance listener for this store's mutations.
func (s *Store) Subscribe(h bus.Handler) bus.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	s.listeners[s.nextSub] = h
	return s.nextSub
}

// Unsubscribe removes a per-instance listener.
func (s *Store) Unsubscribe(id bus.Subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listeners[id]; !ok {
		return false
	}
	delete(s.listeners, id)
	return true
}

// Get returns the stored value, or defaultValue when nothing is stored.
//
// A payload that fails to deserialize is treated as absent: the failure is
// logged and defaultValue returned. The caller always has a sensible
// default, so availability wins over strictness here.
func (s *Store) Get(ctx context.Context, defaultValue any) (any, error) {
	raw, found, err := s.backend.Load(ctx, s.class, s.namespace)
	if err != nil {
		return nil, s.backendError("get", err)
	}
	if !found {
		return defaultValue, nil
	}
	v, err := decodeValue(raw)
	if err != nil {
		s.logger.Warn("stored payload failed to deserialize, returning default",
			zap.String("namespace", s.namespace),
			zap.Error(err))
		return defaultValue, nil
	}
	return v, nil
}

// Set serializes and persists value, then emits a set event.
//
// Fails with a validation error when value is nil or not JSON-serializable,
// and with a quota error when the backend rejects the write for size.
func (s *Store) Set(ctx context.Context, value any) error {
	normalized, err := normalizeValue(value)
	if err != nil {
		return err
	}
	if err := s.persist(ctx, "set", normalized); err != nil {
		return err
	}
	s.emit(bus.EventSet, normalized)
	return nil
}

// Clear removes the namespace entry entirely and emits a clear event.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Remove(ctx, s.class, s.namespace); err != nil {
		return s.backendError("clear", err)
	}
	s.emit(bus.EventClear, nil)
	return nil
}

// load fetches and decodes the stored value for a mutating operation.
// Unlike Get, a corrupt payload here is an error: mutating on top of a
// silently-dropped value would destroy data.
func (s *Store) load(ctx context.Context, op string) (any, bool, error) {
	raw, found, err := s.backend.Load(ctx, s.class, s.namespace)
	if err != nil {
		return nil, false, s.backendError(op, err)
	}
	if !found {
		return nil, false, nil
	}
	v, err := decodeValue(raw)
	if err != nil {
		se := s.opError(ErrCodeInvalidValue, op, "stored payload is not valid JSON")
		se.Err = err
		return nil, false, se
	}
	return v, true, nil
}

// persist serializes the (already normalized) root and saves it.
func (s *Store) persist(ctx context.Context, op string, root any) error {
	raw, err := encodeValue(root)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, s.class, s.namespace, raw); err != nil {
		return s.backendError(op, err)
	}
	return nil
}

// emit broadcasts a change event to per-instance listeners and the bus.
func (s *Store) emit(eventType bus.EventType, data any) {
	e := bus.Event{
		ID:        uuid.NewString(),
		Namespace: s.namespace,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	handlers := make([]bus.Handler, 0, len(s.listeners))
	for _, h := range s.listeners {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
