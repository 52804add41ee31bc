package kvstore

import (
	"context"
	"errors"
)

// StorageClass partitions the backing storage. Classes are independent
// key spaces: the same namespace under two classes holds two values.
type StorageClass string

const (
	ClassLocal   StorageClass = "local"
	ClassSync    StorageClass = "sync"
	ClassManaged StorageClass = "managed"
	ClassSession StorageClass = "session"
)

// validClasses enumerates the accepted storage classes.
var validClasses = map[StorageClass]bool{
	ClassLocal:   true,
	ClassSync:    true,
	ClassManaged: true,
	ClassSession: true,
}

// ErrQuotaExceeded is returned (possibly wrapped) by a Backend when a write
// is rejected for size reasons. Store maps it to ErrCodeQuota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Backend is the capability interface a Store persists through.
//
// Implementations store one opaque serialized value per (class, namespace)
// pair. The Store layers all structured semantics on top; a backend never
// inspects the payload.
//
// The host selects a concrete backend explicitly at construction time.
// Two implementations are provided: SQLiteBackend and FileBackend.
type Backend interface {
	// Load returns the serialized value for the namespace.
	// found is false when no value has been stored.
	Load(ctx context.Context, class StorageClass, namespace string) (raw []byte, found bool, err error)

	// Save persists the serialized value for the namespace, replacing any
	// previous value. Returns an error wrapping ErrQuotaExceeded when the
	// write is rejected for size reasons.
	Save(ctx context.Context, class StorageClass, namespace string, raw []byte) error

	// Remove deletes the value for the namespace. Removing an absent
	// namespace is not an error.
	Remove(ctx context.Context, class StorageClass, namespace string) error
}
