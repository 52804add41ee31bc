// Package kvstore provides namespace-addressed persistence of
// JSON-serializable values with structured operations layered on top of a
// flat storage backend.
//
// A Store binds one namespace to one Backend and exposes:
//   - Get/Set/Clear: whole-value persistence with soft-fail deserialization
//   - Add: array append with optional duplicate rejection
//   - AppendItem/EditItem/DeleteItem: dot-path navigation into nested values
//   - Update: load-transform-save in one call
//   - Merge: shallow or deep object merge
//
// # Invariants
//
//   - Namespaces match [A-Za-z0-9._-]{1,255}; validated at construction.
//   - A failed write leaves the previously persisted value untouched.
//   - Every mutation emits exactly one change event (set, clear, edit, or
//     deleteItem) to per-instance listeners and the injected bus.
//   - Get never fails on a corrupt payload; mutating operations do, since
//     transforming a silently-dropped value would destroy data.
//
// # Backends
//
// Two Backend implementations are provided and selected explicitly by the
// host: SQLiteBackend (single-writer SQLite in WAL mode) and FileBackend
// (one JSON file per namespace, atomic writes). Backends store opaque
// payloads and never inspect them.
//
// # Concurrency
//
// Operations block until the backend completes; there is no internal write
// queue. Stores on distinct namespaces are independently usable from
// concurrent call sites.
package kvstore
