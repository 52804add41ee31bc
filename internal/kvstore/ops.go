package kvstore

import (
	"context"

	"github.com/roach88/cartful/internal/bus"
)

// Add appends value to the stored array (default empty) and returns the new
// length. Fails when the stored value is not an array. With allowDuplicates
// false, fails when an element serialization-equal to value already exists.
//
// Duplicate detection is O(n) over the array per call; acceptable at this
// system's scale and deliberately not indexed.
func (s *Store) Add(ctx context.Context, value any, allowDuplicates bool) (int, error) {
	normalized, err := normalizeValue(value)
	if err != nil {
		return 0, err
	}

	root, found, err := s.load(ctx, "add")
	if err != nil {
		return 0, err
	}
	if !found {
		root = []any{}
	}
	arr, ok := root.([]any)
	if !ok {
		return 0, s.opError(ErrCodeNotArray, "add", "stored value is not an array")
	}

	if !allowDuplicates {
		for _, elem := range arr {
			if jsonEqual(elem, normalized) {
				return 0, s.opError(ErrCodeDuplicate, "add", "an equal element already exists")
			}
		}
	}

	arr = append(arr, normalized)
	if err := s.persist(ctx, "add", arr); err != nil {
		return 0, err
	}
	s.emit(bus.EventSet, arr)
	return len(arr), nil
}

// AppendItem appends value to the array at a dot-path inside the stored
// object and returns the array's new length. Fails when any intermediate
// segment is missing or not navigable, or when the path's target is not an
// array.
func (s *Store) AppendItem(ctx context.Context, path string, value any) (int, error) {
	normalized, err := normalizeValue(value)
	if err != nil {
		return 0, err
	}

	root, found, err := s.load(ctx, "appendItem")
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, s.opError(ErrCodeInvalidPath, "appendItem", "no stored value to navigate")
	}

	ref, serr := resolvePath(root, path, false, func(v any) { root = v })
	if serr != nil {
		return 0, s.reject(serr, "appendItem")
	}
	target, ok, serr := ref.get()
	if serr != nil {
		return 0, s.reject(serr, "appendItem")
	}
	if !ok {
		return 0, s.opError(ErrCodeInvalidPath, "appendItem", "path %q does not exist", path)
	}
	arr, isArr := target.([]any)
	if !isArr {
		return 0, s.opError(ErrCodeNotArray, "appendItem", "value at path %q is not an array", path)
	}

	arr = append(arr, normalized)
	if serr := ref.set(arr); serr != nil {
		return 0, s.reject(serr, "appendItem")
	}
	if err := s.persist(ctx, "appendItem", root); err != nil {
		return 0, err
	}
	s.emit(bus.EventSet, root)
	return len(arr), nil
}

// EditItem sets value at a dot-path and emits an edit event carrying the
// old and new values. With createPath true, missing intermediate object
// segments are created as empty objects (and an absent stored value starts
// from an empty object); with createPath false a missing path fails.
func (s *Store) EditItem(ctx context.Context, path string, value any, createPath bool) error {
	normalized, err := normalizeValue(value)
	if err != nil {
		return err
	}

	root, found, err := s.load(ctx, "editItem")
	if err != nil {
		return err
	}
	if !found {
		if !createPath {
			return s.opError(ErrCodeInvalidPath, "editItem", "no stored value to navigate")
		}
		root = map[string]any{}
	}

	ref, serr := resolvePath(root, path, createPath, func(v any) { root = v })
	if serr != nil {
		return s.reject(serr, "editItem")
	}
	old, _, serr := ref.get()
	if serr != nil {
		return s.reject(serr, "editItem")
	}
	if serr := ref.set(normalized); serr != nil {
		return s.reject(serr, "editItem")
	}

	if err := s.persist(ctx, "editItem", root); err != nil {
		return err
	}
	s.emit(bus.EventEdit, bus.EditChange{Path: path, OldValue: old, NewValue: normalized})
	return nil
}

// DeleteItem removes the value at a dot-path.
//
// Returns false (no-op, nothing persisted) when the terminal object key
// does not exist. Array targets are spliced at the numeric index; a
// non-numeric or out-of-bounds index fails. Emits a deleteItem event on
// successful removal.
func (s *Store) DeleteItem(ctx context.Context, path string) (bool, error) {
	root, found, err := s.load(ctx, "deleteItem")
	if err != nil {
		return false, err
	}
	if !found {
		root = map[string]any{}
	}

	ref, serr := resolvePath(root, path, false, func(v any) { root = v })
	if serr != nil {
		return false, s.reject(serr, "deleteItem")
	}
	removed, serr := ref.remove()
	if serr != nil {
		return false, s.reject(serr, "deleteItem")
	}
	if !removed {
		return false, nil
	}

	if err := s.persist(ctx, "deleteItem", root); err != nil {
		return false, err
	}
	s.emit(bus.EventDeleteItem, map[string]any{"path": path})
	return true, nil
}

// UpdateFunc transforms the current value into a new value.
// It must be pure: no I/O, no retained references to its argument.
type UpdateFunc func(current any) (any, error)

// Update loads the current value (or defaultValue when absent), applies fn,
// persists the result, and returns it.
func (s *Store) Update(ctx context.Context, defaultValue any, fn UpdateFunc) (any, error) {
	current, err := s.Get(ctx, defaultValue)
	if err != nil {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeValue(next)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, "update", normalized); err != nil {
		return nil, err
	}
	s.emit(bus.EventSet, normalized)
	return normalized, nil
}

// Merge merges newData into the stored object and returns the result.
//
// Fails when newData is not a plain object, or when the stored value exists
// and is not an object (an absent value merges into an empty object).
// Shallow merge overwrites top-level keys; deep merge recurses into values
// that are plain objects on both sides. Arrays and primitives are replaced,
// never merged.
func (s *Store) Merge(ctx context.Context, newData any, deep bool) (map[string]any, error) {
	normalized, err := normalizeValue(newData)
	if err != nil {
		return nil, err
	}
	src, ok := normalized.(map[string]any)
	if !ok {
		return nil, s.opError(ErrCodeNotObject, "merge", "new data is not a plain object")
	}

	root, found, err := s.load(ctx, "merge")
	if err != nil {
		return nil, err
	}
	if !found {
		root = map[string]any{}
	}
	dst, ok := root.(map[string]any)
	if !ok {
		return nil, s.opError(ErrCodeNotObject, "merge", "stored value is not an object")
	}

	mergeMaps(dst, src, deep)

	if err := s.persist(ctx, "merge", dst); err != nil {
		return nil, err
	}
	s.emit(bus.EventSet, dst)
	return dst, nil
}

// mergeMaps merges src into dst in place.
func mergeMaps(dst, src map[string]any, deep bool) {
	for k, v := range src {
		if deep {
			if dstMap, ok := dst[k].(map[string]any); ok {
				if srcMap, ok := v.(map[string]any); ok {
					mergeMaps(dstMap, srcMap, true)
					continue
				}
			}
		}
		dst[k] = v
	}
}

// reject binds a path/validation error to this store's namespace and op.
func (s *Store) reject(serr *StoreError, op string) *StoreError {
	serr.Namespace = s.namespace
	serr.Op = op
	return serr
}
