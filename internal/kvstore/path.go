package kvstore

import (
	"strconv"
	"strings"
)

// pathRef is the result of resolving a dot-path: the container holding the
// terminal segment, the terminal segment itself, and a writeback that
// replaces the container inside its own parent. The writeback is what lets
// callers splice slices (whose header changes on removal) without re-walking
// the tree.
type pathRef struct {
	container any    // map[string]any or []any
	key       string // terminal segment, unparsed
	replace   func(any)
}

// resolvePath walks all but the last segment of a dot-path from root.
//
// At each step: a nil node fails; a missing map key is created as an empty
// object when create is true, otherwise fails; a slice segment must be a
// valid in-range index; any other node is not navigable. The terminal
// segment is returned unresolved for the caller to read, write, or delete
// directly.
//
// setRoot replaces the root value itself; it is used as the writeback when
// the path has a single segment.
func resolvePath(root any, path string, create bool, setRoot func(any)) (pathRef, *StoreError) {
	if path == "" {
		return pathRef{}, newValidationError(ErrCodeInvalidPath, "path must be a non-empty string")
	}
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return pathRef{}, newValidationError(ErrCodeInvalidPath, "path %q contains an empty segment", path)
		}
	}

	node := root
	replace := setRoot
	for i, seg := range segments[:len(segments)-1] {
		switch cur := node.(type) {
		case map[string]any:
			child, ok := cur[seg]
			if !ok {
				if !create {
					return pathRef{}, newValidationError(ErrCodeInvalidPath,
						"path %q: segment %q does not exist", path, seg)
				}
				child = map[string]any{}
				cur[seg] = child
			}
			node = child
			replace = func(v any) { cur[seg] = v }
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return pathRef{}, newValidationError(ErrCodeInvalidPath,
					"path %q: segment %q is not a valid array index", path, seg)
			}
			if idx < 0 || idx >= len(cur) {
				return pathRef{}, newValidationError(ErrCodeInvalidPath,
					"path %q: index %d out of range (len %d)", path, idx, len(cur))
			}
			node = cur[idx]
			replace = func(v any) { cur[idx] = v }
		case nil:
			return pathRef{}, newValidationError(ErrCodeInvalidPath,
				"path %q: segment %q reached a null value", path, segments[i])
		default:
			return pathRef{}, newValidationError(ErrCodeInvalidPath,
				"path %q: segment %q is not navigable", path, seg)
		}
	}

	switch node.(type) {
	case map[string]any, []any:
		return pathRef{container: node, key: segments[len(segments)-1], replace: replace}, nil
	case nil:
		return pathRef{}, newValidationError(ErrCodeInvalidPath,
			"path %q: terminal container is null", path)
	default:
		return pathRef{}, newValidationError(ErrCodeInvalidPath,
			"path %q: terminal container is not navigable", path)
	}
}

// get reads the value at the terminal segment.
func (r pathRef) get() (any, bool, *StoreError) {
	switch cur := r.container.(type) {
	case map[string]any:
		v, ok := cur[r.key]
		return v, ok, nil
	case []any:
		idx, err := strconv.Atoi(r.key)
		if err != nil {
			return nil, false, newValidationError(ErrCodeInvalidPath,
				"segment %q is not a valid array index", r.key)
		}
		if idx < 0 || idx >= len(cur) {
			return nil, false, nil
		}
		return cur[idx], true, nil
	}
	return nil, false, newValidationError(ErrCodeInvalidPath, "container is not navigable")
}

// set writes the value at the terminal segment. Setting an out-of-range
// slice index fails.
func (r pathRef) set(v any) *StoreError {
	switch cur := r.container.(type) {
	case map[string]any:
		cur[r.key] = v
		return nil
	case []any:
		idx, err := strconv.Atoi(r.key)
		if err != nil {
			return newValidationError(ErrCodeInvalidPath,
				"segment %q is not a valid array index", r.key)
		}
		if idx < 0 || idx >= len(cur) {
			return newValidationError(ErrCodeInvalidPath,
				"index %d out of range (len %d)", idx, len(cur))
		}
		cur[idx] = v
		return nil
	}
	return newValidationError(ErrCodeInvalidPath, "container is not navigable")
}

// remove deletes the terminal segment. Returns false (no-op) when an object
// key is absent; a non-numeric or out-of-bounds index against a slice fails.
func (r pathRef) remove() (bool, *StoreError) {
	switch cur := r.container.(type) {
	case map[string]any:
		if _, ok := cur[r.key]; !ok {
			return false, nil
		}
		delete(cur, r.key)
		return true, nil
	case []any:
		idx, err := strconv.Atoi(r.key)
		if err != nil {
			return false, newValidationError(ErrCodeInvalidPath,
				"segment %q is not a valid array index", r.key)
		}
		if idx < 0 || idx >= len(cur) {
			return false, newValidationError(ErrCodeInvalidPath,
				"index %d out of range (len %d)", idx, len(cur))
		}
		r.replace(append(cur[:idx:idx], cur[idx+1:]...))
		return true, nil
	}
	return false, newValidationError(ErrCodeInvalidPath, "container is not navigable")
}
