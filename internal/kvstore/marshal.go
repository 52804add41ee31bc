package kvstore

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// encodeValue serializes a value for storage. Rejects nil (no value) and
// anything encoding/json cannot represent: cycles, channels, funcs, NaN.
func encodeValue(v any) ([]byte, error) {
	if v == nil {
		return nil, newValidationError(ErrCodeInvalidValue, "value must not be nil")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, newValidationError(ErrCodeInvalidValue, "value is not JSON-serializable: %v", err)
	}
	return data, nil
}

// decodeValue parses a stored payload into a generic JSON tree
// (map[string]any, []any, or primitives).
func decodeValue(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode stored value: %w", err)
	}
	return v, nil
}

// normalizeValue converts an arbitrary Go value into its generic JSON tree
// form via a marshal/unmarshal round-trip, so that values stored through
// typed APIs and values loaded from the backend compare and merge uniformly.
func normalizeValue(v any) (any, error) {
	raw, err := encodeValue(v)
	if err != nil {
		return nil, err
	}
	return decodeValue(raw)
}

// jsonEqual reports serialization equality of two normalized JSON trees.
// Go's json.Marshal sorts map keys, so equal trees produce equal bytes.
// O(size) per comparison; fine at grocery-list scale.
func jsonEqual(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
