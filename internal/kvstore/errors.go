package kvstore

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeInvalidNamespace indicates a namespace that fails validation.
	ErrCodeInvalidNamespace ErrorCode = "INVALID_NAMESPACE"

	// ErrCodeInvalidClass indicates an unknown storage class.
	ErrCodeInvalidClass ErrorCode = "INVALID_CLASS"

	// ErrCodeInvalidValue indicates a value that cannot be serialized to JSON.
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"

	// ErrCodeInvalidPath indicates a dot-path that cannot be resolved.
	ErrCodeInvalidPath ErrorCode = "INVALID_PATH"

	// ErrCodeNotArray indicates an array operation against a non-array value.
	ErrCodeNotArray ErrorCode = "NOT_ARRAY"

	// ErrCodeNotObject indicates a merge against a non-object value.
	ErrCodeNotObject ErrorCode = "NOT_OBJECT"

	// ErrCodeDuplicate indicates a rejected duplicate append.
	ErrCodeDuplicate ErrorCode = "DUPLICATE_VALUE"

	// ErrCodeBackend indicates a failure reported by the storage backend.
	ErrCodeBackend ErrorCode = "BACKEND_FAILURE"

	// ErrCodeQuota indicates the backend rejected a write for size reasons.
	ErrCodeQuota ErrorCode = "QUOTA_EXCEEDED"
)

// StoreError is the error type returned by all Store operations.
//
// Validation errors (bad namespace, bad path, bad value shape) carry no
// wrapped cause; backend errors wrap the underlying failure and carry the
// namespace and operation for context.
type StoreError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Namespace identifies the affected store, when known.
	Namespace string

	// Op names the operation that failed (get, set, merge, ...).
	Op string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Namespace != "" {
		msg = fmt.Sprintf("%s (namespace=%s, op=%s)", msg, e.Namespace, e.Op)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a StoreError in the validation
// family (anything other than a backend or quota failure).
// Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code != ErrCodeBackend && se.Code != ErrCodeQuota
	}
	return false
}

// IsQuotaError reports whether err is a quota-exceeded backend failure.
func IsQuotaError(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == ErrCodeQuota
	}
	return false
}

// IsDuplicateError reports whether err is a rejected duplicate append.
func IsDuplicateError(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == ErrCodeDuplicate
	}
	return false
}

// newValidationError creates a StoreError with no namespace context.
func newValidationError(code ErrorCode, format string, args ...any) *StoreError {
	return &StoreError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// opError creates a StoreError bound to a store operation.
func (s *Store) opError(code ErrorCode, op, format string, args ...any) *StoreError {
	return &StoreError{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Namespace: s.namespace,
		Op:        op,
	}
}

// backendError wraps a backend failure with namespace and operation context.
// Quota failures reported by the backend keep their quota code.
func (s *Store) backendError(op string, err error) *StoreError {
	code := ErrCodeBackend
	if errors.Is(err, ErrQuotaExceeded) {
		code = ErrCodeQuota
	}
	return &StoreError{
		Code:      code,
		Message:   "storage backend failure",
		Namespace: s.namespace,
		Op:        op,
		Err:       err,
	}
}
