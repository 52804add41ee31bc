package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// FileBackend stores one JSON file per namespace under a per-class
// subdirectory of its base path. Writes are atomic (temp file + rename) so
// a crash never leaves a half-written value behind.
type FileBackend struct {
	basePath string
}

// NewFileBackend creates a FileBackend and ensures the base directory exists.
func NewFileBackend(basePath string) (*FileBackend, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &FileBackend{basePath: basePath}, nil
}

// ClassDir returns the directory holding one storage class.
// The directory may not exist yet if nothing has been saved under the class.
func (b *FileBackend) ClassDir(class StorageClass) string {
	return filepath.Join(b.basePath, string(class))
}

// entryPath returns the file path for a namespace. Namespace validation at
// Store construction guarantees the name is filesystem-safe.
func (b *FileBackend) entryPath(class StorageClass, namespace string) string {
	return filepath.Join(b.ClassDir(class), namespace+".json")
}

// Load implements Backend.
func (b *FileBackend) Load(ctx context.Context, class StorageClass, namespace string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	raw, err := os.ReadFile(b.entryPath(class, namespace))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s/%s: %w", class, namespace, err)
	}
	return raw, true, nil
}

// Save implements Backend. A full filesystem is reported as a quota failure.
func (b *FileBackend) Save(ctx context.Context, class StorageClass, namespace string, raw []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := b.ClassDir(class)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save %s/%s: %w", class, namespace, err)
	}

	tmp, err := os.CreateTemp(dir, "."+namespace+"-*.tmp")
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", class, namespace, err)
	}
	tmpPath := tmp.Name()

	_, werr := tmp.Write(raw)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmpPath)
		if isNoSpace(werr) {
			return fmt.Errorf("save %s/%s: %w", class, namespace, ErrQuotaExceeded)
		}
		return fmt.Errorf("save %s/%s: %w", class, namespace, werr)
	}

	if err := os.Rename(tmpPath, b.entryPath(class, namespace)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("save %s/%s: %w", class, namespace, err)
	}
	return nil
}

// isNoSpace reports whether err indicates a full filesystem.
func isNoSpace(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}

// Remove implements Backend. Removing an absent file is a no-op.
func (b *FileBackend) Remove(ctx context.Context, class StorageClass, namespace string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(b.entryPath(class, namespace))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s/%s: %w", class, namespace, err)
	}
	return nil
}
