// Package config loads the Cartful configuration file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Backend kinds selectable in the config file.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config is the user-facing configuration, read from a YAML file.
type Config struct {
	// DataDir is the directory holding all persisted state.
	DataDir string `yaml:"data_dir"`

	// Backend selects the storage backend: "sqlite" or "file".
	Backend string `yaml:"backend"`

	// StorageClass is the default storage class for new stores.
	StorageClass string `yaml:"storage_class"`

	// LogLevel is the zap level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DataDir:      filepath.Join(home, ".cartful"),
		Backend:      BackendSQLite,
		StorageClass: "local",
		LogLevel:     "warn",
	}
}

// Load reads the config file at path, applying defaults for absent fields.
// A missing file yields the defaults; a malformed file or an unknown key
// is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cartful", "config.yaml")
}

func (c Config) validate() error {
	switch c.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendSQLite, BackendFile)
	}
	switch c.StorageClass {
	case "local", "sync", "managed", "session":
	default:
		return fmt.Errorf("unknown storage class %q", c.StorageClass)
	}
	return nil
}
