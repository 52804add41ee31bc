package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/roach88/cartful/internal/bus"
	"github.com/roach88/cartful/internal/catalog"
	"github.com/roach88/cartful/internal/config"
	"github.com/roach88/cartful/internal/kvstore"
	"github.com/roach88/cartful/internal/logging"
)

// Persistence namespaces. One holds the catalog, one the active shopping
// selection, one the unchecked subset.
const (
	nsItems     = "groceries.items"
	nsSelected  = "groceries.selected"
	nsUnchecked = "groceries.unchecked"
)

// App wires config, backend, bus, and the three typed stores a command
// needs. Commands open it, work, and Close it.
type App struct {
	Config config.Config
	Bus    *bus.Bus
	Logger *zap.Logger

	items     kvstore.Typed[[]catalog.Item]
	selected  kvstore.Typed[[]string]
	unchecked kvstore.Typed[[]string]

	closer io.Closer
}

// openApp builds the application context from the root options: loads
// config, opens the configured backend, and binds the three namespaces.
func openApp(opts *RootOptions) (*App, error) {
	cfgPath := opts.Config
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading config", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configuring logging", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "creating data directory", err)
	}

	var backend kvstore.Backend
	var closer io.Closer
	switch cfg.Backend {
	case config.BackendSQLite:
		sb, err := kvstore.OpenSQLite(filepath.Join(cfg.DataDir, "cartful.db"))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "opening database", err)
		}
		backend, closer = sb, sb
	case config.BackendFile:
		fb, err := kvstore.NewFileBackend(filepath.Join(cfg.DataDir, "store"))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "opening file store", err)
		}
		backend = fb
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown backend %q", cfg.Backend))
	}

	b := bus.New()
	app := &App{Config: cfg, Bus: b, Logger: logger, closer: closer}

	class := kvstore.StorageClass(cfg.StorageClass)
	newStore := func(namespace string) (*kvstore.Store, error) {
		return kvstore.New(backend, namespace,
			kvstore.WithClass(class),
			kvstore.WithBus(b),
			kvstore.WithLogger(logger),
		)
	}

	itemsStore, err := newStore(nsItems)
	if err != nil {
		app.Close()
		return nil, WrapExitError(ExitCommandError, "binding namespaces", err)
	}
	selectedStore, err := newStore(nsSelected)
	if err != nil {
		app.Close()
		return nil, WrapExitError(ExitCommandError, "binding namespaces", err)
	}
	uncheckedStore, err := newStore(nsUnchecked)
	if err != nil {
		app.Close()
		return nil, WrapExitError(ExitCommandError, "binding namespaces", err)
	}

	app.items = kvstore.NewTyped[[]catalog.Item](itemsStore)
	app.selected = kvstore.NewTyped[[]string](selectedStore)
	app.unchecked = kvstore.NewTyped[[]string](uncheckedStore)
	return app, nil
}

// Close releases the backend and flushes the logger.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Sync() //nolint:errcheck // stderr sync failure is unactionable
	}
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// LoadList loads the catalog and both id sets, then prunes stale ids so
// the in-memory state starts with its invariants intact even after
// external edits to the stored data.
func (a *App) LoadList(ctx context.Context) (*catalog.List, error) {
	items, err := a.items.Get(ctx, nil)
	if err != nil {
		return nil, err
	}
	selected, err := a.selected.Get(ctx, nil)
	if err != nil {
		return nil, err
	}
	unchecked, err := a.unchecked.Get(ctx, nil)
	if err != nil {
		return nil, err
	}

	l := &catalog.List{Items: items, Selected: selected, Unchecked: unchecked}
	l.Prune()
	return l, nil
}

// SaveList persists the full working state, one namespace at a time.
// Writes are awaited sequentially; there is no write queue below this.
func (a *App) SaveList(ctx context.Context, l *catalog.List) error {
	if err := a.items.Set(ctx, emptyIfNil(l.Items)); err != nil {
		return err
	}
	if err := a.selected.Set(ctx, emptyIfNil(l.Selected)); err != nil {
		return err
	}
	return a.unchecked.Set(ctx, emptyIfNil(l.Unchecked))
}

// emptyIfNil keeps stored payloads as [] rather than null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
