package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roach88/cartful/internal/bus"
)

// Watcher surfaces external modifications to a FileBackend's class
// directory as bus events, so writes made by another process show up
// without polling. Events carry the decoded new value for writes and nil
// for removals.
type Watcher struct {
	backend *FileBackend
	class   StorageClass
	bus     *bus.Bus
	logger  *zap.Logger
	fsw     *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher starts watching the backend's directory for one storage class.
// The directory is created if it does not exist yet. Close releases the
// underlying OS watch.
func NewWatcher(backend *FileBackend, class StorageClass, b *bus.Bus, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := backend.ClassDir(class)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		backend: backend,
		class:   class,
		bus:     b,
		logger:  logger,
		fsw:     fsw,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	// Temp files from atomic saves are dot-prefixed; skip them.
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
		return
	}
	namespace := strings.TrimSuffix(name, ".json")

	switch {
	case ev.Op.Has(fsnotify.Remove):
		w.publish(namespace, bus.EventClear, nil)
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		raw, found, err := w.backend.Load(context.Background(), w.class, namespace)
		if err != nil || !found {
			return
		}
		v, err := decodeValue(raw)
		if err != nil {
			w.logger.Warn("watched file is not valid JSON",
				zap.String("namespace", namespace),
				zap.Error(err))
			return
		}
		w.publish(namespace, bus.EventSet, v)
	}
}

func (w *Watcher) publish(namespace string, t bus.EventType, data any) {
	w.bus.Publish(bus.Event{
		ID:        uuid.NewString(),
		Namespace: namespace,
		Type:      t,
		Data:      data,
		Timestamp: time.Now(),
	})
}
