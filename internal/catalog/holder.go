package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/valvesite/internal/logger"
)

// DefaultDebounce batches the bursts of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// Holder publishes the current catalog to concurrent readers. A reload swaps
// in a complete new Catalog; readers never observe a partial one.
type Holder struct {
	current atomic.Pointer[Catalog]
	reloads atomic.Int64
}

// NewHolder returns a holder serving c.
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Get returns the catalog currently being served.
func (h *Holder) Get() *Catalog {
	return h.current.Load()
}

// Swap replaces the served catalog.
func (h *Holder) Swap(c *Catalog) {
	h.current.Store(c)
	h.reloads.Add(1)
}

// Reloads returns how many times the catalog has been replaced.
func (h *Holder) Reloads() int64 {
	return h.reloads.Load()
}

// Reload rebuilds from path and swaps on success. On failure the previous
// catalog keeps serving.
func (h *Holder) Reload(path string) error {
	c, err := LoadFile(path)
	if err != nil {
		return err
	}
	h.Swap(c)
	return nil
}

// Watch reloads the catalog whenever the file at path changes, until ctx is
// done. The parent directory is watched so rename-on-save editors are seen.
func (h *Holder) Watch(ctx context.Context, path string, debounce time.Duration) error {
	log := logger.Named("catalog")

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch catalog: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch catalog: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch catalog: %w", err)
	}
	log.Info("watching catalog", zap.String("path", abs))

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("catalog watcher error", zap.Error(err))

		case <-timer.C:
			if err := h.Reload(abs); err != nil {
				log.Warn("catalog reload failed, keeping previous", zap.Error(err))
				continue
			}
			c := h.Get()
			log.Info("catalog reloaded",
				zap.Int("categories", c.Len()),
				zap.Int64("reloads", h.Reloads()))
		}
	}
}
