// Package watcher rebuilds the index automatically when corpus files
// change on disk.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/docsage/docsage/internal/core/ports/driving"
	"github.com/docsage/docsage/internal/logger"
)

// DefaultDebounce is how long to wait after the last filesystem event
// before rebuilding. Bulk copies into the corpus fire many events;
// debouncing folds them into one rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Watcher triggers index rebuilds on corpus directory changes.
type Watcher struct {
	dir      string
	debounce time.Duration
	admin    driving.IndexAdmin
	fw       *fsnotify.Watcher
	done     chan struct{}
}

// New creates a watcher over the corpus directory.
func New(dir string, debounce time.Duration, admin driving.IndexAdmin) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		admin:    admin,
		fw:       fw,
		done:     make(chan struct{}),
	}, nil
}

// Start runs the watch loop until the context is cancelled or Stop is
// called. It blocks; run it in a goroutine.
func (w *Watcher) Start(ctx context.Context) {
	logger.Info("watching %s for corpus changes", w.dir)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("corpus event: %s", event)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.rebuild(ctx)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// Stop ends the watch loop and releases the filesystem watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fw.Close()
}

func (w *Watcher) rebuild(ctx context.Context) {
	logger.Info("corpus changed, refreshing index")
	if _, err := w.admin.GetOrRebuild(ctx); err != nil {
		logger.Warn("automatic rebuild failed: %v", err)
	}
}

// relevant filters events that can change the corpus file set or
// contents.
func relevant(event fsnotify.Event) bool {
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename)
}
