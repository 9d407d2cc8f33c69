// Package watch detects on-disk changes to the guideline document using
// fsnotify. Editors and download tools usually replace a file via a
// temporary name and a rename, so the watcher observes the parent directory
// and filters events down to the configured document path.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driven"
	"github.com/prescribewise/prescribewise-cli/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.DocumentWatcher = (*Watcher)(nil)

// debounceInterval coalesces the burst of events a single save produces
// (truncate, several writes, chmod) into one change notification.
const debounceInterval = 500 * time.Millisecond

// Watcher reports modifications of a single document file.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the document at path.
func NewWatcher(path string) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("watch: document path is empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolving path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: creating watcher: %w", err)
	}

	// Watch the directory, not the file. A rename-replace drops the
	// watch on the old inode; directory watches survive it.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch: adding %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{path: abs, watcher: fw}, nil
}

// Watch blocks until ctx is cancelled, invoking onChange once per observed
// modification of the document. Rapid event bursts are debounced.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watch: event channel closed")
			}
			if !w.isDocumentChange(event) {
				continue
			}
			logger.Debug("Document event: %s", event)
			if debounce == nil {
				debounce = time.AfterFunc(debounceInterval, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				debounce.Reset(debounceInterval)
			}

		case <-fire:
			debounce = nil
			logger.Info("Document changed: %s", w.path)
			onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watch: error channel closed")
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// isDocumentChange reports whether the event concerns the watched document
// and represents a content change. Chmod is noise; Create and Rename cover
// the temp-file-then-rename save pattern.
func (w *Watcher) isDocumentChange(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Rename) ||
		event.Op.Has(fsnotify.Remove)
}
