package driven

import "context"

// DocumentWatcher reports when the guideline document changes on disk, so a
// long-running process can invalidate its cached index instead of serving
// answers from a superseded document.
type DocumentWatcher interface {
	// Watch blocks until ctx is cancelled, invoking onChange once per
	// observed modification of the watched file.
	Watch(ctx context.Context, onChange func()) error

	// Close releases resources.
	Close() error
}
