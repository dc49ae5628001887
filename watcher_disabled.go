//go:build hotconf_no_watch

package hotconf

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// defaultDebounceDelay mirrors the watch-enabled build so builder
// defaults stay consistent.
const defaultDebounceDelay = 100 * time.Millisecond

// ReloadFunc is invoked by a watcher after the debounce window.
type ReloadFunc func() error

// Watcher is unavailable in this build; every constructor reports
// HotReloadError so callers get a runtime error instead of a compile
// failure.
type Watcher struct{}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDelay is accepted and ignored in this build.
func WithDebounceDelay(time.Duration) WatcherOption {
	return func(*Watcher) {}
}

var errWatchDisabled = HotReloadError{Reason: "hot-reload support is not built in"}

// NewWatcher always fails in this build.
func NewWatcher(string, ReloadFunc, ...WatcherOption) (*Watcher, error) {
	return nil, errWatchDisabled
}

// ID returns the nil UUID.
func (w *Watcher) ID() uuid.UUID { return uuid.Nil }

// Path returns the empty string.
func (w *Watcher) Path() string { return "" }

// Watch always fails in this build.
func (w *Watcher) Watch(context.Context) error { return errWatchDisabled }

// Close is a no-op.
func (w *Watcher) Close() error { return nil }
