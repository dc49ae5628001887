//go:build !hotconf_no_watch

package hotconf

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// defaultDebounceDelay is the settle window between a detected file
// change and the reload, so a file is not read mid-write.
const defaultDebounceDelay = 100 * time.Millisecond

// ReloadFunc is invoked by a watcher after the debounce window. Errors
// are logged and swallowed at the watcher boundary; the watcher keeps
// running and retries on the next qualifying event.
type ReloadFunc func() error

// Watcher bridges filesystem change notifications into reloads of one
// file. It watches the parent directory so atomic temp-file-and-rename
// writes are detected, and debounces bursts of events from editors.
type Watcher struct {
	ctx           context.Context
	cancel        context.CancelFunc
	fsWatcher     *fsnotify.Watcher
	id            uuid.UUID
	path          string
	reload        ReloadFunc
	debounceDelay time.Duration
	mu            sync.Mutex
	closed        bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDelay overrides the settle window between a detected
// change and the reload. Default is 100ms.
func WithDebounceDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDelay = d
	}
}

// NewWatcher creates a watcher for path that invokes reload on
// qualifying changes. The path is resolved to an absolute path. Setup
// failures are reported as HotReloadError.
func NewWatcher(path string, reload ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, HotReloadError{Err: err}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, HotReloadError{Err: err}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		ctx:           ctx,
		cancel:        cancel,
		fsWatcher:     fsWatcher,
		id:            uuid.New(),
		path:          absPath,
		reload:        reload,
		debounceDelay: defaultDebounceDelay,
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		if closeErr := fsWatcher.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close watcher after add failure")
		}
		cancel()
		return nil, HotReloadError{Err: err}
	}
	return w, nil
}

// ID returns the watcher's identifier, used by Manager.
func (w *Watcher) ID() uuid.UUID { return w.id }

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Watch processes filesystem events until the context is canceled or
// the watcher is closed. Write, Chmod, and Create events for the
// watched file arm the debounce timer; Remove and Rename are ignored.
// Returns nil on cancellation.
func (w *Watcher) Watch(ctx context.Context) error {
	var (
		debounce *time.Timer
		fire     <-chan time.Time
	)
	stopTimer := func() {
		if debounce != nil {
			debounce.Stop()
		}
	}
	target := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return nil

		case <-w.ctx.Done():
			stopTimer()
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				stopTimer()
				return nil
			}
			if !w.qualifies(event, target) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(w.debounceDelay)
				fire = debounce.C
				continue
			}
			// Extend the settle window for event bursts.
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(w.debounceDelay)

		case <-fire:
			debounce = nil
			fire = nil
			if err := w.reload(); err != nil {
				log.Error().Err(err).Str("path", w.path).Msg("failed to reload configuration")
				continue
			}
			log.Info().Str("path", w.path).Msg("configuration file reloaded")

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				stopTimer()
				return nil
			}
			log.Error().Err(err).Str("path", w.path).Msg("configuration watcher error")
		}
	}
}

// qualifies reports whether an event should trigger a reload: the event
// names the watched file and is a data write, metadata change, or
// creation.
func (w *Watcher) qualifies(event fsnotify.Event, target string) bool {
	if filepath.Base(event.Name) != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) || event.Has(fsnotify.Create)
}

// Close stops the filesystem subscription. A pending debounced reload
// is dropped without touching the cell. Returns ErrWatcherClosed if
// already closed.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	w.closed = true
	w.cancel()
	return w.fsWatcher.Close()
}
