package hotconf

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Manager tracks a set of running watchers by identifier. Closing the
// manager stops every watcher it owns, so no background goroutine
// outlives it.
type Manager struct {
	mu       sync.Mutex
	watchers map[uuid.UUID]*managedWatcher
}

type managedWatcher struct {
	watcher *Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewManager creates an empty watcher manager.
func NewManager() *Manager {
	return &Manager{watchers: make(map[uuid.UUID]*managedWatcher)}
}

// Add takes ownership of the watcher, starts it on a background
// goroutine, and returns its identifier for later removal.
func (m *Manager) Add(ctx context.Context, w *Watcher) uuid.UUID {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := w.Watch(ctx); err != nil {
			log.Error().Err(err).Str("path", w.Path()).Msg("managed watcher stopped")
		}
	}()

	m.mu.Lock()
	m.watchers[w.ID()] = &managedWatcher{watcher: w, cancel: cancel, done: done}
	m.mu.Unlock()
	return w.ID()
}

// Remove stops one watcher and waits for its goroutine to exit. Unknown
// identifiers are ignored.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	mw, ok := m.watchers[id]
	delete(m.watchers, id)
	m.mu.Unlock()
	if !ok {
		return
	}
	stop(mw)
}

// StopAll stops every watcher and waits for their goroutines to exit.
// Safe to call more than once.
func (m *Manager) StopAll() {
	m.mu.Lock()
	stopped := m.watchers
	m.watchers = make(map[uuid.UUID]*managedWatcher)
	m.mu.Unlock()

	for _, mw := range stopped {
		stop(mw)
	}
}

// Active returns the number of watchers currently tracked.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watchers)
}

// Close stops all watchers. It implements io.Closer so a manager can be
// tied to the lifetime of whatever owns it.
func (m *Manager) Close() error {
	m.StopAll()
	return nil
}

func stop(mw *managedWatcher) {
	mw.cancel()
	if err := mw.watcher.Close(); err != nil && err != ErrWatcherClosed {
		log.Error().Err(err).Str("path", mw.watcher.Path()).Msg("failed to close watcher")
	}
	<-mw.done
}
