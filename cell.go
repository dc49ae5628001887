package hotconf

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/omarluq/hotconf/validate"
)

// Cloner is the capability a configuration type may implement to
// control how Get copies the current value. Types holding maps, slices,
// or pointers should implement it; plain value structs do not need to.
type Cloner[T any] interface {
	Clone() T
}

// Snapshot is one consistent view of a cell: the value together with
// the version and modification time it was installed under.
type Snapshot[T any] struct {
	Data         T
	LastModified time.Time
	Version      uint64
}

// cellState is the shared mutable triple behind a cell. All clones of a
// cell and its watcher goroutine hold the same pointer; the mutex is
// the single consistency domain for the three fields.
type cellState[T any] struct {
	mu           sync.RWMutex
	data         T
	lastModified time.Time
	version      uint64
}

// Cell holds the current typed configuration value loaded from a file.
// Reads never block on I/O; Reload is the sole writer entry point and
// replaces the value, version, and modification time atomically.
// Subscribers attached via Subscribe receive every value published
// after they attached.
type Cell[T any] struct {
	state   *cellState[T]
	path    string
	pub     *publisher[T]
	id      uuid.UUID
	watcher *Watcher
	cancel  context.CancelFunc
}

// New loads the file at path and returns a cell holding its value at
// version 1. It fails when the file is missing, unreadable, or
// malformed.
func New[T any](path string) (*Cell[T], error) {
	data, err := Load[T](path)
	if err != nil {
		return nil, err
	}
	return &Cell[T]{
		state: &cellState[T]{
			data:         data,
			lastModified: time.Now(),
			version:      1,
		},
		path: path,
		pub:  newPublisher[T](),
		id:   uuid.New(),
	}, nil
}

// NewWithWatch is New followed by StartWatch with a background context.
// Use Close to stop the watcher.
func NewWithWatch[T any](path string) (*Cell[T], error) {
	c, err := New[T](path)
	if err != nil {
		return nil, err
	}
	if err := c.StartWatch(context.Background()); err != nil {
		c.pub.close()
		return nil, err
	}
	return c, nil
}

// StartWatch starts a background watcher bound to this cell's shared
// state. File changes trigger the same reload path as Reload. The
// watcher stops when the context is canceled or the cell is closed.
func (c *Cell[T]) StartWatch(ctx context.Context, opts ...WatcherOption) error {
	if c.state == nil {
		return ErrNotInitialized
	}
	if c.watcher != nil {
		return HotReloadError{Reason: "watcher already running"}
	}
	w, err := NewWatcher(c.path, c.Reload, opts...)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	c.watcher = w
	c.cancel = cancel
	go func() {
		if err := w.Watch(ctx); err != nil {
			log.Error().Err(err).Str("path", c.path).Msg("configuration watcher stopped")
		}
	}()
	return nil
}

// Get returns a copy of the current value. If T implements Cloner the
// clone is used; otherwise the value copy of T is returned. Only the
// read lock is held, never I/O.
func (c *Cell[T]) Get() T {
	c.state.mu.RLock()
	v := c.state.data
	c.state.mu.RUnlock()
	return cloneValue(v)
}

// Version returns the current version. Versions start at 1 and
// increase by exactly 1 on each successful reload.
func (c *Cell[T]) Version() uint64 {
	c.state.mu.RLock()
	defer c.state.mu.RUnlock()
	return c.state.version
}

// LastModified returns when the current value was installed.
func (c *Cell[T]) LastModified() time.Time {
	c.state.mu.RLock()
	defer c.state.mu.RUnlock()
	return c.state.lastModified
}

// Snapshot returns the value, version, and modification time read under
// a single lock acquisition.
func (c *Cell[T]) Snapshot() Snapshot[T] {
	c.state.mu.RLock()
	snap := Snapshot[T]{
		Data:         c.state.data,
		LastModified: c.state.lastModified,
		Version:      c.state.version,
	}
	c.state.mu.RUnlock()
	snap.Data = cloneValue(snap.Data)
	return snap
}

// Path returns the backing file path.
func (c *Cell[T]) Path() string { return c.path }

// ID returns the cell's instance identifier.
func (c *Cell[T]) ID() uuid.UUID { return c.id }

// Reload synchronously re-reads the backing file. On success the value,
// version, and modification time are replaced in one critical section
// and the new value is published to all subscribers after the lock is
// released. On failure the cell is left untouched and the error is
// returned; a partial update is never observable.
func (c *Cell[T]) Reload() error {
	if c.state == nil {
		return ErrNotInitialized
	}
	data, err := Load[T](c.path)
	if err != nil {
		return err
	}

	st := c.state
	st.mu.Lock()
	st.data = data
	st.lastModified = time.Now()
	st.version++
	version := st.version
	st.mu.Unlock()

	c.pub.publish(cloneValue(data))
	log.Debug().Str("path", c.path).Uint64("version", version).Msg("configuration reloaded")
	return nil
}

// Subscribe attaches a new receiver to the cell's change publisher. It
// observes only values published after this call.
func (c *Cell[T]) Subscribe() *Subscription[T] {
	return c.pub.subscribe(DefaultSubscriptionBuffer)
}

// Save serializes the current value back to the cell's file. Saving
// does not change the version or modification time.
func (c *Cell[T]) Save() error {
	return c.SaveTo(c.path)
}

// SaveTo serializes the current value to an arbitrary path.
func (c *Cell[T]) SaveTo(path string) error {
	if c.state == nil {
		return ErrNotInitialized
	}
	return Save(path, c.Get())
}

// Validate runs the value's validation capability. It returns
// ErrNotValidatable when T does not implement validate.Validatable.
// State is never mutated.
func (c *Cell[T]) Validate(ctx context.Context) error {
	if c.state == nil {
		return ErrNotInitialized
	}
	v := c.Get()
	if va, ok := any(v).(validate.Validatable); ok {
		return va.Validate(ctx)
	}
	if va, ok := any(&v).(validate.Validatable); ok {
		return va.Validate(ctx)
	}
	return ErrNotValidatable
}

// Close stops the watcher, if any, and closes the change publisher.
// The current value stays readable through existing references.
func (c *Cell[T]) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	var err error
	if c.watcher != nil {
		if cerr := c.watcher.Close(); cerr != nil && cerr != ErrWatcherClosed {
			err = cerr
		}
	}
	if c.pub != nil {
		c.pub.close()
	}
	return err
}

func cloneValue[T any](v T) T {
	if cl, ok := any(v).(Cloner[T]); ok {
		return cl.Clone()
	}
	return v
}
