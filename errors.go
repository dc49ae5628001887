package hotconf

import (
	"errors"
	"fmt"

	"github.com/omarluq/hotconf/format"
)

// Sentinel errors returned by cells, watchers, and subscriptions.
var (
	// ErrNotInitialized is returned when operating on a zero-value Cell.
	ErrNotInitialized = errors.New("hotconf: cell not initialized")

	// ErrWatcherClosed is returned when closing an already-closed watcher.
	ErrWatcherClosed = errors.New("hotconf: watcher already closed")

	// ErrSubscriptionClosed is returned by Recv once a subscription has
	// been closed and its buffer drained.
	ErrSubscriptionClosed = errors.New("hotconf: subscription closed")

	// ErrNotValidatable is returned by Validate when the configuration
	// type does not implement validate.Validatable.
	ErrNotValidatable = errors.New("hotconf: config type does not implement validate.Validatable")

	// ErrTimeout is returned by WaitForFile when the file never appears.
	ErrTimeout = errors.New("hotconf: timed out waiting for file")
)

// FileNotFoundError is returned by Load when the path does not exist.
type FileNotFoundError struct {
	Path string
}

func (e FileNotFoundError) Error() string {
	return fmt.Sprintf("hotconf: file not found: %s", e.Path)
}

// DecodeError wraps a format-specific deserialization failure.
type DecodeError struct {
	Format format.Format
	Err    error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("hotconf: failed to decode %s: %v", e.Format, e.Err)
}

func (e DecodeError) Unwrap() error { return e.Err }

// EncodeError wraps a format-specific serialization failure.
type EncodeError struct {
	Format format.Format
	Err    error
}

func (e EncodeError) Error() string {
	return fmt.Sprintf("hotconf: failed to encode %s: %v", e.Format, e.Err)
}

func (e EncodeError) Unwrap() error { return e.Err }

// InvalidPathError is returned by the builder on misconfiguration.
type InvalidPathError struct {
	Reason string
}

func (e InvalidPathError) Error() string {
	return fmt.Sprintf("hotconf: invalid path: %s", e.Reason)
}

// HotReloadError is returned when watching is unavailable, either
// because watch setup failed or because the capability was excluded
// from the build.
type HotReloadError struct {
	Reason string
	Err    error
}

func (e HotReloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hotconf: hot-reload: %v", e.Err)
	}
	return fmt.Sprintf("hotconf: hot-reload: %s", e.Reason)
}

func (e HotReloadError) Unwrap() error { return e.Err }

// LaggedError is returned by Recv when a slow subscriber overflowed its
// buffer. Missed counts the dropped publications; delivery resumes in
// order with the next Recv.
type LaggedError struct {
	Missed uint64
}

func (e LaggedError) Error() string {
	return fmt.Sprintf("hotconf: subscriber lagged: missed %d updates", e.Missed)
}
