package hotconf

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/mo"
)

// ValidationMode controls what Build does when validate-on-load fails.
type ValidationMode int

const (
	// ValidationBestEffort logs validation failures (including a type
	// that does not implement the validation capability) and continues.
	ValidationBestEffort ValidationMode = iota

	// ValidationStrict fails Build on any validation error. A type that
	// cannot be validated at all also fails.
	ValidationStrict
)

// Builder constructs a Cell with options. The zero value is not usable;
// start from NewBuilder or one of the presets.
type Builder[T any] struct {
	path            string
	hotReload       bool
	validateOnLoad  bool
	validationMode  ValidationMode
	createIfMissing bool
	defaultContent  mo.Option[string]
	debounceDelay   time.Duration
}

// NewBuilder creates a builder with all options off and the default
// debounce delay.
func NewBuilder[T any]() *Builder[T] {
	return &Builder[T]{debounceDelay: defaultDebounceDelay}
}

// File sets the path of the backing configuration file. Required.
func (b *Builder[T]) File(path string) *Builder[T] {
	b.path = path
	return b
}

// HotReload enables a background watcher on the built cell.
func (b *Builder[T]) HotReload(enabled bool) *Builder[T] {
	b.hotReload = enabled
	return b
}

// ValidateOnLoad runs the value's validation capability after the
// initial load. The failure policy is set with ValidationPolicy and
// defaults to best-effort.
func (b *Builder[T]) ValidateOnLoad(enabled bool) *Builder[T] {
	b.validateOnLoad = enabled
	return b
}

// ValidationPolicy chooses between best-effort and strict
// validate-on-load behavior.
func (b *Builder[T]) ValidationPolicy(mode ValidationMode) *Builder[T] {
	b.validationMode = mode
	return b
}

// CreateIfMissing writes the default content to the path when no file
// exists there yet.
func (b *Builder[T]) CreateIfMissing(enabled bool) *Builder[T] {
	b.createIfMissing = enabled
	return b
}

// DefaultContent sets the text written when creating a missing file.
// Without it, an empty JSON object is written.
func (b *Builder[T]) DefaultContent(content string) *Builder[T] {
	b.defaultContent = mo.Some(content)
	return b
}

// DebounceDelay overrides the watcher settle window used when
// hot-reload is enabled.
func (b *Builder[T]) DebounceDelay(d time.Duration) *Builder[T] {
	b.debounceDelay = d
	return b
}

// Build creates the cell: optionally creates the missing file, loads
// the initial value, starts the watcher when hot-reload is on, and runs
// validate-on-load per the configured policy. Initial load failures
// always propagate.
func (b *Builder[T]) Build(ctx context.Context) (*Cell[T], error) {
	if b.path == "" {
		return nil, InvalidPathError{Reason: "no file path specified"}
	}

	if b.createIfMissing && !Readable(b.path) {
		content := b.defaultContent.OrElse("{}")
		if err := os.WriteFile(b.path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("hotconf: failed to create %s: %w", b.path, err)
		}
		log.Info().Str("path", b.path).Msg("created missing configuration file")
	}

	c, err := New[T](b.path)
	if err != nil {
		return nil, err
	}

	if b.hotReload {
		if err := c.StartWatch(ctx, WithDebounceDelay(b.debounceDelay)); err != nil {
			c.pub.close()
			return nil, err
		}
	}

	if b.validateOnLoad {
		if verr := c.Validate(ctx); verr != nil {
			if b.validationMode == ValidationStrict {
				_ = c.Close()
				return nil, verr
			}
			log.Warn().Err(verr).Str("path", b.path).Msg("validate-on-load failed")
		}
	}
	return c, nil
}

// WebApp returns a builder seeded with a typical web application
// config, created on first use and validated on load.
func WebApp[T any]() *Builder[T] {
	return NewBuilder[T]().
		DefaultContent(`{
  "server": {
    "host": "localhost",
    "port": 8080,
    "workers": 4
  },
  "database": {
    "url": "postgresql://localhost/myapp",
    "pool_size": 10
  },
  "logging": {
    "level": "info",
    "file": "app.log"
  }
}`).
		CreateIfMissing(true).
		ValidateOnLoad(true)
}

// CLIApp returns a builder seeded with a typical command-line tool
// config, created on first use.
func CLIApp[T any]() *Builder[T] {
	return NewBuilder[T]().
		DefaultContent(`{
  "output": {
    "format": "json",
    "pretty": true
  },
  "input": {
    "default_source": "stdin"
  },
  "logging": {
    "level": "warn"
  }
}`).
		CreateIfMissing(true)
}

// Microservice returns a builder seeded with a typical service config,
// created on first use and hot-reloaded.
func Microservice[T any]() *Builder[T] {
	return NewBuilder[T]().
		DefaultContent(`{
  "service": {
    "name": "my-service",
    "version": "1.0.0"
  },
  "http": {
    "port": 3000,
    "host": "0.0.0.0"
  },
  "health": {
    "endpoint": "/health",
    "interval": 30
  }
}`).
		CreateIfMissing(true).
		HotReload(true)
}
