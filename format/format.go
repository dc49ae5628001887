// Package format provides configuration file format detection and the
// codec registry used by the loader. Individual codecs can be excluded
// from a build with the hotconf_no_json, hotconf_no_yaml, and
// hotconf_no_toml build tags; an excluded format surfaces as an
// UnsupportedError at runtime instead of a compile failure.
package format

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Format identifies a supported configuration file format.
type Format int

// Supported formats. Unknown is returned by Detect for unrecognized
// extensions; saving an Unknown-format path falls back to JSON.
const (
	Unknown Format = iota
	JSON
	YAML
	TOML
)

// String returns the canonical upper-case name of the format.
func (f Format) String() string {
	switch f {
	case JSON:
		return "JSON"
	case YAML:
		return "YAML"
	case TOML:
		return "TOML"
	default:
		return "Unknown"
	}
}

// Extension returns the default file extension for the format.
// Unknown maps to "json", matching the save-path fallback.
func (f Format) Extension() string {
	switch f {
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	default:
		return "json"
	}
}

// MIMEType returns the MIME type for the format.
func (f Format) MIMEType() string {
	switch f {
	case YAML:
		return "application/x-yaml"
	case TOML:
		return "application/toml"
	default:
		return "application/json"
	}
}

// Detect determines the format of a path from its extension.
// Unrecognized or missing extensions return Unknown.
func Detect(path string) Format {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "json":
		return JSON
	case "yaml", "yml":
		return YAML
	case "toml":
		return TOML
	default:
		return Unknown
	}
}

// Sniff guesses the format of raw file content. A leading '{' or '['
// reads as JSON, a leading '#' or any ':' reads as YAML, and anything
// else is assumed to be TOML.
func Sniff(content []byte) Format {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return JSON
	}
	if (len(trimmed) > 0 && trimmed[0] == '#') || bytes.ContainsRune(content, ':') {
		return YAML
	}
	return TOML
}

// Codec serializes and deserializes typed values for one format.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// UnsupportedError is returned when no codec is registered for a format,
// typically because it was excluded from the build.
type UnsupportedError struct {
	Format Format
}

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("format: %s is not supported in this build", e.Format)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[Format]Codec)
)

// Register installs a codec for a format, replacing any previous codec.
// The built-in codecs register themselves from init; applications only
// need Register to supply a custom implementation.
func Register(f Format, c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[f] = c
}

// Lookup returns the codec registered for a format, or an
// UnsupportedError when the format has no codec in this build.
func Lookup(f Format) (Codec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if c, ok := registry[f]; ok {
		return c, nil
	}
	return nil, UnsupportedError{Format: f}
}
