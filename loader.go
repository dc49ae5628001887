package hotconf

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/omarluq/hotconf/format"
)

// Load reads and decodes a configuration file into T. The format is
// chosen by file extension, falling back to content sniffing when the
// extension is missing or unrecognized. Environment variables in the
// form ${VAR_NAME} are expanded before decoding.
func Load[T any](path string) (T, error) {
	var zero T
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zero, FileNotFoundError{Path: path}
		}
		return zero, fmt.Errorf("hotconf: failed to read %s: %w", path, err)
	}

	f := format.Detect(path)
	if f == format.Unknown {
		f = format.Sniff(content)
	}
	return decode[T](content, f)
}

// LoadFromReader decodes configuration from an io.Reader. Pass
// format.Unknown to sniff the format from the content.
func LoadFromReader[T any](r io.Reader, f format.Format) (T, error) {
	var zero T
	content, err := io.ReadAll(r)
	if err != nil {
		return zero, fmt.Errorf("hotconf: failed to read config: %w", err)
	}
	if f == format.Unknown {
		f = format.Sniff(content)
	}
	return decode[T](content, f)
}

func decode[T any](content []byte, f format.Format) (T, error) {
	var v T
	codec, err := format.Lookup(f)
	if err != nil {
		return v, err
	}
	expanded := os.ExpandEnv(string(content))
	if err := codec.Unmarshal([]byte(expanded), &v); err != nil {
		var zero T
		return zero, DecodeError{Format: f, Err: err}
	}
	return v, nil
}

// Save serializes a value and writes it to path, choosing the format by
// extension and defaulting to pretty-printed JSON when the extension is
// unrecognized. The write replaces the whole file and is not
// rename-atomic; a crash mid-write can leave a corrupt file.
func Save[T any](path string, value T) error {
	f := format.Detect(path)
	if f == format.Unknown {
		f = format.JSON
	}
	codec, err := format.Lookup(f)
	if err != nil {
		return err
	}
	data, err := codec.Marshal(value)
	if err != nil {
		return EncodeError{Format: f, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("hotconf: failed to write %s: %w", path, err)
	}
	return nil
}
