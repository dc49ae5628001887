package hotconf

import (
	"context"
	"fmt"
	"os"
	"time"
)

// filePollInterval is how often WaitForFile re-checks the path.
const filePollInterval = 100 * time.Millisecond

// Readable reports whether the path exists and can be stat'd.
func Readable(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ModTime returns the last-modified time of the file at path.
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("hotconf: failed to stat %s: %w", path, err)
	}
	return info.ModTime(), nil
}

// WaitForFile polls until the path becomes readable, the timeout
// expires (ErrTimeout), or the context is done.
func WaitForFile(ctx context.Context, path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(filePollInterval)
	defer ticker.Stop()

	for {
		if Readable(path) {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
