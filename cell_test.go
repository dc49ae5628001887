package hotconf

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarluq/hotconf/validate"
)

func newTestCell(t *testing.T, value int) (*Cell[testConfig], string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, jsonContent(value))

	cell, err := New[testConfig](path)
	require.NoError(t, err)
	return cell, path
}

func TestNewInitialState(t *testing.T) {
	t.Parallel()

	before := time.Now()
	cell, path := newTestCell(t, 42)
	defer cell.Close()

	assert.Equal(t, uint64(1), cell.Version())
	assert.Equal(t, testConfig{Name: "app", Value: 42, Enabled: true}, cell.Get())
	assert.False(t, cell.LastModified().Before(before))
	assert.Equal(t, path, cell.Path())
	assert.NotEqual(t, uuid.Nil, cell.ID())
}

func TestNewMissingFile(t *testing.T) {
	t.Parallel()

	_, err := New[testConfig](filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)

	var notFound FileNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestNewMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, "{not json")

	_, err := New[testConfig](path)
	require.Error(t, err)

	var decodeErr DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestReloadBumpsVersion(t *testing.T) {
	t.Parallel()

	cell, path := newTestCell(t, 1)
	defer cell.Close()

	before := cell.LastModified()
	writeFile(t, path, jsonContent(2))
	require.NoError(t, cell.Reload())

	assert.Equal(t, uint64(2), cell.Version())
	assert.Equal(t, 2, cell.Get().Value)
	assert.False(t, cell.LastModified().Before(before))

	writeFile(t, path, jsonContent(3))
	require.NoError(t, cell.Reload())
	assert.Equal(t, uint64(3), cell.Version())
}

func TestReloadFailureLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	cell, path := newTestCell(t, 1)
	defer cell.Close()

	sub := cell.Subscribe()
	defer sub.Close()

	wantValue := cell.Get()
	wantVersion := cell.Version()
	wantModified := cell.LastModified()

	writeFile(t, path, "{broken json")
	err := cell.Reload()
	require.Error(t, err)

	assert.Equal(t, wantValue, cell.Get())
	assert.Equal(t, wantVersion, cell.Version())
	assert.Equal(t, wantModified, cell.LastModified())

	// No publication happened either.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, recvErr := sub.Recv(ctx)
	assert.ErrorIs(t, recvErr, context.DeadlineExceeded)
}

func TestReloadPublishesToSubscribers(t *testing.T) {
	t.Parallel()

	cell, path := newTestCell(t, 1)
	defer cell.Close()

	sub1 := cell.Subscribe()
	defer sub1.Close()
	sub2 := cell.Subscribe()
	defer sub2.Close()

	writeFile(t, path, jsonContent(2))
	require.NoError(t, cell.Reload())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, sub := range []*Subscription[testConfig]{sub1, sub2} {
		got, err := sub.Recv(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Value)
	}

	// A subscriber's own Get after waking sees data at least as new as
	// the notification.
	assert.GreaterOrEqual(t, cell.Get().Value, 2)
}

func TestSubscribeAfterPublications(t *testing.T) {
	t.Parallel()

	cell, path := newTestCell(t, 1)
	defer cell.Close()

	writeFile(t, path, jsonContent(2))
	require.NoError(t, cell.Reload())

	late := cell.Subscribe()
	defer late.Close()

	writeFile(t, path, jsonContent(3))
	require.NoError(t, cell.Reload())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := late.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Value, "late subscriber sees only publications after attaching")
}

func TestConcurrentGetDuringReload(t *testing.T) {
	t.Parallel()

	cell, path := newTestCell(t, 1)
	defer cell.Close()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap := cell.Snapshot()
			// The value always matches the version it was installed
			// under: version N carries value N.
			assert.Equal(t, int(snap.Version), snap.Data.Value,
				"snapshot must never mix old and new state")
		}
	}()

	for v := 2; v <= 20; v++ {
		writeFile(t, path, jsonContent(v))
		require.NoError(t, cell.Reload())
	}
	close(stop)
	wg.Wait()
}

func TestSaveDoesNotBumpVersion(t *testing.T) {
	t.Parallel()

	cell, path := newTestCell(t, 5)
	defer cell.Close()

	require.NoError(t, cell.Save())
	assert.Equal(t, uint64(1), cell.Version())

	// The file round-trips through the cell's current value.
	loaded, err := Load[testConfig](path)
	require.NoError(t, err)
	assert.Equal(t, cell.Get(), loaded)
}

func TestSaveTo(t *testing.T) {
	t.Parallel()

	cell, _ := newTestCell(t, 7)
	defer cell.Close()

	target := filepath.Join(t.TempDir(), "copy.yaml")
	require.NoError(t, cell.SaveTo(target))

	loaded, err := Load[testConfig](target)
	require.NoError(t, err)
	assert.Equal(t, cell.Get(), loaded)
	assert.Equal(t, uint64(1), cell.Version())
}

type validatedConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func (c validatedConfig) Validate(_ context.Context) error {
	if err := validate.CheckNotEmpty(c.Host, "host"); err != nil {
		return err
	}
	return validate.CheckPort(c.Port, "port")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	ctx := context.Background()

	goodPath := filepath.Join(tmpDir, "good.json")
	writeFile(t, goodPath, `{"host": "localhost", "port": 8080}`)
	good, err := New[validatedConfig](goodPath)
	require.NoError(t, err)
	defer good.Close()
	assert.NoError(t, good.Validate(ctx))

	badPath := filepath.Join(tmpDir, "bad.json")
	writeFile(t, badPath, `{"host": "", "port": 0}`)
	bad, err := New[validatedConfig](badPath)
	require.NoError(t, err)
	defer bad.Close()

	verr := bad.Validate(ctx)
	require.Error(t, verr)
	var fe validate.FieldError
	assert.True(t, errors.As(verr, &fe))
}

func TestValidateNotValidatable(t *testing.T) {
	t.Parallel()

	cell, _ := newTestCell(t, 1)
	defer cell.Close()

	err := cell.Validate(context.Background())
	require.ErrorIs(t, err, ErrNotValidatable)
}

type clonedConfig struct {
	Tags map[string]string `json:"tags"`
}

func (c clonedConfig) Clone() clonedConfig {
	tags := make(map[string]string, len(c.Tags))
	for k, v := range c.Tags {
		tags[k] = v
	}
	return clonedConfig{Tags: tags}
}

func TestGetUsesClonerCapability(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"tags": {"env": "prod"}}`)

	cell, err := New[clonedConfig](path)
	require.NoError(t, err)
	defer cell.Close()

	got := cell.Get()
	got.Tags["env"] = "mutated"

	assert.Equal(t, "prod", cell.Get().Tags["env"],
		"mutating a returned copy must not affect the cell")
}

func TestZeroValueCell(t *testing.T) {
	t.Parallel()

	var cell Cell[testConfig]
	assert.ErrorIs(t, cell.Reload(), ErrNotInitialized)
	assert.ErrorIs(t, cell.SaveTo(filepath.Join(t.TempDir(), "x.json")), ErrNotInitialized)
	assert.ErrorIs(t, cell.Validate(context.Background()), ErrNotInitialized)
}

func TestCellCloseStopsWatcher(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, jsonContent(1))

	cell, err := NewWithWatch[testConfig](path)
	require.NoError(t, err)
	require.NoError(t, cell.Close())

	// The value is still readable after close.
	assert.Equal(t, 1, cell.Get().Value)

	// Closing again reports nothing new.
	assert.NoError(t, cell.Close())
}

func TestSnapshotConsistency(t *testing.T) {
	t.Parallel()

	cell, path := newTestCell(t, 1)
	defer cell.Close()

	snap := cell.Snapshot()
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, 1, snap.Data.Value)

	writeFile(t, path, jsonContent(2))
	require.NoError(t, cell.Reload())

	snap = cell.Snapshot()
	assert.Equal(t, uint64(2), snap.Version)
	assert.Equal(t, 2, snap.Data.Value)
}
