package localstore

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	root := t.TempDir()

	file, err := OpenFile(filepath.Join(root, "state", "client.json"))
	require.NoError(t, err)
	db, err := OpenSQLite(filepath.Join(root, "state", "client.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		BackendFile:   file,
		BackendSQLite: db,
		BackendMemory: NewMemory(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoresRoundTripValues(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			var missing []string
			ok, err := store.Get("recent_topic_filters", &missing)
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, store.Set("recent_topic_filters", []string{"unread", "participated"}))
			require.NoError(t, store.Set("recent_topic_filters", []string{"include_muted"}))

			var got []string
			ok, err = store.Get("recent_topic_filters", &got)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, []string{"include_muted"}, got)

			require.NoError(t, store.Remove("recent_topic_filters"))
			require.ErrorIs(t, store.Remove("recent_topic_filters"), ErrNotFound)
		})
	}
}

func TestStoresRejectBlankKeys(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.Error(t, store.Set("  ", "x"))
			_, err := store.Get("", nil)
			require.Error(t, err)
		})
	}
}

func TestFileFlushesOnCloseAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	f, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set("recent_topic_filters", []string{"unread"}))
	require.NoError(t, f.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	var got []string
	ok, err := reopened.Get("recent_topic_filters", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"unread"}, got)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFileLogsFailedDebouncedSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	f, err := OpenFile(path)
	require.NoError(t, err)
	var out lockedBuffer
	f.log = zerolog.New(&out)
	f.debounce = 5 * time.Millisecond

	// A directory where the temp file goes makes every write fail.
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))

	require.NoError(t, f.Set("recent_topic_filters", []string{"unread"}))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "save client storage")
	}, time.Second, 5*time.Millisecond)
	require.Contains(t, out.String(), path)

	require.Error(t, f.Set("recent_topic_filters", []string{"participated"}))
	require.NoError(t, os.Remove(path+".tmp"))
	require.NoError(t, f.Close())
}

func TestSQLitePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Set("k", map[string]int{"a": 1}))
	require.NoError(t, db.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	var got map[string]int
	ok, err := reopened.Get("k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, got["a"])
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(Config{Backend: "redis", Path: filepath.Join(t.TempDir(), "x")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown storage backend")
}
