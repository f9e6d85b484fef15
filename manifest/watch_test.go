package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sounds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sounds: []\n"), 0644))

	w, err := NewWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	// Unrelated file in the same directory is ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644))

	// A burst of writes collapses into one event
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("sounds: []\n"), 0644))
	}

	select {
	case got := <-w.Events:
		want, _ := filepath.Abs(path)
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("expected change event")
	}

	select {
	case got := <-w.Events:
		t.Fatalf("unexpected second event %s", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sounds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sounds: []\n"), 0644))

	w, err := NewWatcher(path, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounce)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events
	assert.False(t, ok)
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "sounds.yaml"), 0)
	assert.Error(t, err)
}
