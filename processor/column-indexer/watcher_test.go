package columnindexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := NewWatcher(WatcherConfig{Root: root, DebounceDelay: 100 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	require.NoError(t, w.Start(ctx))
	return w
}

func nextEvent(t *testing.T, w *Watcher) WatchEvent {
	t.Helper()
	select {
	case event, ok := <-w.Events():
		require.True(t, ok, "events channel closed")
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return WatchEvent{}
	}
}

func TestWatcherCreateAndModify(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "1994"), 0o755))
	w := startWatcher(t, root)

	path := filepath.Join(root, "1994", "campothr.dat")
	require.NoError(t, os.WriteFile(path, []byte("CA0EQ94R\n1\n"), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, OpCreate, event.Operation)
	assert.Equal(t, filepath.Join("1994", "campothr.dat"), event.Path)
	require.NotNil(t, event.File)
	assert.Equal(t, "othr", event.File.RootName)
	assert.Equal(t, 1994, event.File.Year)

	require.NoError(t, os.WriteFile(path, []byte("CA0EQ94R,CA0AT94R\n1,2\n"), 0o644))
	event = nextEvent(t, w)
	assert.Equal(t, OpModify, event.Operation)
}

func TestWatcherNewYearDirectory(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	require.NoError(t, os.Mkdir(filepath.Join(root, "2013"), 0o755))
	// Give the watcher time to add the new directory.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "2013", "distref.dat"), []byte("DISTRICT\n1\n"), 0o644))

	event := nextEvent(t, w)
	require.NotNil(t, event.File)
	assert.Equal(t, 2013, event.File.Year)
	assert.Equal(t, "ref", event.File.RootName)
}

func TestWatcherIgnoresUnchangedContent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "1994"), 0o755))
	path := filepath.Join(root, "1994", "campothr.dat")
	require.NoError(t, os.WriteFile(path, []byte("CA0EQ94R\n1\n"), 0o644))

	w := startWatcher(t, root)
	w.Prime(path)

	require.NoError(t, os.WriteFile(path, []byte("CA0EQ94R\n1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "1994", "notes.txt"), []byte("x"), 0o644))

	select {
	case event := <-w.Events():
		t.Fatalf("unexpected event %+v", event)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherStopWithoutStart(t *testing.T) {
	w, err := NewWatcher(WatcherConfig{Root: t.TempDir()})
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
