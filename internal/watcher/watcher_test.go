package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 50 * time.Millisecond

func newTestFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bus.dbc")
	require.NoError(t, os.WriteFile(path, []byte("VERSION \"\"\n"), 0o644))
	return path
}

func waitEvent(t *testing.T, w *FileWatcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "WRITE", OpWrite.String())
	assert.Equal(t, "CREATE|RENAME", (OpCreate | OpRename).String())
	assert.Equal(t, "UNKNOWN", Op(0).String())
	assert.True(t, (OpWrite | OpRemove).Gone())
	assert.False(t, OpWrite.Gone())
}

func TestConvertOp(t *testing.T) {
	assert.Equal(t, OpWrite|OpChmod, convertOp(fsnotify.Write|fsnotify.Chmod))
	assert.Equal(t, OpRemove, convertOp(fsnotify.Remove))
}

func TestNewMissingPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.dbc"))
	assert.ErrorIs(t, err, ErrPathNotExist)
}

func TestWriteIsReported(t *testing.T) {
	path := newTestFile(t)
	w, err := New(path, WithDebounce(testDebounce))
	require.NoError(t, err)
	defer w.Close()

	abs, _ := filepath.Abs(path)
	assert.Equal(t, abs, w.Path())

	require.NoError(t, os.WriteFile(path, []byte("VERSION \"2\"\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("VERSION \"3\"\n"), 0o644))

	ev := waitEvent(t, w)
	assert.Equal(t, abs, ev.Path)
	assert.True(t, ev.Op.Has(OpWrite))
	assert.False(t, ev.Timestamp.IsZero())
}

func TestOtherFilesIgnored(t *testing.T) {
	path := newTestFile(t)
	w, err := New(path, WithDebounce(testDebounce))
	require.NoError(t, err)
	defer w.Close()

	other := filepath.Join(filepath.Dir(path), "other.dbc")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(5 * testDebounce):
	}
}

func TestRemoveIsReported(t *testing.T) {
	path := newTestFile(t)
	w, err := New(path, WithDebounce(testDebounce))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.Remove(path))
	ev := waitEvent(t, w)
	assert.True(t, ev.Op.Gone())
}

func TestCloseClosesChannels(t *testing.T) {
	w, err := New(newTestFile(t))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok)
	_, ok = <-w.Errors()
	assert.False(t, ok)
}
