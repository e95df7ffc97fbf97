package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFS is an in-memory file system for testing.
type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(data), nil
}

func newTestLoader(files memFS, path string, env ...string) *Loader {
	l := &Loader{
		file: NewTOMLLoaderWithFS(files, path),
		env:  NewEnvLoader(EnvPrefix),
	}
	l.env.environ = func() []string { return env }
	return l
}

func TestDefaults(t *testing.T) {
	cfg, err := newTestLoader(memFS{}, "/missing.toml").Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	files := memFS{"/config.toml": `
[history]
max_entries = 50

[logging]
level = "debug"
development = true

[watch]
debounce = "1s"
`}

	cfg, err := newTestLoader(files, "/config.toml").Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.History.MaxEntries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, time.Second, cfg.Watch.Debounce.Std())
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, DefaultCallLimit, cfg.Script.CallLimit)
	assert.Equal(t, DefaultScriptTimeout, cfg.Script.Timeout.Std())
}

func TestEnvOverridesFile(t *testing.T) {
	files := memFS{"/config.toml": "[history]\nmax_entries = 50\n"}

	cfg, err := newTestLoader(files, "/config.toml",
		"DBCEDIT_HISTORY_MAX_ENTRIES=7",
		"DBCEDIT_LOG_LEVEL=warn",
		"DBCEDIT_WATCH_ENABLED=false",
		"DBCEDIT_SCRIPT_CALL_LIMIT=0",
		"DBCEDIT_SCRIPT_TIMEOUT=2s",
		"DBCEDIT_SCRIPT_SINGLE_UNDO=yes",
		"OTHER_HISTORY_MAX_ENTRIES=9",
	).Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.History.MaxEntries)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, 0, cfg.Script.CallLimit)
	assert.Equal(t, 2*time.Second, cfg.Script.Timeout.Std())
	assert.True(t, cfg.Script.SingleUndo)
}

func TestParseErrorPosition(t *testing.T) {
	files := memFS{"/bad.toml": "[history]\nmax_entries = = 3\n"}

	_, err := newTestLoader(files, "/bad.toml").Load()
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "/bad.toml", pe.Path)
	assert.Equal(t, 2, pe.Line)
}

func TestUnknownKeyRejected(t *testing.T) {
	files := memFS{"/config.toml": "[history]\nmax = 3\n"}

	_, err := newTestLoader(files, "/config.toml").Load()
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		env  string
	}{
		{"zero retention", "DBCEDIT_HISTORY_MAX_ENTRIES=0"},
		{"bad level", "DBCEDIT_LOGGING_LEVEL=loud"},
		{"negative limit", "DBCEDIT_SCRIPT_CALL_LIMIT=-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := newTestLoader(memFS{}, "", tt.env).Load()
			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.Equal(t, Default(), cfg)
		})
	}
}

func TestEnvToPath(t *testing.T) {
	l := NewEnvLoader(EnvPrefix)
	assert.Equal(t, "history.max_entries", l.envToPath("DBCEDIT_HISTORY_MAX_ENTRIES"))
	assert.Equal(t, "watch.debounce", l.envToPath("DBCEDIT_WATCH_DEBOUNCE"))
	assert.Equal(t, "", l.envToPath("DBCEDIT_VERBOSE"))
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{"a": map[string]any{"x": 1, "y": 2}, "b": 1}
	src := map[string]any{"a": map[string]any{"y": 3}, "c": 4}

	got := DeepMerge(dst, src)
	assert.Equal(t, map[string]any{
		"a": map[string]any{"x": 1, "y": 3},
		"b": 1,
		"c": 4,
	}, got)
	assert.Equal(t, src, DeepMerge(nil, src))
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[script]\ncall_limit = 42\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Script.CallLimit)
}
