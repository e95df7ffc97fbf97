package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Default values.
const (
	DefaultMaxEntries       = 1000
	DefaultLogLevel         = "info"
	DefaultDebounce         = 250 * time.Millisecond
	DefaultCallLimit        = 100_000
	DefaultScriptTimeout    = 5 * time.Second
	DefaultNamespace        = "dbcedit"
)

// Config holds every dbcedit setting.
type Config struct {
	History HistoryConfig `toml:"history"`
	Logging LoggingConfig `toml:"logging"`
	Watch   WatchConfig   `toml:"watch"`
	Script  ScriptConfig  `toml:"script"`
	Metrics MetricsConfig `toml:"metrics"`
}

// HistoryConfig controls undo retention.
type HistoryConfig struct {
	MaxEntries int `toml:"max_entries" validate:"gte=1,lte=1000000"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `toml:"level" validate:"oneof=debug info warn error"`
	Development bool   `toml:"development"`
}

// WatchConfig controls watching the loaded file for outside changes.
type WatchConfig struct {
	Enabled  bool     `toml:"enabled"`
	Debounce Duration `toml:"debounce" validate:"gte=0"`
}

// ScriptConfig controls the Lua script runner.
type ScriptConfig struct {
	// CallLimit caps dbc.* calls per run. Zero disables the cap.
	CallLimit int `toml:"call_limit" validate:"gte=0"`
	// Timeout cancels a run that takes longer. Zero disables it.
	Timeout Duration `toml:"timeout" validate:"gte=0"`
	// SingleUndo records a whole run as one undo unit.
	SingleUndo bool `toml:"single_undo"`
}

// MetricsConfig controls the prometheus collector.
type MetricsConfig struct {
	Namespace string `toml:"namespace" validate:"required"`
}

// Duration is a time.Duration read from strings such as "250ms".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		History: HistoryConfig{MaxEntries: DefaultMaxEntries},
		Logging: LoggingConfig{Level: DefaultLogLevel},
		Watch:   WatchConfig{Enabled: true, Debounce: Duration(DefaultDebounce)},
		Script:  ScriptConfig{CallLimit: DefaultCallLimit, Timeout: Duration(DefaultScriptTimeout)},
		Metrics: MetricsConfig{Namespace: DefaultNamespace},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "dbcedit", "config.toml")
}

// Load reads the file at path, applies DBCEDIT_ environment overrides and
// validates the result. A missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	return NewLoader(path).Load()
}

// Loader combines a TOML file and the environment into a Config.
type Loader struct {
	file *TOMLLoader
	env  *EnvLoader
}

// NewLoader creates a loader for path using the OS file system and the
// process environment.
func NewLoader(path string) *Loader {
	return &Loader{
		file: NewTOMLLoader(path),
		env:  NewEnvLoader(EnvPrefix),
	}
}

// Load merges the layers over the defaults.
func (l *Loader) Load() (Config, error) {
	cfg := Default()

	fileValues, err := l.file.Load()
	if err != nil {
		return cfg, err
	}
	envValues, err := l.env.Load()
	if err != nil {
		return cfg, err
	}
	merged := DeepMerge(fileValues, envValues)

	source := l.file.path
	if source == "" {
		source = "environment"
	}
	if err := decode(source, merged, &cfg); err != nil {
		return Default(), err
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// decode re-encodes the merged map and decodes it strictly so unknown keys
// and type mismatches are reported.
func decode(source string, values map[string]any, cfg *Config) error {
	if len(values) == 0 {
		return nil
	}
	data, err := toml.Marshal(values)
	if err != nil {
		return newParseError(source, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return newParseError(source, err)
	}
	return nil
}

var validate = validator.New()

// Validate checks every setting range.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s %s", e.Namespace(), e.Tag(), e.Param()))
	}
	return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(msgs, "; "))
}
