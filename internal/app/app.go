package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/dbcedit/internal/config"
	"github.com/dshills/dbcedit/internal/logging"
	"github.com/dshills/dbcedit/internal/metrics"
	"github.com/dshills/dbcedit/internal/script"
	"github.com/dshills/dbcedit/internal/session"
	"github.com/dshills/dbcedit/internal/watcher"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses the
	// per-user default location.
	ConfigPath string

	// File is the DBC file to open. Empty starts from an empty document.
	File string

	// LogLevel overrides logging.level when set.
	LogLevel string

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer

	// Prompt enables the interactive "> " prompt.
	Prompt bool

	// Logger replaces the logger built from configuration.
	Logger *zap.Logger
}

// Application owns one session and its supporting components.
type Application struct {
	opts Options
	cfg  config.Config
	out  io.Writer

	logger  *zap.Logger
	metrics *metrics.Collector
	session *session.Session
	runner  *script.Runner
	watcher *watcher.FileWatcher

	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts, out: opts.Out}
	if app.out == nil {
		app.out = os.Stdout
	}
	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	return app, nil
}

func (app *Application) bootstrap() error {
	path := app.opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if app.opts.LogLevel != "" {
		cfg.Logging.Level = app.opts.LogLevel
	}
	app.cfg = cfg

	app.logger = app.opts.Logger
	if app.logger == nil {
		if app.logger, err = logging.New(cfg.Logging); err != nil {
			return err
		}
	}

	app.metrics = metrics.NewCollector(cfg.Metrics.Namespace)

	sessOpts := []session.Option{
		session.WithMaxEntries(cfg.History.MaxEntries),
		session.WithLogger(app.logger),
		session.WithMetrics(app.metrics),
	}
	if app.opts.File != "" {
		app.session, err = session.Open(app.opts.File, sessOpts...)
		if err != nil {
			return err
		}
	} else {
		app.session = session.New(nil, sessOpts...)
	}

	app.runner = script.NewRunner(app.session,
		script.WithCallLimit(cfg.Script.CallLimit),
		script.WithTimeout(cfg.Script.Timeout.Std()),
		script.WithSingleUndo(cfg.Script.SingleUndo),
		script.WithOutput(app.out),
		script.WithLogger(app.logger),
	)

	if cfg.Watch.Enabled && app.opts.File != "" {
		app.startWatcher()
	}
	return nil
}

// startWatcher reports outside changes to the loaded file. The overlay is
// never reloaded; the user is told the base document is stale.
func (app *Application) startWatcher() {
	w, err := watcher.New(app.opts.File,
		watcher.WithDebounce(app.cfg.Watch.Debounce.Std()),
		watcher.WithLogger(app.logger),
	)
	if err != nil {
		app.logger.Warn("file watching disabled", zap.String("path", app.opts.File), zap.Error(err))
		return
	}
	app.watcher = w

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		for {
			select {
			case ev, ok := <-w.Events():
				if !ok {
					return
				}
				app.logger.Warn("base document changed on disk",
					zap.String("path", ev.Path),
					zap.Stringer("op", ev.Op),
					zap.Bool("modified", app.session.Modified()))
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				app.logger.Warn("watch error", zap.Error(err))
			}
		}
	}()
}

// Session returns the application's session.
func (app *Application) Session() *session.Session {
	return app.session
}

// Metrics returns the application's metrics collector.
func (app *Application) Metrics() *metrics.Collector {
	return app.metrics
}

// Config returns the loaded configuration.
func (app *Application) Config() config.Config {
	return app.cfg
}

// RunScript runs a Lua script file against the session.
func (app *Application) RunScript(ctx context.Context, path string) error {
	_, err := app.runner.RunFile(ctx, path)
	return err
}

// Run reads commands from in until end of input, quit or cancellation.
// Command errors are printed and do not stop the loop.
func (app *Application) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if app.opts.Prompt {
			fmt.Fprint(app.out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		err := app.Execute(ctx, scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(app.out, "error: %v\n", err)
		}
	}
}

// Execute runs one command line.
func (app *Application) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	name, args := fields[0], fields[1:]

	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.run(ctx, app, args)
}

// Shutdown stops the watcher and flushes the logger. Safe to call more
// than once.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		if app.watcher != nil {
			if err := app.watcher.Close(); err != nil {
				app.logger.Warn("closing watcher", zap.Error(err))
			}
		}
		app.wg.Wait()
		_ = app.logger.Sync()
	})
}
