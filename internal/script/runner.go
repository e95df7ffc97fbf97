package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/dbcedit/internal/session"
)

// ScriptError reports a failed script run.
type ScriptError struct {
	Name  string // Script file name or chunk name
	Err   error  // Error as reported by Lua, with the script position
	Cause error  // Host error that stopped the script, if any
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s: %v", e.Name, e.Err)
}

// Unwrap returns the Lua error and the host cause.
func (e *ScriptError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Result summarizes a successful run.
type Result struct {
	Calls int // dbc calls made
	Edits int // successful edit calls
}

// Runner executes scripts against one session. Each run gets a fresh Lua
// state.
type Runner struct {
	session *session.Session

	callLimit  int
	timeout    time.Duration
	singleUndo bool
	output     io.Writer
	logger     *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithCallLimit caps dbc calls per run. Zero disables the cap.
func WithCallLimit(n int) Option {
	return func(r *Runner) {
		if n >= 0 {
			r.callLimit = n
		}
	}
}

// WithTimeout cancels runs that last longer than d. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.timeout = d
		}
	}
}

// WithSingleUndo records each successful run as one undo unit. Scripts
// cannot call undo or redo in this mode.
func WithSingleUndo(on bool) Option {
	return func(r *Runner) {
		r.singleUndo = on
	}
}

// WithOutput redirects print. Defaults to io.Discard.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.output = w
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner for s.
func NewRunner(s *session.Session, opts ...Option) *Runner {
	r := &Runner{
		session: s,
		output:  io.Discard,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunFile runs the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) (Result, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return Result{}, &ScriptError{Name: path, Err: err}
	}
	return r.Run(ctx, path, string(code))
}

// Run executes code. On failure every edit the script made is rolled back.
func (r *Runner) Run(ctx context.Context, name, code string) (Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	L := newState(r.output)
	defer L.Close()
	L.SetContext(ctx)

	cp := r.session.Checkpoint()
	mod := NewModule(r.session, r.callLimit)
	mod.LimitUndo(cp)
	if err := mod.Register(L); err != nil {
		return Result{}, &ScriptError{Name: name, Err: err}
	}

	log := r.logger.With(zap.String("script", name))
	log.Debug("script started")

	exec := func() error {
		return doWithRecovery(func() error {
			fn, err := L.Load(strings.NewReader(code), name)
			if err != nil {
				return err
			}
			L.Push(fn)
			return L.PCall(0, lua.MultRet, nil)
		})
	}
	var runErr error
	if r.singleUndo {
		runErr = r.session.Transaction("Script "+name, exec)
	} else {
		runErr = exec()
	}
	res := Result{Calls: mod.Calls(), Edits: mod.Edits()}

	if runErr == nil {
		log.Info("script finished", zap.Int("calls", res.Calls), zap.Int("edits", res.Edits))
		return res, nil
	}

	scriptErr := &ScriptError{Name: name, Err: runErr, Cause: mod.Err()}
	if ctx.Err() != nil {
		scriptErr.Cause = ctx.Err()
	}

	if err := r.session.RollbackTo(cp); err != nil {
		log.Error("script rollback failed", zap.Error(err))
		scriptErr.Err = errors.Join(runErr, err)
	} else if res.Edits > 0 {
		log.Warn("script failed, edits rolled back", zap.Int("edits", res.Edits), zap.Error(runErr))
	} else {
		log.Warn("script failed", zap.Error(runErr))
	}
	return res, scriptErr
}

// newState creates a Lua state with only the safe standard libraries.
func newState(out io.Writer) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		fmt.Fprintln(out, strings.Join(parts, "\t"))
		return 0
	}))
	return L
}

// doWithRecovery executes a function with panic recovery.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
