package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the coalescing window used when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// FileWatcher watches a single file using fsnotify.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string

	debounce time.Duration
	logger   *zap.Logger

	events chan Event
	errors chan error

	mu       sync.Mutex
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce sets the coalescing window. Zero or negative keeps the default.
func WithDebounce(d time.Duration) Option {
	return func(w *FileWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *FileWatcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New starts watching path.
func New(path string, opts ...Option) (*FileWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrPathNotExist
		}
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &FileWatcher{
		watcher:  fsw,
		path:     absPath,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		events:   make(chan Event, 16),
		errors:   make(chan error, 16),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.closedWg.Add(1)
	go w.processLoop()

	w.logger.Debug("watching file", zap.String("path", absPath), zap.Duration("debounce", w.debounce))
	return w, nil
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Events returns the debounced event channel. It is closed by Close.
func (w *FileWatcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel. It is closed by Close.
func (w *FileWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. Pending events are dropped.
func (w *FileWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()
	close(w.events)
	close(w.errors)
	return w.watcher.Close()
}

// processLoop handles incoming fsnotify events and flushes the pending
// event once no new operation arrived for the debounce window.
func (w *FileWatcher) processLoop() {
	defer w.closedWg.Done()

	var (
		pending Event
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(fsEvent.Name) != w.path {
				continue
			}
			op := convertOp(fsEvent.Op)
			if op == 0 {
				continue
			}
			pending.Path = w.path
			pending.Op |= op
			pending.Timestamp = time.Now()
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.sendEvent(pending)
			pending = Event{}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.String("path", w.path), zap.Error(err))
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *FileWatcher) sendEvent(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("file changed", zap.String("path", event.Path), zap.Stringer("op", event.Op))
	default:
		w.logger.Warn("event channel full, dropping event", zap.String("path", event.Path))
	}
}

// convertOp converts fsnotify.Op to watcher.Op.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}
