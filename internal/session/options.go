package session

import (
	"go.uber.org/zap"

	"github.com/dshills/dbcedit/internal/history"
	"github.com/dshills/dbcedit/internal/metrics"
)

// DefaultMaxEntries is the default retention cap of a session's history.
const DefaultMaxEntries = history.DefaultMaxEntries

// Option configures a Session during creation.
type Option func(*Session)

// WithMaxEntries sets the maximum number of undo history entries.
func WithMaxEntries(max int) Option {
	return func(s *Session) {
		if max > 0 {
			s.maxEntries = max
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics collector. Defaults to none.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Session) {
		s.metrics = c
	}
}

// WithPath records the file the base document was loaded from.
func WithPath(path string) Option {
	return func(s *Session) {
		s.path = path
	}
}
