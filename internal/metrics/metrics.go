// Package metrics collects edit-session activity as Prometheus metrics.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collector holds the session metrics and the registry they live in.
type Collector struct {
	registry *prometheus.Registry

	OperationsApplied *prometheus.CounterVec
	Undos             prometheus.Counter
	Redos             prometheus.Counter
	Failures          *prometheus.CounterVec
	HistoryDepth      *prometheus.GaugeVec
}

// NewCollector creates a collector with its own registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	applied := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_applied_total",
			Help:      "Total number of new edit operations applied",
		},
		[]string{"kind"},
	)

	undos := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undo_total",
			Help:      "Total number of successful undo steps",
		},
	)

	redos := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redo_total",
			Help:      "Total number of successful redo steps",
		},
	)

	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Total number of failed apply, undo and redo calls",
		},
		[]string{"action"},
	)

	depth := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_depth",
			Help:      "Number of undo and redo steps currently available",
		},
		[]string{"direction"},
	)

	registry.MustRegister(applied, undos, redos, failures, depth)

	return &Collector{
		registry:          registry,
		OperationsApplied: applied,
		Undos:             undos,
		Redos:             redos,
		Failures:          failures,
		HistoryDepth:      depth,
	}
}

// Registry returns the registry holding this collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordApplied counts a new operation of the given kind.
func (c *Collector) RecordApplied(kind string) {
	if c == nil {
		return
	}
	c.OperationsApplied.WithLabelValues(kind).Inc()
}

// RecordUndo counts a successful undo step.
func (c *Collector) RecordUndo() {
	if c == nil {
		return
	}
	c.Undos.Inc()
}

// RecordRedo counts a successful redo step.
func (c *Collector) RecordRedo() {
	if c == nil {
		return
	}
	c.Redos.Inc()
}

// RecordFailure counts a failed action ("apply", "undo", "redo").
func (c *Collector) RecordFailure(action string) {
	if c == nil {
		return
	}
	c.Failures.WithLabelValues(action).Inc()
}

// SetHistoryDepth publishes the available undo and redo steps.
func (c *Collector) SetHistoryDepth(undo, redo int) {
	if c == nil {
		return
	}
	c.HistoryDepth.WithLabelValues("undo").Set(float64(undo))
	c.HistoryDepth.WithLabelValues("redo").Set(float64(redo))
}

// WriteText writes all metrics in the Prometheus text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
