package metrics

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector("dbcedit")

	c.RecordApplied("rename_message")
	c.RecordApplied("rename_message")
	c.RecordApplied("add_message")
	c.RecordUndo()
	c.RecordRedo()
	c.RecordRedo()
	c.RecordFailure("undo")
	c.SetHistoryDepth(3, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.OperationsApplied.WithLabelValues("rename_message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.OperationsApplied.WithLabelValues("add_message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Undos))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Redos))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Failures.WithLabelValues("undo")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.HistoryDepth.WithLabelValues("undo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HistoryDepth.WithLabelValues("redo")))
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("dbcedit")
	b := NewCollector("dbcedit")
	a.RecordUndo()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Undos))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.RecordApplied("x")
	c.RecordUndo()
	c.RecordRedo()
	c.RecordFailure("apply")
	c.SetHistoryDepth(1, 1)
}

func TestWriteText(t *testing.T) {
	c := NewCollector("dbcedit")
	c.RecordApplied("delete_message")

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))
	assert.Contains(t, buf.String(), `dbcedit_operations_applied_total{kind="delete_message"} 1`)
}
