package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerCountsOutcomes(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("navigation_audit").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("navigation_audit").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("navigation_audit", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("navigation_audit", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("navigation_audit")))
}

func TestAuditCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.AddAuditEvent("redirect", false)
	m.AddAuditEvent("redirect", true)
	m.AddPruned(12)
	m.AddPruned(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.audits.WithLabelValues("redirect", "stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.audits.WithLabelValues("redirect", "duplicate")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.pruned))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NoError(t, m.Track("x").End(nil))
	m.AddAuditEvent("redirect", false)
	m.AddPruned(3)
}
