package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	require.NoError(t, metrics.Track("records:transition").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, metrics.Track("records:transition").End(boom), boom)
	metrics.AddAudited("approved")

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("records:transition", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.failures.WithLabelValues("records:transition")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.audited.WithLabelValues("approved")))
}

func TestNilMetricsTrackerPassesErrorThrough(t *testing.T) {
	var metrics *Metrics
	boom := errors.New("boom")
	require.ErrorIs(t, metrics.Track("x").End(boom), boom)
	metrics.AddAudited("flagged")
}
