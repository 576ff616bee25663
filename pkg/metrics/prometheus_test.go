package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordStep("fetch_market", "ok")
	r.RecordStep("fetch_market", "ok")
	r.RecordStep("forecast", "partial")
	r.RecordCache("market", true)
	r.RecordCache("market", false)
	r.RecordCache("market", false)
	r.RecordError("archive_drop")
	r.RecordRun("ok", 1.5)
	r.RecordLatency("archive_kafka", 0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.steps.WithLabelValues("fetch_market", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.steps.WithLabelValues("forecast", "partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cache.WithLabelValues("market", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cache.WithLabelValues("market", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("archive_drop")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.runs)+testutil.CollectAndCount(r.latency))
}
