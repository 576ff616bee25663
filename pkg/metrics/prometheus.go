package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements the pipeline Metrics interface on Prometheus.
type Recorder struct {
	steps   *prometheus.CounterVec
	runs    *prometheus.HistogramVec
	cache   *prometheus.CounterVec
	errors  *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// New registers the collectors on reg; nil means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		steps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscope_pipeline_steps_total",
				Help: "Pipeline steps recorded, by step and status",
			},
			[]string{"step", "status"},
		),
		runs: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finscope_pipeline_run_seconds",
				Help:    "End-to-end report run duration",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"outcome"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscope_cache_lookups_total",
				Help: "Cache lookups by namespace and result",
			},
			[]string{"namespace", "result"},
		),
		errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscope_errors_total",
				Help: "Errors encountered, by kind",
			},
			[]string{"kind"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finscope_operation_duration_seconds",
				Help:    "Duration of background operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordStep(step, status string) {
	r.steps.WithLabelValues(step, status).Inc()
}

func (r *Recorder) RecordRun(outcome string, seconds float64) {
	r.runs.WithLabelValues(outcome).Observe(seconds)
}

func (r *Recorder) RecordCache(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cache.WithLabelValues(namespace, result).Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
