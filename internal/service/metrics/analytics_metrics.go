package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finscope",
			Subsystem: "provider",
			Name:      "latency_seconds",
			Help:      "Latency of outbound provider calls",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"provider"},
	)

	ProviderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finscope",
			Subsystem: "provider",
			Name:      "errors_total",
			Help:      "Failed outbound provider calls",
		},
		[]string{"provider"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ProviderLatency, ProviderErrors)
	})
}

// ObserveProvider records one call that started at start.
func ObserveProvider(provider string, start time.Time, err error) {
	ProviderLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		ProviderErrors.WithLabelValues(provider).Inc()
	}
}
