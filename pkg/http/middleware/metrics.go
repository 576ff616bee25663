package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
	size     *prometheus.HistogramVec
}

var (
	httpOnce sync.Once
	httpM    *httpMetrics
)

// Report runs take tens of seconds, so the buckets reach past a minute.
func loadHTTPMetrics() *httpMetrics {
	httpOnce.Do(func() {
		f := promauto.With(prometheus.DefaultRegisterer)
		httpM = &httpMetrics{
			requests: f.NewCounterVec(prometheus.CounterOpts{
				Name: "finscope_http_requests_total",
				Help: "HTTP requests by route template, method and status code.",
			}, []string{"route", "method", "status"}),
			duration: f.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "finscope_http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
			}, []string{"route", "method", "class"}),
			inFlight: f.NewGauge(prometheus.GaugeOpts{
				Name: "finscope_http_in_flight_requests",
				Help: "Requests currently being served, including open report streams.",
			}),
			size: f.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "finscope_http_response_size_bytes",
				Help:    "HTTP response body size.",
				Buckets: prometheus.ExponentialBuckets(256, 4, 8),
			}, []string{"route", "class"}),
		}
	})
	return httpM
}

// Metrics records request metrics labelled by the route template (c.Path())
// so report keys and share tokens do not become label values.
func Metrics() echo.MiddlewareFunc {
	m := loadHTTPMetrics()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.inFlight.Inc()
			defer m.inFlight.Dec()

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			code := c.Response().Status
			class := strconv.Itoa(code/100) + "xx"

			m.requests.WithLabelValues(route, c.Request().Method, strconv.Itoa(code)).Inc()
			m.duration.WithLabelValues(route, c.Request().Method, class).Observe(time.Since(start).Seconds())
			m.size.WithLabelValues(route, class).Observe(float64(c.Response().Size))
			return nil
		}
	}
}
