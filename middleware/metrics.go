// middleware/metrics.go
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus instruments exported at /metrics
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	DayStarts       prometheus.Counter
	DayEnds         prometheus.Counter
	TasksCompleted  prometheus.Counter
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}),
		DayStarts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "driver_day_starts_total",
			Help:      "The total number of driver shifts started",
		}),
		DayEnds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "driver_day_ends_total",
			Help:      "The total number of driver shifts ended",
		}),
		TasksCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "The total number of booking tasks completed",
		}),
	}
}

// HTTPMetrics records request count and latency per route
func (m *Metrics) HTTPMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			m.RequestsTotal.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			m.RequestDuration.Observe(time.Since(start).Seconds())
			return err
		}
	}
}
