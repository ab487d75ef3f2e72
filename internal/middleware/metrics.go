// file: internal/middleware/metrics.go
package middleware

import (
	"net/http"
	"sync/atomic"
	"time"
)

// HTTPMetrics tracks request counters for the metrics endpoint
type HTTPMetrics struct {
	requestsTotal  int64
	responses2xx   int64
	responses4xx   int64
	responses5xx   int64
	inFlight       int64
	totalLatencyNs int64
}

// HTTPMetricsSnapshot is a point-in-time copy of the counters
type HTTPMetricsSnapshot struct {
	RequestsTotal  int64         `json:"requests_total"`
	Responses2xx   int64         `json:"responses_2xx"`
	Responses4xx   int64         `json:"responses_4xx"`
	Responses5xx   int64         `json:"responses_5xx"`
	InFlight       int64         `json:"in_flight"`
	AverageLatency time.Duration `json:"average_latency"`
}

// NewHTTPMetrics creates a new metrics collector
func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{}
}

// Snapshot returns current counter values
func (m *HTTPMetrics) Snapshot() HTTPMetricsSnapshot {
	total := atomic.LoadInt64(&m.requestsTotal)
	snapshot := HTTPMetricsSnapshot{
		RequestsTotal: total,
		Responses2xx:  atomic.LoadInt64(&m.responses2xx),
		Responses4xx:  atomic.LoadInt64(&m.responses4xx),
		Responses5xx:  atomic.LoadInt64(&m.responses5xx),
		InFlight:      atomic.LoadInt64(&m.inFlight),
	}
	if total > 0 {
		snapshot.AverageLatency = time.Duration(atomic.LoadInt64(&m.totalLatencyNs) / total)
	}
	return snapshot
}

// Middleware records one request into the counters
func (m *HTTPMetrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			atomic.AddInt64(&m.inFlight, 1)
			defer atomic.AddInt64(&m.inFlight, -1)

			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			atomic.AddInt64(&m.requestsTotal, 1)
			atomic.AddInt64(&m.totalLatencyNs, time.Since(start).Nanoseconds())

			switch {
			case rw.status >= 500:
				atomic.AddInt64(&m.responses5xx, 1)
			case rw.status >= 400:
				atomic.AddInt64(&m.responses4xx, 1)
			default:
				atomic.AddInt64(&m.responses2xx, 1)
			}
		})
	}
}
