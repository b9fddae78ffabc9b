// Package metrics instruments outgoing API traffic with prometheus vectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_api_requests_total",
			Help: "Total API requests issued by the client",
		},
		[]string{"method", "status"},
	)

	apiErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_api_errors_total",
			Help: "API requests that failed on the wire",
		},
		[]string{"method"},
	)

	apiDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulse_api_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method"},
	)
)

// RoundTripper wraps a transport and records per-request counters and
// latency. It is installed through client.Config.Transport rather than any
// global registration.
type RoundTripper struct {
	Next http.RoundTripper
}

func NewRoundTripper(next http.RoundTripper) *RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return &RoundTripper{Next: next}
}

func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := rt.Next.RoundTrip(req)

	apiDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

	if err != nil {
		apiErrors.WithLabelValues(req.Method).Inc()

		return nil, err
	}

	apiRequests.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()

	return resp, nil
}
