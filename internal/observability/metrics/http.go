package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resume"

// unmatchedRoute labels requests no mux pattern claimed, keeping cardinality bounded.
const unmatchedRoute = "unmatched"

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	inFlight      prometheus.Gauge
	uploadBytes   prometheus.Histogram
	responseBytes *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	labels := prometheus.Labels{"service": service}
	m := &HTTPServerMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "HTTP requests by route and status code.",
			ConstLabels: labels,
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request latency; batch uploads run for the whole extraction.",
			ConstLabels: labels,
			Buckets:     []float64{0.01, 0.05, 0.25, 1, 5, 15, 60, 300},
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "HTTP requests currently being served.",
			ConstLabels: labels,
		}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "upload_bytes",
			Help:        "Aggregate size of the resumes in one upload.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(64*1024, 4, 8),
		}),
		responseBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "response_bytes",
			Help:        "Size of response bodies, mostly exports.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(256, 4, 8),
		}, []string{"route"}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.inFlight, m.uploadBytes, m.responseBytes)
	return m
}

// Handler serves this registry merged with any extra gatherers.
func (m *HTTPServerMetrics) Handler(extra ...prometheus.Gatherer) http.Handler {
	gatherers := append(prometheus.Gatherers{m.registry}, extra...)
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) RecordUpload(bytes int64) {
	if bytes < 0 {
		return
	}
	m.uploadBytes.Observe(float64(bytes))
}

// Middleware must wrap the ServeMux: the route label is the pattern the mux
// matched, read back from the request once the mux has served it.
func (m *HTTPServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &countingWriter{ResponseWriter: w, status: http.StatusOK}

		m.inFlight.Inc()
		defer m.inFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routeOf(r)
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		m.responseBytes.WithLabelValues(route).Observe(float64(rec.written))
	})
}

// routeOf strips the method from patterns such as "POST /v1/batches".
func routeOf(r *http.Request) string {
	if r.Pattern == "" {
		return unmatchedRoute
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}

type countingWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *countingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *countingWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

func (w *countingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
