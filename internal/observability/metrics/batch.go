package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BatchMetrics implements ports.BatchMetrics and the decoder page observer.
type BatchMetrics struct {
	registry *prometheus.Registry
	service  string

	documentTotal   *prometheus.CounterVec
	documentsActive prometheus.Gauge
	chunkTotal      *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	batchDocuments  *prometheus.HistogramVec
	rejectedTotal   *prometheus.CounterVec
	pdfPages        *prometheus.HistogramVec
	breakerState    *prometheus.GaugeVec
}

func NewBatchMetrics(service string) *BatchMetrics {
	registry := prometheus.NewRegistry()

	documentTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "documents_total",
			Help:      "Total documents handled by status.",
		},
		[]string{"service", "status"},
	)
	documentsActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "documents_in_flight",
			Help:      "Number of documents currently being extracted.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chunkTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "chunks_total",
			Help:      "Total completed chunks.",
		},
		[]string{"service"},
	)
	batchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Batch processing duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	batchDocuments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "documents",
			Help:      "Distribution of documents per batch by outcome.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "outcome"},
	)
	rejectedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "rejected_total",
			Help:      "Total batches rejected before processing.",
		},
		[]string{"service"},
	)
	pdfPages := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "decoder",
			Name:      "pdf_pages",
			Help:      "Distribution of page counts of decoded PDFs.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 50},
		},
		[]string{"service"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		documentTotal,
		documentsActive,
		chunkTotal,
		batchDuration,
		batchDocuments,
		rejectedTotal,
		pdfPages,
		breakerState,
	)

	return &BatchMetrics{
		registry:        registry,
		service:         service,
		documentTotal:   documentTotal,
		documentsActive: documentsActive,
		chunkTotal:      chunkTotal,
		batchDuration:   batchDuration,
		batchDocuments:  batchDocuments,
		rejectedTotal:   rejectedTotal,
		pdfPages:        pdfPages,
		breakerState:    breakerState,
	}
}

func (m *BatchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *BatchMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *BatchMetrics) IncInFlight() {
	m.documentsActive.Inc()
}

func (m *BatchMetrics) DecInFlight() {
	m.documentsActive.Dec()
}

func (m *BatchMetrics) ObserveDocument(status string) {
	if status == "" {
		status = "unknown"
	}
	m.documentTotal.WithLabelValues(m.service, status).Inc()
}

func (m *BatchMetrics) ObserveChunk() {
	m.chunkTotal.WithLabelValues(m.service).Inc()
}

func (m *BatchMetrics) ObserveBatch(duration time.Duration, processed, failed int) {
	m.batchDuration.WithLabelValues(m.service).Observe(duration.Seconds())
	m.batchDocuments.WithLabelValues(m.service, "processed").Observe(float64(processed))
	m.batchDocuments.WithLabelValues(m.service, "failed").Observe(float64(failed))
}

func (m *BatchMetrics) ObserveRejected() {
	m.rejectedTotal.WithLabelValues(m.service).Inc()
}

func (m *BatchMetrics) ObservePages(pages int) {
	if pages <= 0 {
		return
	}
	m.pdfPages.WithLabelValues(m.service).Observe(float64(pages))
}

// ObserveBreakerState records a breaker transition; state is gobreaker's String() form.
func (m *BatchMetrics) ObserveBreakerState(operation, state string) {
	value := 0.0
	switch state {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}
