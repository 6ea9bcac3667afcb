package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/kirillkom/resume-extractor/internal/config"
	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
	"github.com/kirillkom/resume-extractor/internal/observability/metrics"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// multipartOverhead is the slack above BatchMaxBytes allowed for part headers.
	multipartOverhead = 1 << 20
	multipartMemory   = 32 << 20
)

type Router struct {
	cfg       config.Config
	parser    ports.BatchParser
	logger    *slog.Logger
	metrics   *metrics.HTTPServerMetrics
	gatherers []prometheus.Gatherer
	validator *openapiValidator
}

func NewRouter(cfg config.Config, parser ports.BatchParser, logger *slog.Logger) (*Router, error) {
	if logger == nil {
		logger = slog.Default()
	}
	validator, err := newOpenAPIValidator()
	if err != nil {
		return nil, err
	}
	return &Router{
		cfg:       cfg,
		parser:    parser,
		logger:    logger,
		validator: validator,
	}, nil
}

// WithMetrics enables request metrics and /metrics, merging extra gatherers into the exposition.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics, extra ...prometheus.Gatherer) *Router {
	rt.metrics = m
	rt.gatherers = extra
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.yaml", rt.openapiSpec)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler(rt.gatherers...))
	}

	wait := time.Duration(rt.cfg.APIBackpressureWaitMS) * time.Millisecond
	batches := http.Handler(http.HandlerFunc(rt.parseBatch))
	batches = backpressureMiddleware(batches, rt.cfg.APIMaxInFlight, wait)
	batches = rateLimitMiddleware(batches, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	mux.Handle("POST /v1/batches", batches)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) parseBatch(w http.ResponseWriter, r *http.Request) {
	if err := rt.validator.validateRequest(r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var format string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var fieldNames []string
	if err := runtime.BindQueryParameter("form", true, false, "fields", r.URL.Query(), &fieldNames); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fields, err := domain.ParseFields(fieldNames)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	docs, total, err := rt.readUploads(w, r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordUpload(total)
	}

	result, err := rt.parser.Parse(r.Context(), docs, domain.ExportOptions{
		Format: format,
		Fields: fields,
	}, nil)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	report := result.Report
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("X-Batch-Id", report.BatchID)
	w.Header().Set("X-Documents-Total", strconv.Itoa(report.Total))
	w.Header().Set("X-Documents-Processed", strconv.Itoa(report.Processed()))
	w.Header().Set("X-Documents-Failed", strconv.Itoa(report.Failed()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Content)
}

// readUploads loads every "files" part into memory. The body is capped just
// above the batch ceiling so oversized uploads fail before they are buffered.
func (rt *Router) readUploads(w http.ResponseWriter, r *http.Request) ([]domain.RawDocument, int64, error) {
	if rt.cfg.BatchMaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.BatchMaxBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, 0, domain.WrapError(domain.ErrSizeLimitExceeded, "read upload", err)
		}
		return nil, 0, domain.WrapError(domain.ErrInvalidInput, "read upload", err)
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		return nil, 0, domain.WrapError(domain.ErrInvalidInput, "read upload", errors.New("multipart field 'files' is required"))
	}

	docs := make([]domain.RawDocument, 0, len(headers))
	var total int64
	for _, header := range headers {
		content, err := readPart(header)
		if err != nil {
			return nil, 0, domain.WrapError(domain.ErrInvalidInput, "read upload", err)
		}
		docs = append(docs, domain.RawDocument{
			Filename: header.Filename,
			Content:  content,
			Size:     header.Size,
		})
		total += header.Size
	}
	return docs, total, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", header.Filename, err)
	}
	defer file.Close()
	return io.ReadAll(file)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
