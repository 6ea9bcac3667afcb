package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/resume-extractor/internal/config"
	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
	"github.com/kirillkom/resume-extractor/internal/core/usecase"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/chunking"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/decoder"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/decoder/html"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/decoder/pdf"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/decoder/plaintext"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/export"
	csvexport "github.com/kirillkom/resume-extractor/internal/infrastructure/export/csv"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/export/jsonreport"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/queue/nats"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/resilience"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/source/fsdir"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/storage/scratch"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/workerpool"
	"github.com/kirillkom/resume-extractor/internal/observability/metrics"
)

const poolShutdownTimeout = 30 * time.Second

type App struct {
	Config config.Config
	Logger *slog.Logger

	Metrics  *metrics.BatchMetrics
	Decoders *decoder.Registry
	Queue    *nats.Queue

	Extractor ports.CandidateExtractor
	ParseUC   ports.BatchParser
	IngestUC  ports.DirectoryIngestor

	closeFn func()
}

// New wires the batch pipeline. The message queue is only connected when
// NATS_URL is set.
func New(_ context.Context, cfg config.Config, service string, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	batchMetrics := metrics.NewBatchMetrics(service)

	scratchStore, err := scratch.New(cfg.ScratchPath)
	if err != nil {
		return nil, fmt.Errorf("init scratch storage: %w", err)
	}
	writer, err := localfs.New("")
	if err != nil {
		_ = scratchStore.Close()
		return nil, fmt.Errorf("init export writer: %w", err)
	}

	var (
		queue  *nats.Queue
		events ports.EventPublisher
	)
	if cfg.NATSURL != "" {
		executor := resilience.NewExecutor(
			resilience.PublishPolicy(
				cfg.PublishRetryAttempts,
				time.Duration(cfg.PublishRetryBackoffMS)*time.Millisecond,
				time.Duration(cfg.PublishBreakerOpenSeconds)*time.Second,
			),
			resilience.WithLogger(logger),
			resilience.WithStateObserver(func(operation string, _, to gobreaker.State) {
				batchMetrics.ObserveBreakerState(operation, to.String())
			}),
		)
		queue, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSRequestSubject, cfg.NATSCompletedSubject, nats.Options{
			Executor: executor,
			Logger:   logger,
		})
		if err != nil {
			_ = scratchStore.Close()
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		events = queue
	}

	decoders := decoder.NewRegistry(
		pdf.NewDecoder(logger, batchMetrics),
		html.NewDecoder(),
		plaintext.NewDecoder(),
	)
	exporters := export.NewRegistry().
		Register(domain.FormatXLSX, xlsx.NewExporter()).
		Register(domain.FormatCSV, csvexport.NewExporter()).
		Register(domain.FormatJSON, jsonreport.NewExporter())
	if cfg.ExportFormat == "" {
		cfg.ExportFormat = domain.FormatXLSX
	}
	if _, err := exporters.Exporter(cfg.ExportFormat); err != nil {
		_ = scratchStore.Close()
		if queue != nil {
			queue.Close()
		}
		return nil, fmt.Errorf("export format: %w", err)
	}

	pool := workerpool.New(cfg.BatchWorkers, logger)
	normalizer := usecase.NewNormalizer()
	executor := usecase.NewBatchExecutor(
		usecase.BatchConfig{
			MaxTotalBytes: cfg.BatchMaxBytes,
			ChunkSize:     cfg.BatchChunkSize,
		},
		pool,
		chunking.NewSplitter(),
		decoders,
		scratchStore,
		normalizer,
		batchMetrics,
		logger,
	)
	parseUC := usecase.NewParseBatchUseCase(executor, exporters, writer, events, cfg.ExportFormat, logger)
	source := fsdir.New(decoders.Supported, cfg.SourceReadConcurrency, cfg.BatchMaxBytes)
	ingestUC := usecase.NewIngestDirectoryUseCase(source, parseUC)

	logger.Info("app_ready",
		"workers", pool.Workers(),
		"decoders", decoders.Extensions(),
		"export_format", cfg.ExportFormat,
		"events", queue != nil,
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  batchMetrics,
		Decoders: decoders,
		Queue:    queue,

		Extractor: normalizer,
		ParseUC:   parseUC,
		IngestUC:  ingestUC,

		closeFn: func() {
			ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
			defer cancel()
			if err := pool.Close(ctx); err != nil {
				logger.Warn("worker_pool_close_failed", "error", err)
			}
			if queue != nil {
				queue.Close()
			}
			if err := scratchStore.Close(); err != nil {
				logger.Warn("scratch_close_failed", "error", err)
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
