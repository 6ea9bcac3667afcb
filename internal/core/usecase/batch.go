package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
)

// BatchConfig is fixed for the lifetime of an executor.
type BatchConfig struct {
	// MaxTotalBytes caps the summed effective size of one batch; zero disables the check.
	MaxTotalBytes int64
	ChunkSize     int
}

// BatchExecutor fans documents out to a shared worker pool one chunk at a time.
type BatchExecutor struct {
	cfg        BatchConfig
	pool       ports.TaskRunner
	chunker    ports.Chunker
	decoder    ports.TextDecoder
	scratch    ports.ScratchStorage
	normalizer ports.CandidateExtractor
	metrics    ports.BatchMetrics
	logger     *slog.Logger
}

func NewBatchExecutor(
	cfg BatchConfig,
	pool ports.TaskRunner,
	chunker ports.Chunker,
	decoder ports.TextDecoder,
	scratch ports.ScratchStorage,
	normalizer ports.CandidateExtractor,
	metrics ports.BatchMetrics,
	logger *slog.Logger,
) *BatchExecutor {
	if metrics == nil {
		metrics = noopBatchMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchExecutor{
		cfg:        cfg,
		pool:       pool,
		chunker:    chunker,
		decoder:    decoder,
		scratch:    scratch,
		normalizer: normalizer,
		metrics:    metrics,
		logger:     logger,
	}
}

// Run processes docs under a freshly generated batch id.
func (uc *BatchExecutor) Run(ctx context.Context, docs []domain.RawDocument, observer ports.ProgressObserver) (*domain.BatchReport, error) {
	return uc.RunBatch(ctx, uuid.NewString(), docs, observer)
}

// RunBatch rejects the whole batch when it exceeds the size ceiling, otherwise
// processes every chunk in order and reports progress after each one. Chunks
// not yet started when ctx is cancelled are recorded as canceled failures; a
// started chunk always runs to completion.
func (uc *BatchExecutor) RunBatch(
	ctx context.Context,
	batchID string,
	docs []domain.RawDocument,
	observer ports.ProgressObserver,
) (*domain.BatchReport, error) {
	if observer == nil {
		observer = ports.ProgressFunc(nil)
	}
	logger := uc.logger.With("batch_id", batchID)
	startedAt := time.Now().UTC()

	totalBytes := domain.TotalSize(docs)
	if uc.cfg.MaxTotalBytes > 0 && totalBytes > uc.cfg.MaxTotalBytes {
		uc.metrics.ObserveRejected()
		logger.Warn("batch_rejected",
			"documents", len(docs),
			"total_bytes", totalBytes,
			"max_bytes", uc.cfg.MaxTotalBytes,
		)
		return nil, domain.WrapError(
			domain.ErrSizeLimitExceeded,
			"run batch",
			fmt.Errorf("total size %d bytes exceeds limit of %d bytes", totalBytes, uc.cfg.MaxTotalBytes),
		)
	}

	logger.Info("batch_started", "documents", len(docs), "total_bytes", totalBytes, "chunk_size", uc.cfg.ChunkSize)

	outcomes := make([]documentOutcome, len(docs))
	for _, span := range uc.chunker.Partition(len(docs), uc.cfg.ChunkSize) {
		if err := ctx.Err(); err != nil {
			uc.cancelChunk(logger, docs, span, outcomes, err)
			continue
		}
		uc.runChunk(context.WithoutCancel(ctx), logger, docs, span, outcomes)
		uc.metrics.ObserveChunk()
		observer.OnProgress(span.End, len(docs))
	}

	records, failures := aggregate(outcomes)
	report := &domain.BatchReport{
		BatchID:   batchID,
		Total:     len(docs),
		Records:   records,
		Failures:  failures,
		Stats:     ComputeStats(records),
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
	}
	uc.metrics.ObserveBatch(report.Duration, report.Processed(), report.Failed())
	logger.Info("batch_finished",
		"documents", report.Total,
		"processed", report.Processed(),
		"failed", report.Failed(),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

func (uc *BatchExecutor) runChunk(
	ctx context.Context,
	logger *slog.Logger,
	docs []domain.RawDocument,
	span domain.Span,
	outcomes []documentOutcome,
) {
	var wg sync.WaitGroup
	for i := span.Start; i < span.End; i++ {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			outcomes[i] = uc.processDocument(ctx, logger, i, docs[i])
		}
		if err := uc.pool.Submit(ctx, task); err != nil {
			wg.Done()
			outcomes[i] = uc.failDocument(logger, i, docs[i], domain.WrapError(domain.ErrCanceled, "submit document", err))
		}
	}
	wg.Wait()
}

func (uc *BatchExecutor) cancelChunk(
	logger *slog.Logger,
	docs []domain.RawDocument,
	span domain.Span,
	outcomes []documentOutcome,
	cause error,
) {
	for i := span.Start; i < span.End; i++ {
		outcomes[i] = uc.failDocument(logger, i, docs[i], domain.WrapError(domain.ErrCanceled, "dispatch document", cause))
	}
}

type noopBatchMetrics struct{}

func (noopBatchMetrics) IncInFlight()                         {}
func (noopBatchMetrics) DecInFlight()                         {}
func (noopBatchMetrics) ObserveDocument(string)               {}
func (noopBatchMetrics) ObserveChunk()                        {}
func (noopBatchMetrics) ObserveBatch(time.Duration, int, int) {}
func (noopBatchMetrics) ObserveRejected()                     {}
