package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
)

// batchRunner is satisfied by *BatchExecutor.
type batchRunner interface {
	RunBatch(ctx context.Context, batchID string, docs []domain.RawDocument, observer ports.ProgressObserver) (*domain.BatchReport, error)
}

// ParseBatchUseCase runs a batch, encodes the export, optionally writes it to
// opts.Output and announces completion.
type ParseBatchUseCase struct {
	executor      batchRunner
	exporters     ports.ExporterProvider
	writer        ports.ArtifactWriter
	events        ports.EventPublisher
	defaultFormat string
	logger        *slog.Logger
}

// NewParseBatchUseCase accepts a nil events publisher when no bus is configured.
func NewParseBatchUseCase(
	executor batchRunner,
	exporters ports.ExporterProvider,
	writer ports.ArtifactWriter,
	events ports.EventPublisher,
	defaultFormat string,
	logger *slog.Logger,
) *ParseBatchUseCase {
	if defaultFormat == "" {
		defaultFormat = domain.FormatXLSX
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseBatchUseCase{
		executor:      executor,
		exporters:     exporters,
		writer:        writer,
		events:        events,
		defaultFormat: defaultFormat,
		logger:        logger,
	}
}

func (uc *ParseBatchUseCase) Parse(
	ctx context.Context,
	docs []domain.RawDocument,
	opts domain.ExportOptions,
	observer ports.ProgressObserver,
) (*domain.ParseResult, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = uc.defaultFormat
	}
	exporter, err := uc.exporters.Exporter(format)
	if err != nil {
		return nil, fmt.Errorf("resolve exporter: %w", err)
	}

	batchID := opts.BatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}
	report, err := uc.executor.RunBatch(ctx, batchID, docs, observer)
	if err != nil {
		return nil, fmt.Errorf("run batch: %w", err)
	}

	content, err := encodeExport(exporter, report, opts.Fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s export: %w", format, err)
	}

	if opts.Output != "" {
		if uc.writer == nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "write export", errors.New("no artifact writer configured"))
		}
		if err := uc.writer.Write(ctx, opts.Output, content); err != nil {
			return nil, fmt.Errorf("write export to %s: %w", opts.Output, err)
		}
	}

	uc.publishCompleted(ctx, report, format, opts.Output)

	return &domain.ParseResult{
		Report:      report,
		Format:      format,
		Content:     content,
		ContentType: exporter.ContentType(),
		Filename:    domain.ExportBaseName + exporter.Extension(),
	}, nil
}

func encodeExport(exporter ports.Exporter, report *domain.BatchReport, fields []domain.Field) ([]byte, error) {
	if encoder, ok := exporter.(ports.ReportEncoder); ok {
		return encoder.EncodeReport(report, fields)
	}
	if len(fields) > 0 {
		return exporter.ExportSubset(report.Records, fields)
	}
	return exporter.Export(report.Records)
}

// publishCompleted is best effort: the export already exists, so a bus outage
// is logged rather than failing the batch.
func (uc *ParseBatchUseCase) publishCompleted(ctx context.Context, report *domain.BatchReport, format, output string) {
	if uc.events == nil {
		return
	}
	event := domain.BatchCompleted{
		BatchID:    report.BatchID,
		Total:      report.Total,
		Processed:  report.Processed(),
		Failed:     report.Failed(),
		Failures:   report.Failures,
		Stats:      report.Stats,
		Format:     format,
		Output:     output,
		FinishedAt: time.Now().UTC(),
	}
	if err := uc.events.PublishBatchCompleted(context.WithoutCancel(ctx), event); err != nil {
		uc.logger.Error("publish_batch_completed_failed", "batch_id", report.BatchID, "error", err)
	}
}
