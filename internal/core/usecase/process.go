package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
)

const (
	statusProcessed = "processed"
	statusFailed    = "failed"
	statusCanceled  = "canceled"
)

// processDocument runs one document end to end and always fills a result slot.
// A panic anywhere in the pipeline is converted into an unreadable-document
// failure so the rest of the chunk is unaffected.
func (uc *BatchExecutor) processDocument(
	ctx context.Context,
	logger *slog.Logger,
	index int,
	doc domain.RawDocument,
) (out documentOutcome) {
	uc.metrics.IncInFlight()
	defer uc.metrics.DecInFlight()
	defer func() {
		if r := recover(); r != nil {
			out = uc.failDocument(logger, index, doc, domain.WrapError(
				domain.ErrUnreadableDocument,
				"process document",
				fmt.Errorf("panic: %v", r),
			))
		}
	}()

	if doc.Err != nil {
		return uc.failDocument(logger, index, doc, domain.WrapError(domain.ErrUnreadableDocument, "read document", doc.Err))
	}

	record, err := uc.processPipeline(ctx, index, doc)
	if err != nil {
		return uc.failDocument(logger, index, doc, err)
	}
	uc.metrics.ObserveDocument(statusProcessed)
	return documentOutcome{record: record}
}

func (uc *BatchExecutor) processPipeline(
	ctx context.Context,
	index int,
	doc domain.RawDocument,
) (domain.CandidateRecord, error) {
	key := scratchKey(index, doc.Filename)
	defer uc.releaseScratch(ctx, key)

	text, err := uc.extractText(ctx, key, doc)
	if err != nil {
		return domain.CandidateRecord{}, err
	}

	record, ok := uc.normalizer.Normalize(text, doc.Filename)
	if !ok {
		return domain.CandidateRecord{}, domain.WrapError(
			domain.ErrEmptyExtraction,
			"normalize document",
			errors.New("no text extracted"),
		)
	}
	return record, nil
}

func (uc *BatchExecutor) extractText(ctx context.Context, key string, doc domain.RawDocument) (string, error) {
	size, err := uc.scratch.Save(ctx, key, bytes.NewReader(doc.Content))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnreadableDocument, "spool document", err)
	}

	file, err := uc.scratch.Open(ctx, key)
	if err != nil {
		return "", domain.WrapError(domain.ErrUnreadableDocument, "open spooled document", err)
	}
	defer file.Close()

	text, err := uc.decoder.Decode(ctx, doc.Filename, file, size)
	if err != nil {
		if domain.IsKind(err, domain.ErrUnreadableDocument) {
			return "", fmt.Errorf("decode document: %w", err)
		}
		return "", domain.WrapError(domain.ErrUnreadableDocument, "decode document", err)
	}
	return text, nil
}

// scratchKey is unique per task and never built from caller supplied ids.
func scratchKey(index int, filename string) string {
	return fmt.Sprintf("%s_%d_%s", uuid.NewString(), index, sanitizeFilename(filename))
}

// releaseScratch runs on every exit path, including after cancellation.
func (uc *BatchExecutor) releaseScratch(ctx context.Context, key string) {
	if err := uc.scratch.Remove(context.WithoutCancel(ctx), key); err != nil {
		uc.logger.Warn("scratch_remove_failed", "key", key, "error", err)
	}
}

func (uc *BatchExecutor) failDocument(logger *slog.Logger, index int, doc domain.RawDocument, err error) documentOutcome {
	kind := domain.FailureKind(err)
	status := statusFailed
	if kind == "Canceled" {
		status = statusCanceled
	}
	uc.metrics.ObserveDocument(status)
	logger.Warn("document_failed",
		"index", index,
		"filename", doc.Filename,
		"kind", kind,
		"error", err,
	)
	return documentOutcome{failure: &domain.DocumentFailure{
		Index:    index,
		Filename: doc.Filename,
		Kind:     kind,
		Message:  err.Error(),
	}}
}
