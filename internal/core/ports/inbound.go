package ports

import (
	"context"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
)

// BatchParser is the inbound contract every driver (HTTP, CLI, worker, MCP)
// uses to turn a set of resumes into an export.
type BatchParser interface {
	Parse(
		ctx context.Context,
		docs []domain.RawDocument,
		opts domain.ExportOptions,
		observer ProgressObserver,
	) (*domain.ParseResult, error)
}

// CandidateExtractor turns already decoded text into one record.
type CandidateExtractor interface {
	Normalize(text, filename string) (domain.CandidateRecord, bool)
}

// DirectoryIngestor parses every supported file of a directory.
type DirectoryIngestor interface {
	Ingest(ctx context.Context, req domain.BatchRequest, observer ProgressObserver) (*domain.ParseResult, error)
}
