package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
)

// TextDecoder converts a binary document into plain text.
type TextDecoder interface {
	Decode(ctx context.Context, filename string, r io.ReaderAt, size int64) (string, error)
}

type ReadAtCloser interface {
	io.ReaderAt
	io.Closer
}

// ScratchStorage holds the temporary per-document copy used while decoding.
type ScratchStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Open(ctx context.Context, key string) (ReadAtCloser, error)
	Remove(ctx context.Context, key string) error
}

// TaskRunner executes tasks on a bounded set of long-lived workers.
type TaskRunner interface {
	Submit(ctx context.Context, task func()) error
}

// ProgressObserver is notified after every completed chunk.
type ProgressObserver interface {
	OnProgress(completed, total int)
}

// ProgressFunc adapts a plain function to ProgressObserver.
type ProgressFunc func(completed, total int)

func (f ProgressFunc) OnProgress(completed, total int) {
	if f != nil {
		f(completed, total)
	}
}

type BatchMetrics interface {
	IncInFlight()
	DecInFlight()
	ObserveDocument(status string)
	ObserveChunk()
	ObserveBatch(duration time.Duration, processed, failed int)
	ObserveRejected()
}

// Exporter encodes rows into a tabular artifact.
type Exporter interface {
	Export(rows []domain.CandidateRecord) ([]byte, error)
	ExportSubset(rows []domain.CandidateRecord, fields []domain.Field) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExporterProvider resolves an exporter by format name.
type ExporterProvider interface {
	Exporter(format string) (Exporter, error)
}

// ReportEncoder encodes the full batch report (json format).
type ReportEncoder interface {
	EncodeReport(report *domain.BatchReport, fields []domain.Field) ([]byte, error)
}

// DocumentSource loads resumes from a location such as a directory.
type DocumentSource interface {
	Load(ctx context.Context, location string) ([]domain.RawDocument, error)
}

// EventPublisher announces finished batches.
type EventPublisher interface {
	PublishBatchCompleted(ctx context.Context, event domain.BatchCompleted) error
}

// Chunker partitions n documents into contiguous chunks of at most size.
type Chunker interface {
	Partition(n, size int) []domain.Span
}

// ArtifactWriter persists a finished export.
type ArtifactWriter interface {
	Write(ctx context.Context, path string, data []byte) error
}
