package usecase

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/chunking"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/storage/scratch"
)

const resumeText = "Jane Roe\njane.roe@example.com\nPune\n5 years of experience"

type executorFixture struct {
	pool    *goPool
	scratch *memScratch
	metrics *metricsFake
	exec    *BatchExecutor
}

func newExecutorFixture(cfg BatchConfig) *executorFixture {
	f := &executorFixture{
		pool:    &goPool{},
		scratch: newMemScratch(),
		metrics: newMetricsFake(),
	}
	f.exec = NewBatchExecutor(cfg, f.pool, chunking.NewSplitter(), echoDecoder{}, f.scratch, NewNormalizer(), f.metrics, nil)
	return f
}

func docs(contents ...string) []domain.RawDocument {
	out := make([]domain.RawDocument, 0, len(contents))
	for i, c := range contents {
		out = append(out, domain.RawDocument{
			Filename: string(rune('a'+i)) + ".pdf",
			Content:  []byte(c),
		})
	}
	return out
}

func TestBatchExecutorIsolatesFailuresAndKeepsOrder(t *testing.T) {
	f := newExecutorFixture(BatchConfig{MaxTotalBytes: 1 << 20, ChunkSize: 10})

	report, err := f.exec.Run(context.Background(), docs(resumeText, "FAIL", resumeText), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Processed() != 2 || report.Failed() != 1 {
		t.Fatalf("expected 2 processed and 1 failed, got %d/%d", report.Processed(), report.Failed())
	}
	if report.Records[0].SourceFilename != "a.pdf" || report.Records[1].SourceFilename != "c.pdf" {
		t.Fatalf("unexpected record order: %s, %s", report.Records[0].SourceFilename, report.Records[1].SourceFilename)
	}
	failure := report.Failures[0]
	if failure.Index != 1 || failure.Filename != "b.pdf" || failure.Kind != "UnreadableDocument" {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if report.Total != 3 || report.BatchID == "" {
		t.Fatalf("unexpected report header: total=%d batch_id=%q", report.Total, report.BatchID)
	}
	if f.metrics.documents[statusProcessed] != 2 || f.metrics.documents[statusFailed] != 1 {
		t.Fatalf("unexpected document metrics: %v", f.metrics.documents)
	}
}

func TestBatchExecutorFillsEveryField(t *testing.T) {
	f := newExecutorFixture(BatchConfig{ChunkSize: 2})

	report, err := f.exec.Run(context.Background(), docs("just some words here"), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	record := report.Records[0]
	for _, field := range domain.AllFields {
		if record.Value(field) == "" {
			t.Fatalf("field %s is empty", field)
		}
	}
	if record.Email != domain.NotSpecified {
		t.Fatalf("expected sentinel email, got %q", record.Email)
	}
	if record.SourceFilename != "a.pdf" {
		t.Fatalf("expected exact filename, got %q", record.SourceFilename)
	}
}

func TestBatchExecutorEmptyExtraction(t *testing.T) {
	f := newExecutorFixture(BatchConfig{ChunkSize: 2})

	report, err := f.exec.Run(context.Background(), docs(" \n\t "), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Processed() != 0 || report.Failures[0].Kind != "EmptyExtraction" {
		t.Fatalf("expected EmptyExtraction failure, got %+v", report.Failures)
	}
}

func TestBatchExecutorRejectsOversizedBatch(t *testing.T) {
	input := docs("12345", "123456")
	f := newExecutorFixture(BatchConfig{MaxTotalBytes: domain.TotalSize(input) - 1, ChunkSize: 2})

	report, err := f.exec.Run(context.Background(), input, nil)
	if !domain.IsKind(err, domain.ErrSizeLimitExceeded) {
		t.Fatalf("expected size limit error, got %v", err)
	}
	if report != nil {
		t.Fatalf("expected no report, got %+v", report)
	}
	if f.scratch.saved != 0 {
		t.Fatalf("expected no work, got %d spooled documents", f.scratch.saved)
	}
	if f.metrics.rejected != 1 {
		t.Fatalf("expected rejected metric, got %d", f.metrics.rejected)
	}
}

func TestBatchExecutorAcceptsBatchAtCeiling(t *testing.T) {
	input := docs(resumeText)
	f := newExecutorFixture(BatchConfig{MaxTotalBytes: domain.TotalSize(input), ChunkSize: 2})

	if _, err := f.exec.Run(context.Background(), input, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestBatchExecutorReportsProgressPerChunk(t *testing.T) {
	f := newExecutorFixture(BatchConfig{ChunkSize: 2})
	progress := &progressRecorder{}

	report, err := f.exec.Run(context.Background(), docs(resumeText, resumeText, resumeText, resumeText, resumeText), progress)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := [][2]int{{2, 5}, {4, 5}, {5, 5}}
	if len(progress.calls) != len(want) {
		t.Fatalf("expected %d progress calls, got %v", len(want), progress.calls)
	}
	for i := range want {
		if progress.calls[i] != want[i] {
			t.Fatalf("progress call %d = %v, want %v", i, progress.calls[i], want[i])
		}
	}
	if report.Processed() != 5 || f.metrics.chunks != 3 {
		t.Fatalf("expected 5 records over 3 chunks, got %d/%d", report.Processed(), f.metrics.chunks)
	}
}

func TestBatchExecutorReleasesScratchOnEveryPath(t *testing.T) {
	f := newExecutorFixture(BatchConfig{ChunkSize: 2})

	report, err := f.exec.Run(context.Background(), docs(resumeText, "FAIL", "PANIC", ""), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Processed() != 1 || report.Failed() != 3 {
		t.Fatalf("expected 1 processed and 3 failed, got %d/%d", report.Processed(), report.Failed())
	}
	if f.scratch.remaining() != 0 {
		t.Fatalf("expected scratch to be empty, %d artifacts left", f.scratch.remaining())
	}
	if f.scratch.removed != 4 {
		t.Fatalf("expected 4 removals, got %d", f.scratch.removed)
	}
	if f.metrics.inFlight != 0 {
		t.Fatalf("expected in-flight gauge back at 0, got %d", f.metrics.inFlight)
	}
}

func TestBatchExecutorRecoversFromDecoderPanic(t *testing.T) {
	f := newExecutorFixture(BatchConfig{ChunkSize: 3})

	report, err := f.exec.Run(context.Background(), docs(resumeText, "PANIC", resumeText), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Processed() != 2 {
		t.Fatalf("expected 2 records, got %d", report.Processed())
	}
	if report.Failures[0].Kind != "UnreadableDocument" || report.Failures[0].Index != 1 {
		t.Fatalf("unexpected failure: %+v", report.Failures[0])
	}
}

func TestBatchExecutorCancelsUndispatchedChunks(t *testing.T) {
	f := newExecutorFixture(BatchConfig{ChunkSize: 2})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observer := ports.ProgressFunc(func(completed, total int) {
		cancel()
	})
	report, err := f.exec.Run(ctx, docs(resumeText, resumeText, resumeText, resumeText, resumeText), observer)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Processed() != 2 || report.Failed() != 3 {
		t.Fatalf("expected 2 processed and 3 canceled, got %d/%d", report.Processed(), report.Failed())
	}
	for _, failure := range report.Failures {
		if failure.Kind != "Canceled" {
			t.Fatalf("expected Canceled failure, got %+v", failure)
		}
	}
	if report.Failures[0].Index != 2 {
		t.Fatalf("expected first canceled index 2, got %d", report.Failures[0].Index)
	}
}

func TestBatchExecutorSubmitFailureIsRecorded(t *testing.T) {
	f := newExecutorFixture(BatchConfig{ChunkSize: 2})
	f.pool.closed = true

	report, err := f.exec.Run(context.Background(), docs(resumeText), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Failed() != 1 || report.Failures[0].Kind != "Canceled" {
		t.Fatalf("expected canceled failure, got %+v", report.Failures)
	}
}

func TestBatchExecutorEmptyInput(t *testing.T) {
	f := newExecutorFixture(BatchConfig{ChunkSize: 2})
	progress := &progressRecorder{}

	report, err := f.exec.Run(context.Background(), nil, progress)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Total != 0 || len(report.Records) != 0 || len(progress.calls) != 0 {
		t.Fatalf("unexpected report for empty input: %+v", report)
	}
}

func TestRunBatchSpoolsSafelyForPathLikeBatchID(t *testing.T) {
	dir := t.TempDir()
	store, err := scratch.New(dir)
	if err != nil {
		t.Fatalf("scratch.New() error = %v", err)
	}
	exec := NewBatchExecutor(BatchConfig{ChunkSize: 10}, &goPool{}, chunking.NewSplitter(), echoDecoder{}, store, NewNormalizer(), newMetricsFake(), nil)

	batch := docs(resumeText, resumeText)
	batch[1].Filename = strings.Repeat("long-name-", 40) + ".pdf"
	report, err := exec.RunBatch(context.Background(), "jobs/2026-10-18", batch, nil)
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if report.Processed() != 2 || report.Failed() != 0 {
		t.Fatalf("expected 2 processed and 0 failed, got %d/%d (%+v)", report.Processed(), report.Failed(), report.Failures)
	}
	if report.BatchID != "jobs/2026-10-18" {
		t.Fatalf("BatchID = %q, want caller id", report.BatchID)
	}
	left, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read scratch dir: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("scratch dir holds %d leftover files", len(left))
	}
}

func TestScratchKeysAreUniquePerTask(t *testing.T) {
	a, b := scratchKey(0, "a.pdf"), scratchKey(0, "a.pdf")
	if a == b {
		t.Fatalf("scratchKey() returned %q twice", a)
	}
	if !strings.HasSuffix(a, "_0_a.pdf") {
		t.Fatalf("scratchKey() = %q, want index and file name suffix", a)
	}
}

func TestRunBatchRecordsUnreadableSourceDocument(t *testing.T) {
	f := newExecutorFixture(BatchConfig{ChunkSize: 10})

	batch := docs(resumeText, "", resumeText)
	batch[1].Err = errors.New("permission denied")
	report, err := f.exec.RunBatch(context.Background(), "batch-unreadable", batch, nil)
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if report.Processed() != 2 || report.Failed() != 1 {
		t.Fatalf("expected 2 processed and 1 failed, got %d/%d", report.Processed(), report.Failed())
	}
	failure := report.Failures[0]
	if failure.Index != 1 || failure.Filename != "b.pdf" || failure.Kind != "UnreadableDocument" {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if f.scratch.remaining() != 0 {
		t.Fatalf("scratch holds %d leftover entries", f.scratch.remaining())
	}
}
