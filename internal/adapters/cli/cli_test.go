package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/resume-extractor/internal/config"
	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
	"github.com/kirillkom/resume-extractor/internal/core/usecase"
)

type ingestorFake struct {
	req domain.BatchRequest
	err error
}

func (f *ingestorFake) Ingest(_ context.Context, req domain.BatchRequest, observer ports.ProgressObserver) (*domain.ParseResult, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	observer.OnProgress(2, 3)
	observer.OnProgress(3, 3)
	return &domain.ParseResult{
		Report: &domain.BatchReport{
			BatchID:  "batch-1",
			Total:    3,
			Records:  []domain.CandidateRecord{{Name: "Jane Doe"}, {Name: "John Roe"}},
			Failures: []domain.DocumentFailure{{Index: 2, Filename: "scan.pdf", Kind: "UnreadableDocument", Message: "no text layer"}},
			Stats:    domain.ProcessingStats{Records: 2, Name: 2, Email: 1},
		},
		Format: req.Format,
	}, nil
}

func execute(t *testing.T, ingestor *ingestorFake, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("EXPORT_FORMAT", "")

	build := func(config.Config, *slog.Logger) (Services, func(), error) {
		return Services{
			Extractor: usecase.NewNormalizer(),
			Ingestor:  ingestor,
		}, nil, nil
	}
	cmd := NewRootCommand("1.2.3", build)
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, &ingestorFake{}, "version")
	require.NoError(t, err)
	assert.Equal(t, "resumectl version 1.2.3\n", out)
}

func TestBatchCommandPrintsProgressAndReport(t *testing.T) {
	ingestor := &ingestorFake{}
	out, err := execute(t, ingestor, "batch", "--dir", "/resumes", "--format", "CSV", "--fields", "name,email")
	require.NoError(t, err)

	assert.Equal(t, domain.BatchRequest{
		SourceDir:  "/resumes",
		OutputPath: "resume_data.csv",
		Format:     "csv",
		Fields:     []string{"name", "email"},
	}, ingestor.req)

	assert.Contains(t, out, "progress: 2/3 documents\n")
	assert.Contains(t, out, "progress: 3/3 documents\n")
	assert.Contains(t, out, "batch batch-1: 2 processed, 1 failed, 3 total\n")
	assert.Contains(t, out, "failed scan.pdf: UnreadableDocument: no text layer")
	assert.Contains(t, out, "fields found in 2 records:")
	assert.Contains(t, out, "export written to ")
}

func TestBatchCommandDefaultsToConfiguredFormat(t *testing.T) {
	ingestor := &ingestorFake{}
	_, err := execute(t, ingestor, "batch", "--dir", "/resumes", "--out", "/tmp/x.xlsx")
	require.NoError(t, err)
	assert.Equal(t, domain.FormatXLSX, ingestor.req.Format)
	assert.Equal(t, "/tmp/x.xlsx", ingestor.req.OutputPath)
}

func TestBatchCommandErrors(t *testing.T) {
	_, err := execute(t, &ingestorFake{}, "batch")
	require.Error(t, err, "--dir is required")

	_, err = execute(t, &ingestorFake{err: errors.New("boom")}, "batch", "--dir", "/resumes")
	require.EqualError(t, err, "boom")
}

func TestDebounceLoopCoalescesRelevantEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	var runs atomic.Int32
	done := make(chan struct{})

	go func() {
		debounceLoop(ctx, events, errs, 30*time.Millisecond,
			func(name string) bool { return name != "ignored.docx" },
			func() { runs.Add(1) },
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)
		close(done)
	}()

	events <- fsnotify.Event{Name: "a.pdf", Op: fsnotify.Create}
	events <- fsnotify.Event{Name: "a.pdf", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "b.pdf", Op: fsnotify.Chmod}
	events <- fsnotify.Event{Name: "ignored.docx", Op: fsnotify.Create}
	errs <- errors.New("overflow")

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	events <- fsnotify.Event{Name: "c.pdf", Op: fsnotify.Remove}
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)

	close(events)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("debounce loop did not stop after events channel closed")
	}
}
