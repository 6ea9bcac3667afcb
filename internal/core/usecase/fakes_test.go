package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
)

// goPool runs every task on its own goroutine.
type goPool struct {
	closed bool
}

func (p *goPool) Submit(_ context.Context, task func()) error {
	if p.closed {
		return errors.New("pool closed")
	}
	go task()
	return nil
}

// echoDecoder returns the document bytes as text. The contents "FAIL" and
// "PANIC" trigger a decode error and a panic respectively.
type echoDecoder struct{}

func (echoDecoder) Decode(_ context.Context, _ string, r io.ReaderAt, size int64) (string, error) {
	raw, err := io.ReadAll(io.NewSectionReader(r, 0, size))
	if err != nil {
		return "", err
	}
	switch string(raw) {
	case "FAIL":
		return "", errors.New("corrupt xref table")
	case "PANIC":
		panic("decoder blew up")
	}
	return string(raw), nil
}

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

type memScratch struct {
	mu      sync.Mutex
	files   map[string][]byte
	saved   int
	removed int
	saveErr error
}

func newMemScratch() *memScratch {
	return &memScratch{files: map[string][]byte{}}
}

func (s *memScratch) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = raw
	s.saved++
	return int64(len(raw)), nil
}

func (s *memScratch) Open(_ context.Context, key string) (ports.ReadAtCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.files[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return memFile{bytes.NewReader(raw)}, nil
}

func (s *memScratch) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	s.removed++
	return nil
}

func (s *memScratch) remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

type metricsFake struct {
	mu        sync.Mutex
	documents map[string]int
	chunks    int
	batches   int
	rejected  int
	inFlight  int
}

func newMetricsFake() *metricsFake {
	return &metricsFake{documents: map[string]int{}}
}

func (m *metricsFake) IncInFlight() { m.mu.Lock(); m.inFlight++; m.mu.Unlock() }
func (m *metricsFake) DecInFlight() { m.mu.Lock(); m.inFlight--; m.mu.Unlock() }
func (m *metricsFake) ObserveDocument(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[status]++
}
func (m *metricsFake) ObserveChunk()                        { m.chunks++ }
func (m *metricsFake) ObserveBatch(time.Duration, int, int) { m.batches++ }
func (m *metricsFake) ObserveRejected()                     { m.rejected++ }

type progressRecorder struct {
	calls [][2]int
}

func (r *progressRecorder) OnProgress(completed, total int) {
	r.calls = append(r.calls, [2]int{completed, total})
}

type runnerFake struct {
	report  *domain.BatchReport
	err     error
	calls   int
	batchID string
}

func (f *runnerFake) RunBatch(_ context.Context, batchID string, docs []domain.RawDocument, _ ports.ProgressObserver) (*domain.BatchReport, error) {
	f.calls++
	f.batchID = batchID
	if f.err != nil {
		return nil, f.err
	}
	report := *f.report
	report.BatchID = batchID
	report.Total = len(docs)
	return &report, nil
}

type exporterFake struct {
	subsetFields []domain.Field
	exported     int
}

func (f *exporterFake) Export(rows []domain.CandidateRecord) ([]byte, error) {
	f.exported = len(rows)
	return []byte("full"), nil
}

func (f *exporterFake) ExportSubset(rows []domain.CandidateRecord, fields []domain.Field) ([]byte, error) {
	f.exported = len(rows)
	f.subsetFields = fields
	return []byte("subset"), nil
}

func (f *exporterFake) ContentType() string { return "text/csv" }
func (f *exporterFake) Extension() string   { return ".csv" }

type reportExporterFake struct {
	exporterFake
}

func (f *reportExporterFake) EncodeReport(report *domain.BatchReport, _ []domain.Field) ([]byte, error) {
	return []byte("report:" + report.BatchID), nil
}

type providerFake struct {
	exporters map[string]ports.Exporter
}

func (p *providerFake) Exporter(format string) (ports.Exporter, error) {
	exp, ok := p.exporters[format]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "resolve exporter", errors.New("unsupported format "+format))
	}
	return exp, nil
}

type publisherFake struct {
	events []domain.BatchCompleted
	err    error
}

func (p *publisherFake) PublishBatchCompleted(_ context.Context, event domain.BatchCompleted) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type writerFake struct {
	path string
	data []byte
	err  error
}

func (w *writerFake) Write(_ context.Context, path string, data []byte) error {
	if w.err != nil {
		return w.err
	}
	w.path = path
	w.data = data
	return nil
}
