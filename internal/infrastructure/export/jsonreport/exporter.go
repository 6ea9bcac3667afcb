package jsonreport

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/export"
)

// Exporter renders records as JSON objects keyed by column header. Given a
// whole batch report it also carries failures and field statistics.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ContentType() string { return "application/json" }

func (e *Exporter) Extension() string { return ".json" }

func (e *Exporter) Export(rows []domain.CandidateRecord) ([]byte, error) {
	return e.ExportSubset(rows, nil)
}

func (e *Exporter) ExportSubset(rows []domain.CandidateRecord, fields []domain.Field) ([]byte, error) {
	records, err := project(rows, fields)
	if err != nil {
		return nil, err
	}
	return marshal(records)
}

type reportView struct {
	BatchID    string                   `json:"batch_id"`
	Total      int                      `json:"total"`
	Processed  int                      `json:"processed"`
	Failed     int                      `json:"failed"`
	StartedAt  time.Time                `json:"started_at"`
	DurationMS int64                    `json:"duration_ms"`
	Stats      domain.ProcessingStats   `json:"stats"`
	Records    []map[string]string      `json:"records"`
	Failures   []domain.DocumentFailure `json:"failures"`
}

func (e *Exporter) EncodeReport(report *domain.BatchReport, fields []domain.Field) ([]byte, error) {
	records, err := project(report.Records, fields)
	if err != nil {
		return nil, err
	}
	failures := report.Failures
	if failures == nil {
		failures = []domain.DocumentFailure{}
	}
	return marshal(reportView{
		BatchID:    report.BatchID,
		Total:      report.Total,
		Processed:  report.Processed(),
		Failed:     report.Failed(),
		StartedAt:  report.StartedAt,
		DurationMS: report.Duration.Milliseconds(),
		Stats:      report.Stats,
		Records:    records,
		Failures:   failures,
	})
}

func project(rows []domain.CandidateRecord, fields []domain.Field) ([]map[string]string, error) {
	columns, err := export.Columns(fields)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]string, 0, len(rows))
	for _, record := range rows {
		m := make(map[string]string, len(columns))
		for _, f := range columns {
			m[f.Header()] = record.Value(f)
		}
		out = append(out, m)
	}
	return out, nil
}

func marshal(v any) ([]byte, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json export: %w", err)
	}
	return append(raw, '\n'), nil
}
