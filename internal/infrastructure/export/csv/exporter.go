package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/export"
)

type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ContentType() string { return "text/csv; charset=utf-8" }

func (e *Exporter) Extension() string { return ".csv" }

func (e *Exporter) Export(rows []domain.CandidateRecord) ([]byte, error) {
	return e.ExportSubset(rows, nil)
}

func (e *Exporter) ExportSubset(rows []domain.CandidateRecord, fields []domain.Field) ([]byte, error) {
	columns, err := export.Columns(fields)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(columns))
	for i, f := range columns {
		header[i] = f.Header()
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	line := make([]string, len(columns))
	for r, record := range rows {
		for i, f := range columns {
			line[i] = record.Value(f)
		}
		if err := w.Write(line); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", r+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
