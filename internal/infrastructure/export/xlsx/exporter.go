package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/export"
)

const SheetName = "Candidates"

var columnWidths = map[domain.Field]float64{
	domain.FieldName:              24,
	domain.FieldPhone:             18,
	domain.FieldEmail:             30,
	domain.FieldLocation:          14,
	domain.FieldQualification:     32,
	domain.FieldSkills:            60,
	domain.FieldYearsOfExperience: 20,
	domain.FieldFilename:          32,
}

type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *Exporter) Extension() string { return ".xlsx" }

func (e *Exporter) Export(rows []domain.CandidateRecord) ([]byte, error) {
	return e.ExportSubset(rows, nil)
}

// ExportSubset writes one header row followed by one row per record, limited
// to fields in the given order.
func (e *Exporter) ExportSubset(rows []domain.CandidateRecord, fields []domain.Field) ([]byte, error) {
	columns, err := export.Columns(fields)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}

	for i, field := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, field.Header()); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, col, col, columnWidths[field])
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	_ = f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle)

	for r, record := range rows {
		for c, field := range columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellStr(SheetName, cell, record.Value(field)); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r+1, err)
			}
		}
	}
	if len(rows) > 0 {
		_ = f.SetCellStyle(SheetName, "A2", fmt.Sprintf("%s%d", lastCol, len(rows)+1), wrapStyle)
	}

	_ = f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
