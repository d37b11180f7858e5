package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders sheets as RFC 4180 CSV with a header record.
type CSVExporter struct{}

// NewCSVExporter constructs a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces the CSV bytes for a sheet. Short rows are padded so the
// output stays rectangular.
func (e *CSVExporter) Render(sheet Sheet) ([]byte, error) {
	if len(sheet.Columns) == 0 {
		return nil, fmt.Errorf("csv sheet needs at least one column")
	}

	header := make([]string, len(sheet.Columns))
	for i, col := range sheet.Columns {
		header[i] = col.Title
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range sheet.Rows {
		record := make([]string, len(sheet.Columns))
		for i := range sheet.Columns {
			record[i] = cell(row, i)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
