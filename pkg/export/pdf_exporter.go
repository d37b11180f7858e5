package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders sheets into a portrait A4 table with weighted column
// widths and a generation timestamp in the footer.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render produces the PDF bytes for a sheet.
func (e *PDFExporter) Render(sheet Sheet) ([]byte, error) {
	if len(sheet.Columns) == 0 {
		return nil, fmt.Errorf("pdf sheet needs at least one column")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	left, top, right := 12.0, 16.0, 12.0
	pdf.SetMargins(left, top, right)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - left - right
	weights := sheet.weights()

	if sheet.Title != "" {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(usable, 9, sheet.Title, "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(232, 232, 232)
	for i, col := range sheet.Columns {
		pdf.CellFormat(usable*weights[i], 8, col.Title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range sheet.Rows {
		for i := range sheet.Columns {
			pdf.CellFormat(usable*weights[i], 7, cell(row, i), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetY(-14)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(usable, 6, "Generated "+time.Now().UTC().Format(time.RFC3339), "", 0, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
