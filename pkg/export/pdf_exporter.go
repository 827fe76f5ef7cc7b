package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pdfTableWidth = 190.0

// PDFExporter renders a Dataset as a single table in a portrait A4 document.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render produces a PDF with an optional title above the table.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("dataset has no headers")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
		pdf.Ln(4)
	}

	width := pdfTableWidth / float64(len(data.Headers))

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, header := range data.Headers {
		pdf.CellFormat(width, 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(width, 7, row[header], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
