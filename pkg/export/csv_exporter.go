// Package export renders tabular datasets into downloadable documents.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a table to be rendered. Rows index cell values by header name;
// missing cells render empty.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

func (d Dataset) records() [][]string {
	records := make([][]string, 0, len(d.Rows)+1)
	records = append(records, d.Headers)
	for _, row := range d.Rows {
		record := make([]string, len(d.Headers))
		for i, header := range d.Headers {
			record[i] = row[header]
		}
		records = append(records, record)
	}
	return records
}

// CSVExporter renders a Dataset as RFC 4180 CSV.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render encodes the dataset, headers first.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("dataset has no headers")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(data.records()); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
