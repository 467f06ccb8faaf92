package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docdiff/internal/doctree"
)

// CSVParser handles CSV files. Each record becomes a table row element
// with its cells labelled by the header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Extraction, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := newBuilder()
	if len(records) == 0 {
		return b.extraction(), nil
	}

	headers := records[0]
	b.tableRow(strings.Join(headers, " | "), 0)
	for _, row := range records[1:] {
		cells := make([]string, len(row))
		for j, cell := range row {
			if j < len(headers) && headers[j] != "" {
				cells[j] = headers[j] + ": " + cell
			} else {
				cells[j] = cell
			}
		}
		b.tableRow(strings.Join(cells, ", "), 0)
	}

	return b.extraction(), nil
}
