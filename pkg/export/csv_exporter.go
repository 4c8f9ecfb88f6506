package export

import (
	"bytes"
	"fmt"
	"strings"
)

// Dataset defines tabular export content. Row fields follow header order.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// CSVExporter renders Dataset records into CSV bytes. The header line is
// written verbatim; every data field is wrapped in double quotes with
// embedded quotes doubled. encoding/csv is not used because it only
// quotes fields when required, while the download contract quotes
// unconditionally.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	buf.WriteString(strings.Join(data.Headers, ","))
	for _, row := range data.Rows {
		if len(row) != len(data.Headers) {
			return nil, fmt.Errorf("csv row has %d fields, want %d", len(row), len(data.Headers))
		}
		buf.WriteByte('\n')
		for i, field := range row {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
			buf.WriteByte('"')
		}
	}
	return buf.Bytes(), nil
}
