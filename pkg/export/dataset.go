package export

import (
	"fmt"
	"strings"
)

// Dataset is a titled table with optional header lines and footer lines.
// Rows are keyed by header name; missing keys render empty.
type Dataset struct {
	Title   string
	Lines   []string
	Headers []string
	Rows    []map[string]string
	Footer  []string
}

// Row returns row i in header order.
func (d Dataset) Row(i int) []string {
	record := make([]string, len(d.Headers))
	for j, header := range d.Headers {
		record[j] = d.Rows[i][header]
	}
	return record
}

func (d Dataset) validate(format Format) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", format)
	}
	return nil
}

// Format names a rendered document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts the query-string spelling of a format. An empty value
// means JSON.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatPDF, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q", raw)
	}
}

// Renderer encodes a dataset into a downloadable document.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// Renderers returns the binary renderers keyed by format.
func Renderers() map[Format]Renderer {
	return map[Format]Renderer{
		FormatCSV:  NewCSVExporter(),
		FormatPDF:  NewPDFExporter(),
		FormatXLSX: NewXLSXExporter(),
	}
}
