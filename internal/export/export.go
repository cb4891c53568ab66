package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/guttosm/k4bridge/internal/report"
)

// ErrRendererUnavailable is returned when an output format needs an external
// program (headless Chrome for PDF) that cannot be found.
var ErrRendererUnavailable = errors.New("renderer unavailable")

// Format is an output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// Formats lists every supported output format.
var Formats = []Format{FormatXLSX, FormatCSV, FormatPDF}

// ParseFormat validates a format name (case-insensitive, optional leading dot).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Exporter serializes a report into one file format.
type Exporter interface {
	Format() Format
	ContentType() string
	Export(ctx context.Context, w io.Writer, rep report.Report) error
}

// Registry maps formats to their exporters.
type Registry struct {
	exporters map[Format]Exporter
}

// NewRegistry builds a Registry. A later exporter replaces an earlier one of the same format.
func NewRegistry(exporters ...Exporter) *Registry {
	r := &Registry{exporters: make(map[Format]Exporter, len(exporters))}
	for _, e := range exporters {
		r.exporters[e.Format()] = e
	}
	return r
}

// Get returns the exporter for f.
func (r *Registry) Get(f Format) (Exporter, bool) {
	e, ok := r.exporters[f]
	return e, ok
}

// Formats returns the registered formats in a stable order.
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.exporters))
	for f := range r.exporters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Filename returns the download name of an artifact.
//
// Examples:
//
//	Filename(report.KindK4, FormatXLSX, "2024")        // 2024_K4_Statement.xlsx
//	Filename(report.KindK4, FormatPDF, "2024")         // 2024_K4_Bilaga_B.pdf
//	Filename(report.KindStatement, FormatCSV, "2024")  // 2024_statement.csv
func Filename(kind report.Kind, f Format, year string) string {
	if kind == report.KindStatement {
		return fmt.Sprintf("%s_statement.%s", year, f)
	}
	if f == FormatPDF {
		return fmt.Sprintf("%s_K4_Bilaga_B.%s", year, f)
	}
	return fmt.Sprintf("%s_K4_Statement.%s", year, f)
}
