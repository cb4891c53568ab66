package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CellKind tells exporters how to write a cell: as text or as a number.
type CellKind int

const (
	TextCell CellKind = iota
	CountCell
	AmountCell
)

// Cell is one value of a report table.
type Cell struct {
	Kind   CellKind
	Text   string
	Count  int
	Amount decimal.Decimal
}

// Text builds a text cell.
func Text(s string) Cell { return Cell{Kind: TextCell, Text: s} }

// Count builds an integer cell.
func Count(n int) Cell { return Cell{Kind: CountCell, Count: n} }

// Amount builds a numeric cell holding d unchanged.
func Amount(d decimal.Decimal) Cell { return Cell{Kind: AmountCell, Amount: d} }

// String renders the cell for text formats (CSV, Markdown).
func (c Cell) String() string {
	switch c.Kind {
	case CountCell:
		return strconv.Itoa(c.Count)
	case AmountCell:
		return c.Amount.String()
	default:
		return c.Text
	}
}

// Table is a named grid with a fixed column order.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Cell
}

// Strings returns every row rendered with Cell.String.
func (t Table) Strings() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, c := range row {
			rec[i] = c.String()
		}
		out = append(out, rec)
	}
	return out
}

// Kind selects which artifact a Report represents.
type Kind string

const (
	// KindK4 is the K4 workbook: detailed, aggregated and summary tables.
	KindK4 Kind = "k4"
	// KindStatement is the flat per-trade statement.
	KindStatement Kind = "statement"
)

// Kinds lists every supported report kind.
var Kinds = []Kind{KindK4, KindStatement}

// ParseKind validates a report kind name (case-insensitive).
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown report kind %q", s)
}

// Report is an ordered set of tables rendered from a single conversion.
type Report struct {
	Kind    Kind
	Title   string
	TaxYear string
	Tables  []Table
}
