package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMalformedInput marks a file that cannot be read as a Trading 212 CSV export.
	ErrMalformedInput = errors.New("malformed input file")
	// ErrNoSellTransactions is returned when the export holds no sell rows at all.
	ErrNoSellTransactions = errors.New("no sell transactions found")
)

// Trading 212 export column names.
const (
	ColAction         = "Action"
	ColTime           = "Time"
	ColISIN           = "ISIN"
	ColTicker         = "Ticker"
	ColName           = "Name"
	ColShares         = "No. of shares"
	ColPricePerShare  = "Price / share"
	ColPriceCurrency  = "Currency (Price / share)"
	ColExchangeRate   = "Exchange rate"
	ColResult         = "Result"
	ColResultCurrency = "Currency (Result)"
	ColTotal          = "Total"
)

// requiredHeaders must be present in the header row. Every other column is optional
// and simply reads as empty when missing.
var requiredHeaders = []string{ColAction}

const utf8BOM = "\ufeff"

// Row is one data line of the export, addressed by header name.
type Row struct {
	Line   int
	fields map[string]string
}

// NewRow builds a Row from a header→value map. Mostly useful in tests.
func NewRow(line int, fields map[string]string) Row {
	return Row{Line: line, fields: fields}
}

// Get returns the trimmed cell for col, or "" when the column or cell is absent.
func (r Row) Get(col string) string {
	return strings.TrimSpace(r.fields[col])
}

// Has reports whether the row carries a non-empty value for col.
func (r Row) Has(col string) bool {
	return r.Get(col) != ""
}

// ReadRows parses a comma-separated export with a header row.
//
// It fails on:
//   - empty input (no header)
//   - a header missing any of requiredHeaders
//   - unrecoverable CSV syntax errors
//
// It tolerates:
//   - short rows (missing trailing cells read as empty)
//   - extra cells beyond the header (ignored)
//   - a UTF-8 byte order mark before the header
//
// All failures wrap ErrMalformedInput.
func ReadRows(ctx context.Context, r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMalformedInput)
		}
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformedInput, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], utf8BOM))
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows []Row
	lineNumber := 1

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: read line after %d: %v", ErrMalformedInput, lineNumber, err)
		}
		lineNumber++

		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				fields[h] = rec[i]
			}
		}
		rows = append(rows, Row{Line: lineNumber, fields: fields})
	}

	return rows, nil
}

func checkHeader(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}
	var missing []string
	for _, h := range requiredHeaders {
		if _, ok := present[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required columns: %s", ErrMalformedInput, strings.Join(missing, ", "))
	}
	return nil
}
