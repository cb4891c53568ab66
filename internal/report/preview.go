package report

import (
	"fmt"

	"github.com/guttosm/k4bridge/internal/domain/models"
)

const (
	previewHead = 10
	previewTail = 5
)

// PreviewRow is one line of the on-screen transaction preview. When Separator
// is set the row only stands for Hidden omitted transactions.
type PreviewRow struct {
	Separator  bool
	Hidden     int
	Date       string
	Instrument string
	ISIN       string
	Quantity   string
	TotalSEK   string
	ProfitLoss string
	Gain       bool
}

// Label renders a separator row.
func (r PreviewRow) Label() string {
	return fmt.Sprintf("... %d more transactions ...", r.Hidden)
}

// Preview returns the first 10 and last 5 transactions of a conversion,
// with a separator row between them when anything is left out.
func Preview(conv *models.Conversion) []PreviewRow {
	txs := conv.Transactions
	n := len(txs)

	if n <= previewHead+previewTail {
		out := make([]PreviewRow, 0, n)
		for _, t := range txs {
			out = append(out, previewRow(t))
		}
		return out
	}

	out := make([]PreviewRow, 0, previewHead+previewTail+1)
	for _, t := range txs[:previewHead] {
		out = append(out, previewRow(t))
	}
	out = append(out, PreviewRow{Separator: true, Hidden: n - previewHead - previewTail})
	for _, t := range txs[n-previewTail:] {
		out = append(out, previewRow(t))
	}
	return out
}

func previewRow(t models.SellTransaction) PreviewRow {
	return PreviewRow{
		Date:       formatDate(t.Timestamp, t.TimeValid),
		Instrument: t.Ticker,
		ISIN:       t.ISIN,
		Quantity:   t.Quantity.StringFixed(6),
		TotalSEK:   FormatSEK(t.TotalSEK),
		ProfitLoss: FormatSEK(t.Result),
		Gain:       t.Result.Sign() >= 0,
	}
}
