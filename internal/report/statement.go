package report

import (
	"fmt"

	"github.com/guttosm/k4bridge/internal/domain/models"
)

// SheetStatement is the sheet name of the per-trade statement.
const SheetStatement = "Sell Trades"

var statementColumns = []string{
	"EXECUTION TIME",
	"INSTRUMENT",
	"NAME",
	"ISIN",
	"INSTRUMENT TYPE",
	"INSTRUMENT CURRENCY",
	"QUANTITY",
	"PRICE / SHARE",
	"FX RATE",
	"TRANSACTION CURRENCY",
	"TOTAL (SEK)",
	"REALISED P/L",
}

// Statement lists every sell with its raw export values.
func Statement(conv *models.Conversion) Table {
	rows := make([][]Cell, 0, len(conv.Transactions))
	for _, t := range conv.Transactions {
		rows = append(rows, []Cell{
			Text(formatDateTime(t.Timestamp, t.TimeValid)),
			Text(t.Ticker),
			Text(t.Name),
			Text(t.ISIN),
			Text(string(t.Type)),
			Text(t.PriceCurrency),
			Amount(t.Quantity),
			Amount(t.PricePerShare),
			Amount(t.FXRate),
			Text(t.ResultCurrency),
			Amount(t.TotalSEK),
			Amount(t.Result),
		})
	}
	return Table{Name: SheetStatement, Columns: statementColumns, Rows: rows}
}

// StatementReport wraps Statement as a single-table report.
func StatementReport(conv *models.Conversion) Report {
	return Report{
		Kind:    KindStatement,
		Title:   fmt.Sprintf("Sell trades %s", conv.TaxYear),
		TaxYear: conv.TaxYear,
		Tables:  []Table{Statement(conv)},
	}
}

// Build returns the report of the given kind.
func Build(kind Kind, conv *models.Conversion) (Report, error) {
	switch kind {
	case KindK4:
		return K4Report(conv), nil
	case KindStatement:
		return StatementReport(conv), nil
	default:
		return Report{}, fmt.Errorf("unknown report kind %q", kind)
	}
}
