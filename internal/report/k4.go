package report

import (
	"fmt"

	"github.com/guttosm/k4bridge/internal/domain/models"
)

// Sheet names of the K4 workbook.
const (
	SheetDetailed   = "K4 Detaljerad"
	SheetAggregated = "K4 Sammanställning"
	SheetSummary    = "Sammanfattning"
)

var detailedColumns = []string{
	"Värdepapper",
	"Antal",
	"Försäljningspris (SEK)",
	"Omkostnadsbelopp (SEK)",
	"Vinst (+) / Förlust (-) (SEK)",
	"Försäljningsdatum",
	"Land",
	"ISIN",
	"Typ",
	"Valuta",
}

var aggregatedColumns = []string{
	"Värdepapper",
	"Totalt Antal",
	"Totalt Försäljningspris (SEK)",
	"Totalt Omkostnadsbelopp (SEK)",
	"Totalt Vinst/Förlust (SEK)",
	"Antal Transaktioner",
	"Land",
	"ISIN",
	"Typ",
}

var summaryColumns = []string{"Beskrivning", "Belopp (SEK)"}

// Detailed returns one row per sell transaction, in conversion order.
// Acquisition cost is rounded to two decimals; every other amount is passed through.
func Detailed(conv *models.Conversion) Table {
	rows := make([][]Cell, 0, len(conv.Transactions))
	for _, t := range conv.Transactions {
		rows = append(rows, []Cell{
			Text(t.Security()),
			Amount(t.Quantity),
			Amount(t.TotalSEK),
			Amount(t.AcquisitionCost().Round(2)),
			Amount(t.Result),
			Text(formatDateISO(t.Timestamp, t.TimeValid)),
			Text(t.CountryCode()),
			Text(t.ISIN),
			Text(string(t.Type)),
			Text(t.PriceCurrency),
		})
	}
	return Table{Name: SheetDetailed, Columns: detailedColumns, Rows: rows}
}

// Aggregated returns one row per security, in group order.
func Aggregated(conv *models.Conversion) Table {
	rows := make([][]Cell, 0, len(conv.Groups))
	for _, g := range conv.Groups {
		rows = append(rows, []Cell{
			Text(g.Security()),
			Amount(g.TotalQuantity),
			Amount(g.TotalProceeds),
			Amount(g.TotalAcquisitionCost),
			Amount(g.TotalProfitLoss),
			Count(g.TransactionCount),
			Text(g.Country()),
			Text(g.ISIN),
			Text(string(g.Type)),
		})
	}
	return Table{Name: SheetAggregated, Columns: aggregatedColumns, Rows: rows}
}

// Summary returns the K4 box totals as label/value text pairs.
func Summary(conv *models.Conversion) Table {
	s := conv.Totals
	pair := func(label, value string) []Cell { return []Cell{Text(label), Text(value)} }

	return Table{
		Name:    SheetSummary,
		Columns: summaryColumns,
		Rows: [][]Cell{
			pair("Totalt antal transaktioner", fmt.Sprintf("%d st", s.TransactionCount)),
			pair("Totalt antal unika värdepapper", fmt.Sprintf("%d st", s.UniqueSecurityCount)),
			pair("Totalt försäljningspris", s.TotalProceeds.StringFixed(2)),
			pair("Totalt omkostnadsbelopp", s.TotalAcquisitionCost.StringFixed(2)),
			pair("", ""),
			pair("VINSTER (Box 3.3)", s.Gains.StringFixed(2)),
			pair("FÖRLUSTER (Box 3.4)", s.Losses.StringFixed(2)),
			pair("NETTORESULTAT (Box 3.5)", s.Net.StringFixed(2)),
		},
	}
}

// K4Report bundles the three K4 views in workbook order.
func K4Report(conv *models.Conversion) Report {
	return Report{
		Kind:    KindK4,
		Title:   fmt.Sprintf("K4 Bilaga B %s", conv.TaxYear),
		TaxYear: conv.TaxYear,
		Tables:  []Table{Detailed(conv), Aggregated(conv), Summary(conv)},
	}
}
