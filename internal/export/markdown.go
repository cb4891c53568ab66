package export

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/guttosm/k4bridge/internal/domain/models"
	"github.com/guttosm/k4bridge/internal/report"
)

const foreignSecuritiesNote = "All Trading 212 securities are foreign. Use **K4 Bilaga B (Part B)**, foreign securities only."

// Markdown renders a report as a GitHub-flavored Markdown document, one
// section per table. Numeric columns are right-aligned.
func Markdown(rep report.Report) (string, error) {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(rep.Title)
	if rep.Kind == report.KindK4 {
		doc.PlainText(foreignSecuritiesNote)
	}

	for _, tbl := range rep.Tables {
		doc.H2(tbl.Name)
		doc.Table(md.TableSet{
			Header:    tbl.Columns,
			Rows:      escapeRows(tbl.Strings()),
			Alignment: alignment(tbl),
		})
	}

	if err := doc.Error(); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return doc.String(), nil
}

// SummaryMarkdown renders the K4 box totals and the transaction preview of a
// conversion for terminal display.
func SummaryMarkdown(conv *models.Conversion) (string, error) {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	t := conv.Totals

	doc.H1f("Swedish K4 Summary (Tax Year %s)", conv.TaxYear)
	doc.PlainTextf("Source: `%s`", conv.SourceFilename)

	doc.Table(md.TableSet{
		Header: []string{"", "SEK"},
		Rows: [][]string{
			{"Number of transactions", fmt.Sprintf("%d", t.TransactionCount)},
			{"Unique securities", fmt.Sprintf("%d", t.UniqueSecurityCount)},
			{"Box 3.3 Total Gains (Vinster)", report.FormatSEK(t.Gains)},
			{"Box 3.4 Total Losses (Förluster)", report.FormatSEK(t.Losses.Abs())},
			{"Box 3.5 Net Result (Nettoresultat)", report.FormatSEK(t.Net)},
			{"Estimated tax (30%)", "~" + report.FormatSEK(t.EstimatedTax())},
		},
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
	})
	doc.PlainText(foreignSecuritiesNote)

	doc.H2("Sell transactions")
	rows := make([][]string, 0)
	for _, p := range report.Preview(conv) {
		if p.Separator {
			rows = append(rows, []string{p.Label(), "", "", "", "", ""})
			continue
		}
		rows = append(rows, []string{p.Date, "**" + escapeCell(p.Instrument) + "**", escapeCell(p.ISIN), p.Quantity, p.TotalSEK, p.ProfitLoss})
	}
	doc.Table(md.TableSet{
		Header: []string{"Date", "Instrument", "ISIN", "Quantity", "Total (SEK)", "P/L (SEK)"},
		Rows:   rows,
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight,
		},
	})

	if err := doc.Error(); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return doc.String(), nil
}

func alignment(tbl report.Table) []md.TableAlignment {
	out := make([]md.TableAlignment, len(tbl.Columns))
	for i := range out {
		out[i] = md.AlignLeft
	}
	if len(tbl.Rows) == 0 {
		return out
	}
	for i, c := range tbl.Rows[0] {
		if i < len(out) && c.Kind != report.TextCell {
			out[i] = md.AlignRight
		}
	}
	return out
}

// escapeCell keeps a pipe inside a table cell from starting a new column.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func escapeRows(rows [][]string) [][]string {
	for _, row := range rows {
		for i, cell := range row {
			row[i] = escapeCell(cell)
		}
	}
	return rows
}
