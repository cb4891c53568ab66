package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/guttosm/k4bridge/internal/report"
)

// CSVExporter writes a single table as comma-separated values. For the K4
// report that is the aggregated view; for the statement it is the trade list.
type CSVExporter struct{}

func (CSVExporter) Format() Format { return FormatCSV }

func (CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

func (CSVExporter) Export(ctx context.Context, w io.Writer, rep report.Report) error {
	tbl, err := csvTable(rep)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(tbl.Columns); err != nil {
		return err
	}
	for _, rec := range tbl.Strings() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvTable(rep report.Report) (report.Table, error) {
	if len(rep.Tables) == 0 {
		return report.Table{}, fmt.Errorf("report %q has no tables", rep.Kind)
	}
	if rep.Kind == report.KindK4 {
		for _, t := range rep.Tables {
			if t.Name == report.SheetAggregated {
				return t, nil
			}
		}
		return report.Table{}, fmt.Errorf("k4 report has no %q table", report.SheetAggregated)
	}
	return rep.Tables[0], nil
}
