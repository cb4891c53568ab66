package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/guttosm/k4bridge/internal/report"
)

const defaultSheet = "Sheet1"

// XLSXExporter writes every table of a report to its own worksheet.
type XLSXExporter struct{}

func (XLSXExporter) Format() Format { return FormatXLSX }

func (XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export writes the workbook. The first table becomes the active sheet.
func (XLSXExporter) Export(ctx context.Context, w io.Writer, rep report.Report) error {
	if len(rep.Tables) == 0 {
		return fmt.Errorf("report %q has no tables", rep.Kind)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, tbl := range rep.Tables {
		if err := ctx.Err(); err != nil {
			return err
		}

		if i == 0 {
			if err := f.SetSheetName(defaultSheet, tbl.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(tbl.Name); err != nil {
			return fmt.Errorf("new sheet %s: %w", tbl.Name, err)
		}

		if err := writeSheet(f, tbl, headerStyle); err != nil {
			return fmt.Errorf("sheet %s: %w", tbl.Name, err)
		}
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}

func writeSheet(f *excelize.File, tbl report.Table, headerStyle int) error {
	header := make([]interface{}, len(tbl.Columns))
	for i, c := range tbl.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(tbl.Name, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(tbl.Name, 1, 1, headerStyle); err != nil {
		return err
	}

	for r, row := range tbl.Rows {
		values := make([]interface{}, len(row))
		for i, c := range row {
			values[i] = cellValue(c)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(tbl.Name, cell, &values); err != nil {
			return err
		}
	}

	if len(tbl.Columns) > 0 {
		last, err := excelize.ColumnNumberToName(len(tbl.Columns))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(tbl.Name, "A", last, 18); err != nil {
			return err
		}
	}

	return f.SetPanes(tbl.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellValue keeps amounts numeric so spreadsheet formulas work on them.
func cellValue(c report.Cell) interface{} {
	switch c.Kind {
	case report.CountCell:
		return c.Count
	case report.AmountCell:
		return c.Amount.InexactFloat64()
	default:
		return c.Text
	}
}
