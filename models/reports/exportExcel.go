package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const exportSheet = "Sheet1"

var ExportKinds = map[string]bool{
	"users":      true,
	"categories": true,
	"zones":      true,
}

// ExportExcel writes the full, unpaginated report of kind filtered by search
// as an xlsx workbook.
func (r *Reporter) ExportExcel(ctx context.Context, kind string, search string, w io.Writer) error {
	ctx, span := tracer.Start(ctx, "reports.ExportExcel")
	defer span.End()

	var (
		headers []string
		records [][]interface{}
	)
	switch kind {
	case "users":
		rows, err := r.userRows(ctx, search)
		if err != nil {
			return err
		}
		headers = []string{"User", "Total Amount", "Last Expense Date"}
		for _, row := range rows {
			records = append(records, []interface{}{row.UserName, row.TotalAmount.InexactFloat64(), formatDate(row.LastExpenseDate)})
		}
	case "categories":
		rows, err := r.categoryRows(ctx, search)
		if err != nil {
			return err
		}
		headers = []string{"Category", "Total", "Last Expense Date"}
		for _, row := range rows {
			records = append(records, []interface{}{row.Name, row.Total.InexactFloat64(), formatDate(row.LastExpenseDate)})
		}
	case "zones":
		rows, err := r.zoneRows(ctx, search)
		if err != nil {
			return err
		}
		headers = []string{"Zone", "Created By", "Created At", "Total Expenses", "Expense Count"}
		for _, row := range rows {
			records = append(records, []interface{}{row.Name, row.CreatedBy, formatDate(&row.CreatedAt), row.TotalExpenses.InexactFloat64(), row.ExpenseCount})
		}
	default:
		return fmt.Errorf("unknown report %q", kind)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return err
		}
	}
	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &record); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
