package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"

	"dispensary/m/domain"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var salesHeader = []string{"Invoice No", "Datetime", "Patient", "Items Qty", "Subtotal", "Doctor Fee", "Grand Total"}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (r SaleRow) record() []string {
	return []string{
		r.InvoiceNo,
		r.CreatedAt,
		r.Patient,
		strconv.FormatInt(r.TotalItems, 10),
		money(r.Subtotal),
		money(r.DoctorFee),
		money(r.Total),
	}
}

func (t SalesTotals) footer() [][]string {
	return [][]string{
		{"Invoices", strconv.Itoa(t.Count)},
		{"Total items", strconv.FormatInt(t.Items, 10)},
		{"Subtotal", money(t.Subtotal)},
		{"Doctor Fee", money(t.DoctorFee)},
		{"Grand Total", money(t.GrandTotal)},
	}
}

// WriteCSV writes the header, one row per invoice, a blank line and the
// totals block.
func WriteCSV(w io.Writer, s DailySales) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(salesHeader); err != nil {
		return err
	}
	for _, r := range s.Rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{}); err != nil {
		return err
	}
	if err := cw.WriteAll(s.Totals.footer()); err != nil {
		return err
	}
	return cw.Error()
}

// WriteXLSX writes the same layout as WriteCSV to a single "Sales" sheet.
func WriteXLSX(w io.Writer, s DailySales) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sales"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if f.GetSheetName(0) != sheet {
		f.DeleteSheet("Sheet1")
	}

	for i, h := range salesHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err == nil {
		f.SetRowStyle(sheet, 1, 1, headerStyle)
	}

	row := 2
	for _, r := range s.Rows {
		values := []any{r.InvoiceNo, r.CreatedAt, r.Patient, r.TotalItems, r.Subtotal, r.DoctorFee, r.Total}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	row++
	summary := [][]any{
		{"Invoices", s.Totals.Count},
		{"Total items", s.Totals.Items},
		{"Subtotal", s.Totals.Subtotal},
		{"Doctor Fee", s.Totals.DoctorFee},
		{"Grand Total", s.Totals.GrandTotal},
	}
	for _, line := range summary {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), line[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), line[1])
		row++
	}
	f.SetColWidth(sheet, "A", "G", 18)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fmt.Errorf("error writing Excel file: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// Write renders s in the given format.
func Write(w io.Writer, s DailySales, format string) error {
	switch format {
	case FormatCSV, "":
		return WriteCSV(w, s)
	case FormatXLSX:
		return WriteXLSX(w, s)
	}
	return domain.Invalid("format", "must be csv or xlsx")
}

// FileName is sales_YYYYMMDD.<format>.
func FileName(day time.Time, format string) string {
	if format == "" {
		format = FormatCSV
	}
	return "sales_" + day.Format("20060102") + "." + format
}

// ExportDay writes the day's sales sheet under dir and returns its path.
func ExportDay(ctx context.Context, db *sqlx.DB, dir string, day time.Time, format string) (string, DailySales, error) {
	if format != "" && format != FormatCSV && format != FormatXLSX {
		return "", DailySales{}, domain.Invalid("format", "must be csv or xlsx")
	}
	report, err := LoadDailySales(ctx, db, day)
	if err != nil {
		return "", DailySales{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", DailySales{}, fmt.Errorf("create reports dir: %w", err)
	}

	path := filepath.Join(dir, FileName(day, format))
	if err := writeFile(path, report, format); err != nil {
		return "", DailySales{}, err
	}
	return path, report, nil
}

// writeFile leaves no partial sheet behind when writing or closing fails.
func writeFile(path string, report DailySales, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	err = Write(file, report, format)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
