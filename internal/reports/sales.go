// Package reports builds read-only views of posted sales: daily sales sheets
// in CSV or XLSX and the printable invoice.
package reports

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"dispensary/m/domain"
	"dispensary/m/internal/billing"
)

const DayLayout = "2006-01-02"

type SaleRow struct {
	InvoiceNo  string  `db:"invoice_no" json:"invoice_no"`
	CreatedAt  string  `db:"created_at" json:"created_at"`
	Patient    string  `db:"patient" json:"patient"`
	TotalItems int64   `db:"total_items" json:"total_items"`
	Subtotal   float64 `db:"subtotal" json:"subtotal"`
	DoctorFee  float64 `db:"doctor_fee" json:"doctor_fee"`
	Total      float64 `db:"total" json:"total"`
}

type SalesTotals struct {
	Count      int     `json:"count"`
	Items      int64   `json:"items"`
	Subtotal   float64 `json:"subtotal"`
	DoctorFee  float64 `json:"doctor_fee"`
	GrandTotal float64 `json:"grand_total"`
}

type DailySales struct {
	Day    string      `json:"day"`
	Rows   []SaleRow   `json:"rows"`
	Totals SalesTotals `json:"totals"`
}

// ParseDay accepts YYYY-MM-DD.
func ParseDay(s string) (time.Time, error) {
	day, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domain.Invalid("date", "must be in YYYY-MM-DD format")
	}
	return day, nil
}

// LoadDailySales lists the invoices posted on day in posting order.
func LoadDailySales(ctx context.Context, db *sqlx.DB, day time.Time) (DailySales, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	report := DailySales{Day: start.Format(DayLayout), Rows: []SaleRow{}}
	err := db.SelectContext(ctx, &report.Rows, db.Rebind(`SELECT i.invoice_no, i.created_at,
                COALESCE(p.name, 'Walk-in') AS patient,
                i.total_items, i.subtotal, i.doctor_fee, i.total
                FROM invoices i
                LEFT JOIN patients p ON p.id = i.patient_id
                WHERE i.created_at >= ? AND i.created_at < ?
                ORDER BY i.created_at ASC, i.id ASC`),
		start.Format(domain.TimeLayout), end.Format(domain.TimeLayout))
	if err != nil {
		return DailySales{}, domain.Storage("load daily sales", err)
	}

	subtotals := make([]float64, len(report.Rows))
	fees := make([]float64, len(report.Rows))
	totals := make([]float64, len(report.Rows))
	for i, r := range report.Rows {
		report.Totals.Items += r.TotalItems
		subtotals[i], fees[i], totals[i] = r.Subtotal, r.DoctorFee, r.Total
	}
	report.Totals.Count = len(report.Rows)
	report.Totals.Subtotal = billing.Sum(subtotals...)
	report.Totals.DoctorFee = billing.Sum(fees...)
	report.Totals.GrandTotal = billing.Sum(totals...)
	return report, nil
}
