package reports

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"

	"dispensary/m/domain"
	"dispensary/m/internal/catalog"
	"dispensary/m/internal/config"
	"dispensary/m/internal/invoicing"
	"dispensary/m/internal/patients"
	"dispensary/m/internal/testdb"
)

func seedSales(t *testing.T) (*sqlx.DB, time.Time) {
	t.Helper()
	db := testdb.Open(t)
	ctx := context.Background()

	med, err := catalog.New(db).Create(ctx, domain.MedicineInput{Name: "Paracetamol", UnitPrice: 2.5, OpeningStock: 100})
	if err != nil {
		t.Fatalf("create medicine: %v", err)
	}
	p, _ := patients.New(db).Create(ctx, domain.PatientInput{Name: "Asad"})

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	post := func(at time.Time, qty int64, fee float64, patientID *int64) {
		e := invoicing.New(db, nil, invoicing.WithClock(func() time.Time { return at }))
		if _, err := e.PostInvoice(ctx, domain.InvoiceRequest{Items: []domain.CartItem{{MedicineID: med.ID, Qty: qty}}, DoctorFee: fee, PatientID: patientID}); err != nil {
			t.Fatalf("post invoice: %v", err)
		}
	}
	post(day.Add(9*time.Hour), 2, 50, &p.ID)
	post(day.Add(17*time.Hour+30*time.Minute), 4, 0, nil)
	post(day.Add(-time.Minute), 1, 0, nil)
	post(day.Add(24*time.Hour), 1, 0, nil)
	return db, day
}

func TestLoadDailySales(t *testing.T) {
	db, day := seedSales(t)

	report, err := LoadDailySales(context.Background(), db, day)
	if err != nil {
		t.Fatalf("LoadDailySales: %v", err)
	}
	if report.Day != "2024-03-01" || len(report.Rows) != 2 {
		t.Fatalf("report = %+v", report)
	}
	if report.Rows[0].Patient != "Asad" || report.Rows[1].Patient != "Walk-in" {
		t.Errorf("patients = %q, %q", report.Rows[0].Patient, report.Rows[1].Patient)
	}
	want := SalesTotals{Count: 2, Items: 6, Subtotal: 15, DoctorFee: 50, GrandTotal: 65}
	if report.Totals != want {
		t.Errorf("totals = %+v, want %+v", report.Totals, want)
	}
}

func TestWriteCSV(t *testing.T) {
	report := DailySales{
		Day: "2024-03-01",
		Rows: []SaleRow{
			{InvoiceNo: "INV-20240301-090000", CreatedAt: "2024-03-01 09:00:00", Patient: "Walk-in", TotalItems: 2, Subtotal: 5, Total: 5},
		},
		Totals: SalesTotals{Count: 1, Items: 2, Subtotal: 5, GrandTotal: 5},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, report); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := strings.Join([]string{
		"Invoice No,Datetime,Patient,Items Qty,Subtotal,Doctor Fee,Grand Total",
		"INV-20240301-090000,2024-03-01 09:00:00,Walk-in,2,5.00,0.00,5.00",
		"",
		"Invoices,1",
		"Total items,2",
		"Subtotal,5.00",
		"Doctor Fee,0.00",
		"Grand Total,5.00",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestExportDay(t *testing.T) {
	db, day := seedSales(t)
	dir := t.TempDir()

	path, report, err := ExportDay(context.Background(), db, dir, day, FormatCSV)
	if err != nil {
		t.Fatalf("ExportDay csv: %v", err)
	}
	if filepath.Base(path) != "sales_20240301.csv" || report.Totals.Count != 2 {
		t.Errorf("path = %s, totals = %+v", path, report.Totals)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "Grand Total,65.00") {
		t.Errorf("csv missing totals:\n%s", raw)
	}

	path, _, err = ExportDay(context.Background(), db, dir, day, FormatXLSX)
	if err != nil {
		t.Fatalf("ExportDay xlsx: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Sales")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) < 3 || rows[0][0] != "Invoice No" || rows[1][2] != "Asad" {
		t.Errorf("rows = %v", rows)
	}

	if _, _, err := ExportDay(context.Background(), db, dir, day, "pdf"); err == nil {
		t.Error("ExportDay(pdf) should fail")
	}
}

func TestWriteFileRemovesPartialSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "pdf"))
	if err := writeFile(path, DailySales{}, "pdf"); err == nil {
		t.Fatal("writeFile(pdf) should fail")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial file left behind: %v", err)
	}
}

func TestParseDay(t *testing.T) {
	if _, err := ParseDay("2024-13-01"); err == nil {
		t.Error("ParseDay accepted month 13")
	}
	d, err := ParseDay(" 2024-02-29 ")
	if err != nil || d.Day() != 29 {
		t.Errorf("ParseDay = %v, %v", d, err)
	}
}

func TestRenderInvoiceHTML(t *testing.T) {
	detail := domain.InvoiceDetail{
		Invoice: domain.Invoice{InvoiceNo: "INV-20240301-090000", CreatedAt: "2024-03-01 09:00:00", Subtotal: 7.5, DoctorFee: 50, Total: 57.5, TotalItems: 3},
		Lines:   []domain.InvoiceLine{{Name: "Syrup <50ml>", Qty: 3, UnitPrice: 2.5, LineTotal: 7.5}},
	}
	var buf bytes.Buffer
	if err := RenderInvoiceHTML(&buf, config.Clinic{Name: "City Clinic", Phone: "042-111"}, detail); err != nil {
		t.Fatalf("RenderInvoiceHTML: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"City Clinic", "Phone: 042-111", "Patient: Walk-in", "Syrup &lt;50ml&gt;", "57.50", "Total quantity of medicines: 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
