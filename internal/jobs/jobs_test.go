package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dispensary/m/domain"
	"dispensary/m/internal/catalog"
	"dispensary/m/internal/events"
	"dispensary/m/internal/events/eventstest"
	"dispensary/m/internal/testdb"
)

func TestRegister(t *testing.T) {
	s := NewScheduler()
	noop := func(context.Context) error { return nil }

	if err := s.Register("Low-Stock", "0 8 * * *", noop); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register("low-stock", "0 9 * * *", noop); err == nil {
		t.Error("duplicate name accepted")
	}
	if err := s.Register("broken", "every morning", noop); err == nil {
		t.Error("invalid schedule accepted")
	}
	if names := s.Names(); len(names) != 1 || names[0] != "low-stock" {
		t.Errorf("Names = %v", names)
	}
	if err := s.RunNow(context.Background(), "missing"); err == nil {
		t.Error("RunNow(missing) should fail")
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}

func TestLowStockJob(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	store := catalog.New(db)
	store.Create(ctx, domain.MedicineInput{Name: "Low", UnitPrice: 1, OpeningStock: 2, ReorderLevel: 5})
	store.Create(ctx, domain.MedicineInput{Name: "Plenty", UnitPrice: 1, OpeningStock: 50, ReorderLevel: 5})

	rec := &eventstest.Recorder{}
	s := NewScheduler()
	if err := s.Register(LowStockJob, "0 8 * * *", LowStock(store, rec)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.RunNow(ctx, LowStockJob); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	evs := rec.Events()
	if len(evs) != 1 || evs[0].Type != events.StockLow || evs[0].Key != "1" {
		t.Errorf("events = %+v", evs)
	}
}

func TestSalesExportJob(t *testing.T) {
	db := testdb.Open(t)
	dir := t.TempDir()
	now := func() time.Time { return time.Date(2024, 5, 2, 23, 55, 0, 0, time.UTC) }

	if err := SalesExport(db, dir, now)(context.Background()); err != nil {
		t.Fatalf("SalesExport: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sales_20240502.csv")); err != nil {
		t.Errorf("export file: %v", err)
	}
}
