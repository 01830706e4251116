package jobs

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"dispensary/m/domain"
	"dispensary/m/internal/events"
	"dispensary/m/internal/reports"
)

const (
	LowStockJob    = "low-stock"
	SalesExportJob = "sales-export"
)

// LowStockLister is satisfied by the catalog store.
type LowStockLister interface {
	LowStock(ctx context.Context) ([]domain.Medicine, error)
}

// LowStock logs every medicine at or below its reorder level and publishes a
// stock.low event for each.
func LowStock(lister LowStockLister, publisher events.Publisher) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		items, err := lister.LowStock(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			log.Printf("low-stock: all medicines above reorder level")
			return nil
		}
		for _, m := range items {
			log.Printf("low-stock: %s has %d (reorder at %d)", m.Name, m.StockQty, m.ReorderLevel)
			events.Emit(ctx, publisher, events.StockLow, strconv.FormatInt(m.ID, 10), events.StockPayload{
				MedicineID:   m.ID,
				Name:         m.Name,
				StockQty:     m.StockQty,
				ReorderLevel: m.ReorderLevel,
			})
		}
		return nil
	}
}

// SalesExport writes the current day's CSV sales sheet into dir.
func SalesExport(db *sqlx.DB, dir string, now func() time.Time) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		path, report, err := reports.ExportDay(ctx, db, dir, now(), reports.FormatCSV)
		if err != nil {
			return err
		}
		log.Printf("sales-export: %d invoices, grand total %.2f -> %s", report.Totals.Count, report.Totals.GrandTotal, path)
		return nil
	}
}
