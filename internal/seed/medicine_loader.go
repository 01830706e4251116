package seed

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"dispensary/m/domain"
	"dispensary/m/internal/catalog"
	"dispensary/m/internal/database"
	"dispensary/m/internal/ledger"
)

// LoadMedicines ingests the CSV into the medicines table, ignoring names
// already in the catalog. Columns: name, unit_price, stock_qty, category,
// reorder_level, barcode. Opening stock is booked in the ledger.
func LoadMedicines(ctx context.Context, db *sqlx.DB, csvPath string) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("unable to load medicine catalog %s: %w", csvPath, err)
	}
	defer file.Close()
	return Load(ctx, db, file)
}

// Load reads catalog rows from r. Malformed rows are logged and skipped.
func Load(ctx context.Context, db *sqlx.DB, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("unable to read medicine header: %w", err)
	}

	now := time.Now()
	rows := 0
	err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO medicines (name, unit_price, stock_qty, category, reorder_level, barcode, active)
                VALUES (?, ?, ?, ?, ?, ?, ?)
                ON CONFLICT (name) DO NOTHING
                RETURNING id`))
		if err != nil {
			return domain.Storage("prepare medicine insert", err)
		}
		defer stmt.Close()

		line := 1
		for {
			record, err := reader.Read()
			line++
			if err == io.EOF {
				break
			}
			if err != nil {
				log.Printf("unable to read medicine row %d: %v", line, err)
				continue
			}
			med, err := parseRecord(record)
			if err != nil {
				log.Printf("skipping medicine row %d: %v", line, err)
				continue
			}

			var id int64
			err = stmt.QueryRowxContext(ctx, med.Name, med.UnitPrice, med.StockQty, med.Category, med.ReorderLevel, med.Barcode, true).Scan(&id)
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			if err != nil {
				return domain.Storage("insert medicine "+med.Name, err)
			}
			if med.StockQty > 0 {
				if err := ledger.Record(ctx, tx, id, med.StockQty, domain.ReasonStockIn, catalog.OpeningStockRef, now); err != nil {
					return err
				}
			}
			rows++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Printf("seeded medicine catalog with %d rows", rows)
	return rows, nil
}

func parseRecord(record []string) (domain.Medicine, error) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	med := domain.Medicine{Name: field(0), Category: field(3), Barcode: field(5)}
	if med.Name == "" {
		return med, errors.New("missing name")
	}
	price, err := strconv.ParseFloat(field(1), 64)
	if err != nil || price < 0 {
		return med, fmt.Errorf("invalid unit_price %q", field(1))
	}
	med.UnitPrice = price
	if med.StockQty, err = parseCount(field(2)); err != nil {
		return med, fmt.Errorf("invalid stock_qty %q", field(2))
	}
	if med.ReorderLevel, err = parseCount(field(4)); err != nil {
		return med, fmt.Errorf("invalid reorder_level %q", field(4))
	}
	return med, nil
}

// parseCount reads an optional non-negative integer; empty means zero.
func parseCount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.New("not a non-negative integer")
	}
	return n, nil
}
