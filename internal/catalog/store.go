// Package catalog owns the medicines relation: catalog attributes, the
// stock snapshot, and the active flag. Medicines are never deleted.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"dispensary/m/domain"
	"dispensary/m/internal/database"
	"dispensary/m/internal/ledger"
	"dispensary/m/internal/validation"
)

const medicineColumns = `id, name, unit_price, stock_qty, reorder_level, category, barcode, active`

// OpeningStockRef marks the ledger row booked when a medicine is registered
// with stock already on the shelf.
const OpeningStockRef = "opening stock"

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Create registers a medicine. Opening stock is written together with its
// stock_in move so the ledger balances from the first row.
func (s *Store) Create(ctx context.Context, in domain.MedicineInput) (domain.Medicine, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Barcode = strings.TrimSpace(in.Barcode)
	if err := validation.Struct(in); err != nil {
		return domain.Medicine{}, err
	}

	med := domain.Medicine{
		Name:         in.Name,
		UnitPrice:    in.UnitPrice,
		StockQty:     in.OpeningStock,
		ReorderLevel: in.ReorderLevel,
		Category:     in.Category,
		Barcode:      in.Barcode,
		Active:       true,
	}
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		med.ID, err = Insert(ctx, tx, med)
		if err != nil {
			return err
		}
		if med.StockQty > 0 {
			return ledger.Record(ctx, tx, med.ID, med.StockQty, domain.ReasonStockIn, OpeningStockRef, s.now())
		}
		return nil
	})
	if err != nil {
		return domain.Medicine{}, err
	}
	return med, nil
}

// Insert writes a medicine row and returns its id. Callers own the ledger
// entry for any non-zero StockQty.
func Insert(ctx context.Context, tx sqlx.ExtContext, med domain.Medicine) (int64, error) {
	var id int64
	err := tx.QueryRowxContext(ctx, tx.Rebind(`INSERT INTO medicines (name, unit_price, stock_qty, reorder_level, category, barcode, active)
                VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		med.Name, med.UnitPrice, med.StockQty, med.ReorderLevel, med.Category, med.Barcode, med.Active).Scan(&id)
	if database.IsUniqueViolation(err) {
		return 0, domain.Invalid("name", fmt.Sprintf("medicine '%s' already exists", med.Name))
	}
	if err != nil {
		return 0, domain.Storage("insert medicine", err)
	}
	return id, nil
}

// Update edits catalog attributes. Stock only moves through the ledger.
func (s *Store) Update(ctx context.Context, id int64, in domain.MedicineUpdate) (domain.Medicine, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Barcode = strings.TrimSpace(in.Barcode)
	if err := validation.Struct(in); err != nil {
		return domain.Medicine{}, err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE medicines SET name = ?, unit_price = ?, reorder_level = ?, category = ?, barcode = ? WHERE id = ?`),
		in.Name, in.UnitPrice, in.ReorderLevel, in.Category, in.Barcode, id)
	if database.IsUniqueViolation(err) {
		return domain.Medicine{}, domain.Invalid("name", fmt.Sprintf("medicine '%s' already exists", in.Name))
	}
	if err != nil {
		return domain.Medicine{}, domain.Storage("update medicine", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Medicine{}, notFound(id)
	}
	return s.Find(ctx, id)
}

// SetActive deactivates or reactivates a medicine. Historical invoices and
// moves keep pointing at it either way.
func (s *Store) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE medicines SET active = ? WHERE id = ?`), active, id)
	if err != nil {
		return domain.Storage("set medicine active", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(id)
	}
	return nil
}

// Find returns a medicine, or ErrNotFound.
func (s *Store) Find(ctx context.Context, id int64) (domain.Medicine, error) {
	var med domain.Medicine
	err := s.db.GetContext(ctx, &med, s.db.Rebind(`SELECT `+medicineColumns+` FROM medicines WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Medicine{}, notFound(id)
	}
	if err != nil {
		return domain.Medicine{}, domain.Storage("find medicine", err)
	}
	return med, nil
}

func (s *Store) List(ctx context.Context, includeInactive bool) ([]domain.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines`
	var args []any
	if !includeInactive {
		query += ` WHERE active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY name`
	return s.selectMedicines(ctx, query, args...)
}

// Search matches active medicines by name or barcode.
func (s *Store) Search(ctx context.Context, q string) ([]domain.Medicine, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	return s.selectMedicines(ctx, `SELECT `+medicineColumns+` FROM medicines
                WHERE active = ? AND (LOWER(name) LIKE ? OR barcode = ?)
                ORDER BY name LIMIT 50`, true, like, strings.TrimSpace(q))
}

// LowStock lists active medicines at or below their reorder level, emptiest
// first.
func (s *Store) LowStock(ctx context.Context) ([]domain.Medicine, error) {
	return s.selectMedicines(ctx, `SELECT `+medicineColumns+` FROM medicines
                WHERE active = ? AND stock_qty <= reorder_level
                ORDER BY stock_qty ASC, name ASC`, true)
}

func (s *Store) selectMedicines(ctx context.Context, query string, args ...any) ([]domain.Medicine, error) {
	medicines := []domain.Medicine{}
	if err := s.db.SelectContext(ctx, &medicines, s.db.Rebind(query), args...); err != nil {
		return nil, domain.Storage("list medicines", err)
	}
	return medicines, nil
}

func notFound(id int64) error {
	return fmt.Errorf("medicine %d: %w", id, domain.ErrNotFound)
}

// Prices returns the unit prices of the active medicines among ids.
func (s *Store) Prices(ctx context.Context, ids []int64) (map[int64]float64, error) {
	prices := make(map[int64]float64, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}
	query, args, err := sqlx.In(`SELECT id, unit_price FROM medicines WHERE active = ? AND id IN (?)`, true, ids)
	if err != nil {
		return nil, domain.Storage("load prices", err)
	}
	var rows []struct {
		ID        int64   `db:"id"`
		UnitPrice float64 `db:"unit_price"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, domain.Storage("load prices", err)
	}
	for _, r := range rows {
		prices[r.ID] = r.UnitPrice
	}
	return prices, nil
}
