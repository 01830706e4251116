// Package ledger is the append-only inventory move log. Rows are only ever
// inserted, inside the same transaction that changes the stock snapshot.
package ledger

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"dispensary/m/domain"
)

// Record appends one move. It must run inside the transaction that applies
// the same delta to medicines.stock_qty.
func Record(ctx context.Context, tx sqlx.ExtContext, medicineID, delta int64, reason domain.Reason, ref string, at time.Time) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO inventory_moves (medicine_id, change_qty, reason, ref, created_at) VALUES (?, ?, ?, ?, ?)`),
		medicineID, delta, string(reason), ref, at.Format(domain.TimeLayout))
	if err != nil {
		return domain.Storage("record inventory move", err)
	}
	return nil
}

type Ledger struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

// History returns the most recent moves of a medicine, newest first.
func (l *Ledger) History(ctx context.Context, medicineID int64, limit int) ([]domain.InventoryMove, error) {
	if limit <= 0 {
		limit = 100
	}
	moves := []domain.InventoryMove{}
	err := l.db.SelectContext(ctx, &moves, l.db.Rebind(`SELECT id, medicine_id, change_qty, reason, ref, created_at
                FROM inventory_moves
                WHERE medicine_id = ?
                ORDER BY id DESC
                LIMIT ?`), medicineID, limit)
	if err != nil {
		return nil, domain.Storage("list inventory moves", err)
	}
	return moves, nil
}

// Balance is the stock a medicine should hold according to its moves.
func (l *Ledger) Balance(ctx context.Context, medicineID int64) (int64, error) {
	var balance int64
	err := l.db.GetContext(ctx, &balance, l.db.Rebind(`SELECT CAST(COALESCE(SUM(change_qty), 0) AS BIGINT) FROM inventory_moves WHERE medicine_id = ?`), medicineID)
	if err != nil {
		return 0, domain.Storage("sum inventory moves", err)
	}
	return balance, nil
}

// Reconcile lists every medicine whose snapshot differs from its ledger.
// An empty result means stock and audit trail agree.
func (l *Ledger) Reconcile(ctx context.Context) ([]domain.Discrepancy, error) {
	rows := []domain.Discrepancy{}
	err := l.db.SelectContext(ctx, &rows, `SELECT m.id AS medicine_id, m.name, m.stock_qty, CAST(COALESCE(SUM(im.change_qty), 0) AS BIGINT) AS ledger_qty
                FROM medicines m
                LEFT JOIN inventory_moves im ON im.medicine_id = m.id
                GROUP BY m.id, m.name, m.stock_qty
                HAVING m.stock_qty <> COALESCE(SUM(im.change_qty), 0)
                ORDER BY m.id`)
	if err != nil {
		return nil, domain.Storage("reconcile ledger", err)
	}
	return rows, nil
}
