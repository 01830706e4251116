package catalog

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	"github.com/jmoiron/sqlx"

	"dispensary/m/domain"
	"dispensary/m/internal/database"
)

// LockForUpdate loads the given medicines inside tx. On PostgreSQL the rows
// are locked in ascending id order so two carts touching the same medicines
// cannot deadlock. Unknown ids are simply absent from the result.
func LockForUpdate(ctx context.Context, tx sqlx.ExtContext, ids []int64) (map[int64]domain.Medicine, error) {
	found := make(map[int64]domain.Medicine, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	query, args, err := sqlx.In(`SELECT `+medicineColumns+` FROM medicines WHERE id IN (?) ORDER BY id`+database.ForUpdate(tx), sorted)
	if err != nil {
		return nil, domain.Storage("lock medicines", err)
	}
	var rows []domain.Medicine
	if err := sqlx.SelectContext(ctx, tx, &rows, tx.Rebind(query), args...); err != nil {
		return nil, domain.Storage("lock medicines", err)
	}
	for _, m := range rows {
		found[m.ID] = m
	}
	return found, nil
}

// ApplyDelta moves the stock snapshot of one medicine by delta and returns
// the new quantity. The update is guarded, so a delta that would go below
// zero changes nothing and yields a StockError.
func ApplyDelta(ctx context.Context, tx sqlx.ExtContext, med domain.Medicine, delta int64) (int64, error) {
	var qty int64
	err := tx.QueryRowxContext(ctx, tx.Rebind(`UPDATE medicines SET stock_qty = stock_qty + ?
                WHERE id = ? AND stock_qty + ? >= 0
                RETURNING stock_qty`), delta, med.ID, delta).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		requested := delta
		if requested < 0 {
			requested = -requested
		}
		return 0, &domain.StockError{MedicineID: med.ID, Name: med.Name, Available: med.StockQty, Requested: requested}
	}
	if err != nil {
		return 0, domain.Storage("update stock", err)
	}
	return qty, nil
}
