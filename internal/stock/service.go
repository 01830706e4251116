// Package stock applies non-sale stock changes: deliveries, corrections and
// returns. Every change is booked in the ledger in the same transaction.
package stock

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"dispensary/m/domain"
	"dispensary/m/internal/catalog"
	"dispensary/m/internal/database"
	"dispensary/m/internal/events"
	"dispensary/m/internal/ledger"
)

type Service struct {
	db        *sqlx.DB
	publisher events.Publisher
	now       func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for ledger timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(db *sqlx.DB, publisher events.Publisher, opts ...Option) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	s := &Service{db: db, publisher: publisher, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AdjustStock applies delta to a medicine and returns the new stock level.
// Sales are booked by the invoice engine, so ReasonSale is refused here.
func (s *Service) AdjustStock(ctx context.Context, medicineID, delta int64, reason domain.Reason, ref string) (int64, error) {
	if delta == 0 {
		return 0, domain.Invalid("delta", "must not be zero")
	}
	if !reason.Valid() {
		return 0, domain.Invalid("reason", "unknown reason '"+string(reason)+"'")
	}
	if reason == domain.ReasonSale {
		return 0, domain.Invalid("reason", "sales are recorded through invoices")
	}
	ref = strings.TrimSpace(ref)

	var med domain.Medicine
	var newQty int64
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		locked, err := catalog.LockForUpdate(ctx, tx, []int64{medicineID})
		if err != nil {
			return err
		}
		var ok bool
		med, ok = locked[medicineID]
		if !ok {
			return &domain.ReferenceError{Entity: "medicine", ID: medicineID}
		}
		if !med.Active {
			return &domain.ReferenceError{Entity: "medicine", ID: medicineID, Name: med.Name, Inactive: true}
		}
		if newQty, err = catalog.ApplyDelta(ctx, tx, med, delta); err != nil {
			return err
		}
		return ledger.Record(ctx, tx, medicineID, delta, reason, ref, s.now())
	})
	if err != nil {
		return 0, err
	}

	events.Emit(ctx, s.publisher, events.StockAdjusted, strconv.FormatInt(medicineID, 10), events.StockPayload{
		MedicineID:   medicineID,
		Name:         med.Name,
		Delta:        delta,
		Reason:       string(reason),
		StockQty:     newQty,
		ReorderLevel: med.ReorderLevel,
	})
	return newQty, nil
}

// StockIn books received stock. An empty reason defaults to stock_in.
func (s *Service) StockIn(ctx context.Context, medicineID, qty int64, reason domain.Reason, ref string) (int64, error) {
	if qty <= 0 {
		return 0, domain.Invalid("qty", "must be greater than 0")
	}
	if reason == "" {
		reason = domain.ReasonStockIn
	}
	return s.AdjustStock(ctx, medicineID, qty, reason, ref)
}
