// Package invoicing posts sales. PostInvoice is the only path that sells
// stock: it prices the cart from the catalog, then writes the invoice, its
// lines, the stock decrements and the ledger rows in one transaction.
package invoicing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"dispensary/m/domain"
	"dispensary/m/internal/billing"
	"dispensary/m/internal/catalog"
	"dispensary/m/internal/database"
	"dispensary/m/internal/events"
	"dispensary/m/internal/ledger"
	"dispensary/m/internal/patients"
	"dispensary/m/internal/validation"
)

// maxAttempts bounds how often a colliding invoice number is retried before
// the post is reported as a storage failure.
const maxAttempts = 3

type Engine struct {
	db        *sqlx.DB
	publisher events.Publisher
	now       func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now for invoice numbers and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(db *sqlx.DB, publisher events.Publisher, opts ...Option) *Engine {
	if publisher == nil {
		publisher = events.Noop{}
	}
	e := &Engine{db: db, publisher: publisher, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PostInvoice validates and commits a sale. Any failure leaves no invoice,
// no line, no stock change and no ledger row behind.
func (e *Engine) PostInvoice(ctx context.Context, req domain.InvoiceRequest) (domain.InvoiceResult, error) {
	if err := validateRequest(req); err != nil {
		return domain.InvoiceResult{}, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := e.post(ctx, req, attempt)
		if err == nil {
			events.Emit(ctx, e.publisher, events.InvoicePosted, res.InvoiceNo, events.InvoicePostedPayload{
				InvoiceID:  res.InvoiceID,
				InvoiceNo:  res.InvoiceNo,
				PatientID:  req.PatientID,
				Total:      res.Total,
				TotalItems: res.TotalItems,
			})
			return res, nil
		}
		if !errors.Is(err, domain.ErrDuplicateInvoiceNumber) {
			return domain.InvoiceResult{}, err
		}
		log.Printf("invoice number collision (attempt %d/%d): %v", attempt, maxAttempts, err)
		lastErr = err
	}
	return domain.InvoiceResult{}, domain.Storage("allocate invoice number", lastErr)
}

func validateRequest(req domain.InvoiceRequest) error {
	if math.IsNaN(req.DoctorFee) || math.IsInf(req.DoctorFee, 0) {
		return domain.Invalid("doctor_fee", "must be a finite amount")
	}
	return validation.Struct(req)
}

func (e *Engine) post(ctx context.Context, req domain.InvoiceRequest, attempt int) (domain.InvoiceResult, error) {
	var res domain.InvoiceResult
	err := database.InTx(ctx, e.db, func(tx *sqlx.Tx) error {
		if req.PatientID != nil {
			if _, err := patients.Resolve(ctx, tx, *req.PatientID); err != nil {
				return err
			}
		}

		ids := make([]int64, len(req.Items))
		for i, item := range req.Items {
			ids[i] = item.MedicineID
		}
		locked, err := catalog.LockForUpdate(ctx, tx, ids)
		if err != nil {
			return err
		}

		// Lines naming the same medicine are checked against its stock together.
		meds := make([]domain.Medicine, len(req.Items))
		lines := make([]billing.Line, len(req.Items))
		wanted := make(map[int64]int64, len(locked))
		for i, item := range req.Items {
			med, ok := locked[item.MedicineID]
			if !ok {
				return &domain.ReferenceError{Entity: "medicine", ID: item.MedicineID}
			}
			if !med.Active {
				return &domain.ReferenceError{Entity: "medicine", ID: med.ID, Name: med.Name, Inactive: true}
			}
			wanted[med.ID] += item.Qty
			if wanted[med.ID] > med.StockQty {
				return &domain.StockError{MedicineID: med.ID, Name: med.Name, Available: med.StockQty, Requested: wanted[med.ID]}
			}
			meds[i] = med
			lines[i] = billing.Line{Qty: item.Qty, UnitPrice: med.UnitPrice}
		}
		totals := billing.Compute(lines, req.DoctorFee)

		now := e.now()
		invoiceNo, err := nextInvoiceNo(ctx, tx, now, attempt)
		if err != nil {
			return err
		}

		var invoiceID int64
		err = tx.QueryRowxContext(ctx, tx.Rebind(`INSERT INTO invoices (invoice_no, patient_id, doctor_fee, subtotal, total, total_items, created_at)
                        VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
			invoiceNo, req.PatientID, totals.DoctorFee, totals.Subtotal, totals.GrandTotal, totals.TotalItems, now.Format(domain.TimeLayout)).Scan(&invoiceID)
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w", invoiceNo, domain.ErrDuplicateInvoiceNumber)
		}
		if err != nil {
			return domain.Storage("insert invoice", err)
		}

		for i, med := range meds {
			qty := lines[i].Qty
			if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO invoice_items (invoice_id, medicine_id, qty, unit_price, line_total) VALUES (?, ?, ?, ?, ?)`),
				invoiceID, med.ID, qty, med.UnitPrice, totals.LineTotals[i]); err != nil {
				return domain.Storage("insert invoice item", err)
			}
			if _, err := catalog.ApplyDelta(ctx, tx, med, -qty); err != nil {
				return err
			}
			if err := ledger.Record(ctx, tx, med.ID, -qty, domain.ReasonSale, invoiceNo, now); err != nil {
				return err
			}
		}

		res = domain.InvoiceResult{
			InvoiceID:  invoiceID,
			InvoiceNo:  invoiceNo,
			Subtotal:   totals.Subtotal,
			Total:      totals.GrandTotal,
			TotalItems: totals.TotalItems,
		}
		return nil
	})
	return res, err
}

// nextInvoiceNo returns INV-YYYYMMDD-HHMMSS, or the same base with a -NN
// suffix when invoices were already numbered within that second. Each retry
// skips one more suffix so a gap left by a concurrent writer is stepped over.
func nextInvoiceNo(ctx context.Context, tx sqlx.ExtContext, now time.Time, attempt int) (string, error) {
	base := "INV-" + now.Format("20060102-150405")
	var n int
	err := sqlx.GetContext(ctx, tx, &n, tx.Rebind(`SELECT COUNT(*) FROM invoices WHERE invoice_no = ? OR invoice_no LIKE ?`), base, base+"-%")
	if err != nil {
		return "", domain.Storage("count invoice numbers", err)
	}
	seq := n + attempt - 1
	if seq == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s-%02d", base, seq+1), nil
}
