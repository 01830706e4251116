package invoicing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dispensary/m/domain"
)

const invoiceColumns = `i.id, i.invoice_no, i.patient_id, i.doctor_fee, i.subtotal, i.total, i.total_items, i.created_at`

// Get returns a posted invoice with its lines and patient, as printed.
func (e *Engine) Get(ctx context.Context, id int64) (domain.InvoiceDetail, error) {
	var d domain.InvoiceDetail
	err := e.db.GetContext(ctx, &d, e.db.Rebind(`SELECT `+invoiceColumns+`,
                COALESCE(p.name, '') AS patient_name, COALESCE(p.phone, '') AS patient_phone
                FROM invoices i
                LEFT JOIN patients p ON p.id = i.patient_id
                WHERE i.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InvoiceDetail{}, fmt.Errorf("invoice %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.InvoiceDetail{}, domain.Storage("find invoice", err)
	}

	d.Lines = []domain.InvoiceLine{}
	err = e.db.SelectContext(ctx, &d.Lines, e.db.Rebind(`SELECT ii.id, ii.invoice_id, ii.medicine_id, m.name, ii.qty, ii.unit_price, ii.line_total
                FROM invoice_items ii
                JOIN medicines m ON m.id = ii.medicine_id
                WHERE ii.invoice_id = ?
                ORDER BY ii.id`), id)
	if err != nil {
		return domain.InvoiceDetail{}, domain.Storage("list invoice items", err)
	}
	return d, nil
}

// ListByPatient returns a patient's invoices, newest first.
func (e *Engine) ListByPatient(ctx context.Context, patientID int64) ([]domain.Invoice, error) {
	list := []domain.Invoice{}
	err := e.db.SelectContext(ctx, &list, e.db.Rebind(`SELECT `+invoiceColumns+`
                FROM invoices i
                WHERE i.patient_id = ?
                ORDER BY i.created_at DESC, i.id DESC`), patientID)
	if err != nil {
		return nil, domain.Storage("list patient invoices", err)
	}
	return list, nil
}
