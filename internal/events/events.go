// Package events announces committed changes to other systems. Publishing
// always happens after the database transaction has committed, so a failed
// publish never undoes a sale or an adjustment.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	InvoicePosted = "invoice.posted"
	StockAdjusted = "stock.adjusted"
	StockLow      = "stock.low"
)

// Event is the envelope written to the bus.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Key        string          `json:"-"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// New builds an event for the aggregate identified by key.
func New(eventType, key string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, ...Event) error { return nil }
func (Noop) Close() error                            { return nil }

// Emit builds and publishes one event, logging instead of returning errors.
// Callers use it after commit, where there is nothing left to roll back.
func Emit(ctx context.Context, p Publisher, eventType, key string, payload any) {
	if p == nil {
		return
	}
	ev, err := New(eventType, key, payload)
	if err != nil {
		log.Printf("events: %v", err)
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Printf("events: publish %s %s: %v", eventType, key, err)
	}
}

// InvoicePostedPayload is the body of an invoice.posted event.
type InvoicePostedPayload struct {
	InvoiceID  int64   `json:"invoice_id"`
	InvoiceNo  string  `json:"invoice_no"`
	PatientID  *int64  `json:"patient_id,omitempty"`
	Total      float64 `json:"total"`
	TotalItems int64   `json:"total_items"`
}

// StockPayload is the body of stock.adjusted and stock.low events.
type StockPayload struct {
	MedicineID   int64  `json:"medicine_id"`
	Name         string `json:"name"`
	Delta        int64  `json:"delta,omitempty"`
	Reason       string `json:"reason,omitempty"`
	StockQty     int64  `json:"stock_qty"`
	ReorderLevel int64  `json:"reorder_level,omitempty"`
}
