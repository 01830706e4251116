package invoicing

import (
	"context"
	"errors"
	"testing"

	"dispensary/m/domain"
)

type staticPrices map[int64]float64

func (s staticPrices) Prices(_ context.Context, ids []int64) (map[int64]float64, error) {
	out := make(map[int64]float64)
	for _, id := range ids {
		if p, ok := s[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func TestPreviewCart(t *testing.T) {
	prices := staticPrices{1: 2.675, 2: 10}

	got, err := PreviewCart(context.Background(), prices, domain.InvoiceRequest{
		Items:     []domain.CartItem{{MedicineID: 1, Qty: 1}, {MedicineID: 2, Qty: 2, UnitPrice: 9.5}},
		DoctorFee: 20,
	})
	if err != nil {
		t.Fatalf("PreviewCart: %v", err)
	}
	if got.Subtotal != 21.68 || got.Total != 41.68 || got.TotalItems != 3 {
		t.Errorf("preview = %+v", got)
	}
	if got.Lines[0].PriceChanged || !got.Lines[1].PriceChanged {
		t.Errorf("price flags = %v %v", got.Lines[0].PriceChanged, got.Lines[1].PriceChanged)
	}
	if got.Lines[1].CatalogPrice != 10 || got.Lines[1].LineTotal != 19 {
		t.Errorf("line 2 = %+v", got.Lines[1])
	}

	if _, err := PreviewCart(context.Background(), prices, domain.InvoiceRequest{Items: []domain.CartItem{{MedicineID: 3, Qty: 1}}}); !errors.Is(err, domain.ErrInvalidReference) {
		t.Errorf("unknown medicine = %v", err)
	}
	if _, err := PreviewCart(context.Background(), prices, domain.InvoiceRequest{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty cart = %v", err)
	}
}

func TestPreviewMatchesPostedTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.medicine(t, "A", 1.005, 10)
	b := f.medicine(t, "B", 3.333, 10)
	req := domain.InvoiceRequest{Items: []domain.CartItem{{MedicineID: a.ID, Qty: 3}, {MedicineID: b.ID, Qty: 7}}, DoctorFee: 12.5}

	preview, err := PreviewCart(ctx, f.catalog, req)
	if err != nil {
		t.Fatalf("PreviewCart: %v", err)
	}
	posted, err := f.engine.PostInvoice(ctx, req)
	if err != nil {
		t.Fatalf("PostInvoice: %v", err)
	}
	if preview.Subtotal != posted.Subtotal || preview.Total != posted.Total {
		t.Errorf("preview %v/%v, posted %v/%v", preview.Subtotal, preview.Total, posted.Subtotal, posted.Total)
	}
}
