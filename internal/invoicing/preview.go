package invoicing

import (
	"context"

	"dispensary/m/domain"
	"dispensary/m/internal/billing"
)

// PriceSource resolves current unit prices of active medicines. Missing ids
// are unknown or inactive.
type PriceSource interface {
	Prices(ctx context.Context, ids []int64) (map[int64]float64, error)
}

type PreviewLine struct {
	MedicineID   int64   `json:"medicine_id"`
	Qty          int64   `json:"qty"`
	UnitPrice    float64 `json:"unit_price"`
	LineTotal    float64 `json:"line_total"`
	CatalogPrice float64 `json:"catalog_price"`
	PriceChanged bool    `json:"price_changed"`
}

type Preview struct {
	Lines      []PreviewLine `json:"lines"`
	Subtotal   float64       `json:"subtotal"`
	DoctorFee  float64       `json:"doctor_fee"`
	Total      float64       `json:"total"`
	TotalItems int64         `json:"total_items"`
}

// PreviewCart prices a cart without touching stock. A client price, when
// given, is shown as-is and flagged if the catalog has since changed; the
// posted invoice always uses the catalog price.
func PreviewCart(ctx context.Context, prices PriceSource, req domain.InvoiceRequest) (Preview, error) {
	if err := validateRequest(req); err != nil {
		return Preview{}, err
	}
	ids := make([]int64, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.MedicineID
	}
	current, err := prices.Prices(ctx, ids)
	if err != nil {
		return Preview{}, err
	}

	out := Preview{Lines: make([]PreviewLine, len(req.Items))}
	lines := make([]billing.Line, len(req.Items))
	for i, item := range req.Items {
		catalogPrice, ok := current[item.MedicineID]
		if !ok {
			return Preview{}, &domain.ReferenceError{Entity: "medicine", ID: item.MedicineID}
		}
		price := catalogPrice
		if item.UnitPrice > 0 {
			price = item.UnitPrice
		}
		lines[i] = billing.Line{Qty: item.Qty, UnitPrice: price}
		out.Lines[i] = PreviewLine{
			MedicineID:   item.MedicineID,
			Qty:          item.Qty,
			UnitPrice:    price,
			CatalogPrice: catalogPrice,
			PriceChanged: price != catalogPrice,
		}
	}

	totals := billing.Compute(lines, req.DoctorFee)
	for i := range out.Lines {
		out.Lines[i].LineTotal = totals.LineTotals[i]
	}
	out.Subtotal = totals.Subtotal
	out.DoctorFee = totals.DoctorFee
	out.Total = totals.GrandTotal
	out.TotalItems = totals.TotalItems
	return out, nil
}

