package domain

type Medicine struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	UnitPrice    float64 `db:"unit_price" json:"unit_price"`
	StockQty     int64   `db:"stock_qty" json:"stock_qty"`
	ReorderLevel int64   `db:"reorder_level" json:"reorder_level"`
	Category     string  `db:"category" json:"category"`
	Barcode      string  `db:"barcode" json:"barcode"`
	Active       bool    `db:"active" json:"active"`
}

// LowStock reports whether the medicine is at or below its reorder level.
func (m Medicine) LowStock() bool {
	return m.StockQty <= m.ReorderLevel
}

// MedicineInput is the payload for registering a medicine. OpeningStock is
// booked through the ledger, never written to the snapshot alone.
type MedicineInput struct {
	Name         string  `json:"name" validate:"required,max=200"`
	UnitPrice    float64 `json:"unit_price" validate:"gte=0"`
	OpeningStock int64   `json:"opening_stock" validate:"gte=0"`
	ReorderLevel int64   `json:"reorder_level" validate:"gte=0"`
	Category     string  `json:"category" validate:"max=100"`
	Barcode      string  `json:"barcode" validate:"max=64"`
}

// MedicineUpdate edits catalog attributes. Stock is deliberately absent.
type MedicineUpdate struct {
	Name         string  `json:"name" validate:"required,max=200"`
	UnitPrice    float64 `json:"unit_price" validate:"gte=0"`
	ReorderLevel int64   `json:"reorder_level" validate:"gte=0"`
	Category     string  `json:"category" validate:"max=100"`
	Barcode      string  `json:"barcode" validate:"max=64"`
}
