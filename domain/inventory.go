package domain

// Reason tags an inventory move.
type Reason string

const (
	ReasonSale       Reason = "sale"
	ReasonStockIn    Reason = "stock_in"
	ReasonAdjustment Reason = "adjustment"
	ReasonReturn     Reason = "return"
)

// Valid reports whether r is part of the ledger vocabulary.
func (r Reason) Valid() bool {
	switch r {
	case ReasonSale, ReasonStockIn, ReasonAdjustment, ReasonReturn:
		return true
	}
	return false
}

// InventoryMove is one append-only ledger row. ChangeQty is signed:
// positive for stock received, negative for consumption.
type InventoryMove struct {
	ID         int64  `db:"id" json:"id"`
	MedicineID int64  `db:"medicine_id" json:"medicine_id"`
	ChangeQty  int64  `db:"change_qty" json:"change_qty"`
	Reason     Reason `db:"reason" json:"reason"`
	Ref        string `db:"ref" json:"ref"`
	CreatedAt  string `db:"created_at" json:"created_at"`
}

// Discrepancy is a medicine whose stock snapshot disagrees with its ledger.
type Discrepancy struct {
	MedicineID int64  `db:"medicine_id" json:"medicine_id"`
	Name       string `db:"name" json:"name"`
	StockQty   int64  `db:"stock_qty" json:"stock_qty"`
	LedgerQty  int64  `db:"ledger_qty" json:"ledger_qty"`
}
