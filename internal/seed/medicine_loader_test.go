package seed

import (
	"context"
	"strings"
	"testing"

	"dispensary/m/internal/ledger"
	"dispensary/m/internal/testdb"
)

const catalogCSV = `name,unit_price,stock_qty,category,reorder_level,barcode
Paracetamol 500mg,2.5,100,analgesic,20,8901001
Amoxicillin 250mg,12,40,antibiotic,10,
Broken Row,abc,5,,,
,3,3,,,
Cetirizine,1.75,,antihistamine,,
Paracetamol 500mg,9,9,duplicate,1,
`

func TestLoad(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	n, err := Load(ctx, db, strings.NewReader(catalogCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n != 3 {
		t.Errorf("loaded = %d, want 3", n)
	}
	if got := testdb.Count(t, db, "medicines"); got != 3 {
		t.Errorf("medicines = %d, want 3", got)
	}
	if got := testdb.Count(t, db, "inventory_moves"); got != 2 {
		t.Errorf("inventory_moves = %d, want 2", got)
	}

	var price float64
	db.Get(&price, `SELECT unit_price FROM medicines WHERE name = 'Paracetamol 500mg'`)
	if price != 2.5 {
		t.Errorf("duplicate row overwrote price: %v", price)
	}

	again, err := Load(ctx, db, strings.NewReader(catalogCSV))
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if again != 0 {
		t.Errorf("second load inserted %d rows", again)
	}

	if diffs, _ := ledger.New(db).Reconcile(ctx); len(diffs) != 0 {
		t.Errorf("Reconcile = %+v", diffs)
	}
}

func TestLoadMedicinesMissingFile(t *testing.T) {
	db := testdb.Open(t)
	if _, err := LoadMedicines(context.Background(), db, "does/not/exist.csv"); err == nil {
		t.Error("expected error for missing file")
	}
}
