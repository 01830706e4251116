package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"dispensary/m/domain"
	"dispensary/m/internal/database"
	"dispensary/m/internal/ledger"
	"dispensary/m/internal/testdb"
)

func TestCreateBooksOpeningStock(t *testing.T) {
	db := testdb.Open(t)
	store := New(db)
	ctx := context.Background()

	med, err := store.Create(ctx, domain.MedicineInput{Name: "  Paracetamol 500mg ", UnitPrice: 2.5, OpeningStock: 40, ReorderLevel: 10})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if med.ID == 0 || med.Name != "Paracetamol 500mg" || !med.Active {
		t.Fatalf("unexpected medicine %+v", med)
	}

	balance, err := ledger.New(db).Balance(ctx, med.ID)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance != 40 {
		t.Errorf("ledger balance = %d, want 40", balance)
	}

	empty, err := store.Create(ctx, domain.MedicineInput{Name: "Cetirizine", UnitPrice: 1})
	if err != nil {
		t.Fatalf("Create without stock: %v", err)
	}
	if n := testdb.Count(t, db, "inventory_moves"); n != 1 {
		t.Errorf("inventory_moves = %d, want 1 (no move for %s)", n, empty.Name)
	}
}

func TestCreateRejects(t *testing.T) {
	db := testdb.Open(t)
	store := New(db)
	ctx := context.Background()

	if _, err := store.Create(ctx, domain.MedicineInput{Name: "Amoxicillin", UnitPrice: 4}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		name  string
		input domain.MedicineInput
	}{
		{name: "blank name", input: domain.MedicineInput{Name: "   ", UnitPrice: 1}},
		{name: "negative price", input: domain.MedicineInput{Name: "X", UnitPrice: -1}},
		{name: "negative opening stock", input: domain.MedicineInput{Name: "Y", UnitPrice: 1, OpeningStock: -5}},
		{name: "duplicate name", input: domain.MedicineInput{Name: "Amoxicillin", UnitPrice: 1, OpeningStock: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Create(ctx, tt.input); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("Create() = %v, want ErrInvalidInput", err)
			}
		})
	}

	if n := testdb.Count(t, db, "medicines"); n != 1 {
		t.Errorf("medicines = %d, want 1", n)
	}
	if n := testdb.Count(t, db, "inventory_moves"); n != 0 {
		t.Errorf("inventory_moves = %d, want 0", n)
	}
}

func TestUpdateKeepsStock(t *testing.T) {
	db := testdb.Open(t)
	store := New(db)
	ctx := context.Background()

	med, err := store.Create(ctx, domain.MedicineInput{Name: "Ibuprofen", UnitPrice: 3, OpeningStock: 12})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	updated, err := store.Update(ctx, med.ID, domain.MedicineUpdate{Name: "Ibuprofen 400mg", UnitPrice: 3.25, ReorderLevel: 5, Category: "analgesic"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.StockQty != 12 || updated.UnitPrice != 3.25 || updated.Category != "analgesic" {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := store.Update(ctx, 999, domain.MedicineUpdate{Name: "Ghost", UnitPrice: 1}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update unknown = %v, want ErrNotFound", err)
	}
}

func TestSetActiveAndListing(t *testing.T) {
	db := testdb.Open(t)
	store := New(db)
	ctx := context.Background()

	a, _ := store.Create(ctx, domain.MedicineInput{Name: "Aspirin", UnitPrice: 1, OpeningStock: 2, ReorderLevel: 5})
	b, _ := store.Create(ctx, domain.MedicineInput{Name: "Brufen", UnitPrice: 2, OpeningStock: 50, ReorderLevel: 5, Barcode: "8901234"})
	c, _ := store.Create(ctx, domain.MedicineInput{Name: "Calpol", UnitPrice: 3, ReorderLevel: 1})

	if err := store.SetActive(ctx, c.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if err := store.SetActive(ctx, 12345, false); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SetActive unknown = %v, want ErrNotFound", err)
	}

	active, err := store.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active = %d, want 2", len(active))
	}
	all, _ := store.List(ctx, true)
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}

	found, _ := store.Search(ctx, "bru")
	if len(found) != 1 || found[0].ID != b.ID {
		t.Errorf("Search(bru) = %+v", found)
	}
	byCode, _ := store.Search(ctx, "8901234")
	if len(byCode) != 1 || byCode[0].ID != b.ID {
		t.Errorf("Search(barcode) = %+v", byCode)
	}
	if inactive, _ := store.Search(ctx, "calpol"); len(inactive) != 0 {
		t.Errorf("Search returned inactive medicine: %+v", inactive)
	}

	low, err := store.LowStock(ctx)
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if len(low) != 1 || low[0].ID != a.ID {
		t.Errorf("LowStock = %+v, want only %s", low, a.Name)
	}

	got, err := store.Find(ctx, c.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Active {
		t.Error("Calpol should be inactive")
	}
	if _, err := store.Find(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Find unknown = %v, want ErrNotFound", err)
	}
}

func TestApplyDeltaGuard(t *testing.T) {
	db := testdb.Open(t)
	store := New(db)
	ctx := context.Background()

	med, _ := store.Create(ctx, domain.MedicineInput{Name: "Omeprazole", UnitPrice: 5, OpeningStock: 3})

	err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		locked, err := LockForUpdate(ctx, tx, []int64{med.ID, 999, med.ID})
		if err != nil {
			return err
		}
		if len(locked) != 1 {
			t.Errorf("locked = %d rows, want 1", len(locked))
		}
		_, err = ApplyDelta(ctx, tx, locked[med.ID], -4)
		return err
	})
	var stockErr *domain.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("ApplyDelta = %v, want StockError", err)
	}
	if stockErr.Available != 3 || stockErr.Requested != 4 {
		t.Errorf("StockError = %+v", stockErr)
	}

	err = database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		qty, err := ApplyDelta(ctx, tx, med, -3)
		if err == nil && qty != 0 {
			t.Errorf("qty = %d, want 0", qty)
		}
		return err
	})
	if err != nil {
		t.Fatalf("ApplyDelta to zero: %v", err)
	}
}
