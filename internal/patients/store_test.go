package patients

import (
	"context"
	"errors"
	"testing"

	"dispensary/m/domain"
	"dispensary/m/internal/testdb"
)

func TestCreateAndUpdate(t *testing.T) {
	db := testdb.Open(t)
	store := New(db)
	ctx := context.Background()

	age := int64(34)
	p, err := store.Create(ctx, domain.PatientInput{Name: " Sara Khan ", Age: &age, Phone: "0300-1234567"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == 0 || p.Name != "Sara Khan" || !p.Active {
		t.Fatalf("unexpected patient %+v", p)
	}

	got, err := store.Find(ctx, p.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Age == nil || *got.Age != 34 {
		t.Errorf("Age = %v, want 34", got.Age)
	}

	updated, err := store.Update(ctx, p.ID, domain.PatientInput{Name: "Sara K.", Address: "Block 4"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Age != nil || updated.Address != "Block 4" || updated.Phone != "" {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := store.Create(ctx, domain.PatientInput{Name: ""}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Create blank = %v, want ErrInvalidInput", err)
	}
	if _, err := store.Update(ctx, 404, domain.PatientInput{Name: "Nobody"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update unknown = %v, want ErrNotFound", err)
	}
}

func TestResolve(t *testing.T) {
	db := testdb.Open(t)
	store := New(db)
	ctx := context.Background()

	active, _ := store.Create(ctx, domain.PatientInput{Name: "Active"})
	retired, _ := store.Create(ctx, domain.PatientInput{Name: "Retired"})
	if err := store.SetActive(ctx, retired.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	if _, err := Resolve(ctx, db, active.ID); err != nil {
		t.Errorf("Resolve active = %v", err)
	}

	_, err := Resolve(ctx, db, retired.ID)
	if !errors.Is(err, domain.ErrInvalidReference) || !errors.Is(err, domain.ErrInactiveEntity) {
		t.Errorf("Resolve inactive = %v", err)
	}
	if err.Error() != "patient 'Retired' is inactive" {
		t.Errorf("message = %q", err.Error())
	}

	_, err = Resolve(ctx, db, 999)
	if !errors.Is(err, domain.ErrInvalidReference) || errors.Is(err, domain.ErrInactiveEntity) {
		t.Errorf("Resolve unknown = %v", err)
	}
}

func TestListAndSearch(t *testing.T) {
	db := testdb.Open(t)
	store := New(db)
	ctx := context.Background()

	store.Create(ctx, domain.PatientInput{Name: "Bilal", Phone: "0311"})
	zara, _ := store.Create(ctx, domain.PatientInput{Name: "Zara", Phone: "0322"})
	hidden, _ := store.Create(ctx, domain.PatientInput{Name: "Zahid"})
	store.SetActive(ctx, hidden.ID, false)

	list, err := store.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Bilal" {
		t.Errorf("List = %+v", list)
	}
	if all, _ := store.List(ctx, true); len(all) != 3 {
		t.Errorf("List(all) = %d, want 3", len(all))
	}

	found, err := store.Search(ctx, "za")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || found[0].ID != zara.ID {
		t.Errorf("Search(za) = %+v", found)
	}
	if byPhone, _ := store.Search(ctx, "0311"); len(byPhone) != 1 {
		t.Errorf("Search(phone) = %+v", byPhone)
	}
}
