// Package patients manages the patient registry. Patients are soft-deleted
// through the active flag so their invoices keep resolving.
package patients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"dispensary/m/domain"
	"dispensary/m/internal/validation"
)

const patientColumns = `id, name, age, gender, phone, address, active`

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func normalize(in domain.PatientInput) domain.PatientInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	return in
}

func (s *Store) Create(ctx context.Context, in domain.PatientInput) (domain.Patient, error) {
	in = normalize(in)
	if err := validation.Struct(in); err != nil {
		return domain.Patient{}, err
	}

	p := domain.Patient{Name: in.Name, Age: in.Age, Gender: in.Gender, Phone: in.Phone, Address: in.Address, Active: true}
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`INSERT INTO patients (name, age, gender, phone, address, active)
                VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		p.Name, p.Age, p.Gender, p.Phone, p.Address, p.Active).Scan(&p.ID)
	if err != nil {
		return domain.Patient{}, domain.Storage("insert patient", err)
	}
	return p, nil
}

func (s *Store) Update(ctx context.Context, id int64, in domain.PatientInput) (domain.Patient, error) {
	in = normalize(in)
	if err := validation.Struct(in); err != nil {
		return domain.Patient{}, err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE patients SET name = ?, age = ?, gender = ?, phone = ?, address = ? WHERE id = ?`),
		in.Name, in.Age, in.Gender, in.Phone, in.Address, id)
	if err != nil {
		return domain.Patient{}, domain.Storage("update patient", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Patient{}, notFound(id)
	}
	return s.Find(ctx, id)
}

func (s *Store) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE patients SET active = ? WHERE id = ?`), active, id)
	if err != nil {
		return domain.Storage("set patient active", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, id int64) (domain.Patient, error) {
	var p domain.Patient
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`SELECT `+patientColumns+` FROM patients WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Patient{}, notFound(id)
	}
	if err != nil {
		return domain.Patient{}, domain.Storage("find patient", err)
	}
	return p, nil
}

func (s *Store) List(ctx context.Context, includeInactive bool) ([]domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients`
	var args []any
	if !includeInactive {
		query += ` WHERE active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY name, id`
	return s.selectPatients(ctx, query, args...)
}

// Search matches active patients by name or phone.
func (s *Store) Search(ctx context.Context, q string) ([]domain.Patient, error) {
	q = strings.TrimSpace(q)
	like := "%" + strings.ToLower(q) + "%"
	return s.selectPatients(ctx, `SELECT `+patientColumns+` FROM patients
                WHERE active = ? AND (LOWER(name) LIKE ? OR phone LIKE ?)
                ORDER BY name, id LIMIT 50`, true, like, "%"+q+"%")
}

func (s *Store) selectPatients(ctx context.Context, query string, args ...any) ([]domain.Patient, error) {
	list := []domain.Patient{}
	if err := s.db.SelectContext(ctx, &list, s.db.Rebind(query), args...); err != nil {
		return nil, domain.Storage("list patients", err)
	}
	return list, nil
}

// Resolve checks that id names an active patient, reading through q so it
// can run inside an invoice transaction.
func Resolve(ctx context.Context, q sqlx.ExtContext, id int64) (domain.Patient, error) {
	var p domain.Patient
	err := sqlx.GetContext(ctx, q, &p, q.Rebind(`SELECT `+patientColumns+` FROM patients WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Patient{}, &domain.ReferenceError{Entity: "patient", ID: id}
	}
	if err != nil {
		return domain.Patient{}, domain.Storage("resolve patient", err)
	}
	if !p.Active {
		return domain.Patient{}, &domain.ReferenceError{Entity: "patient", ID: id, Name: p.Name, Inactive: true}
	}
	return p, nil
}

func notFound(id int64) error {
	return fmt.Errorf("patient %d: %w", id, domain.ErrNotFound)
}
