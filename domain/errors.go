package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is; the typed errors below
// carry the details needed to show the failure to a user.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidReference       = errors.New("invalid reference")
	ErrInactiveEntity         = errors.New("inactive entity")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrDuplicateInvoiceNumber = errors.New("duplicate invoice number")
	ErrStorageFailure         = errors.New("storage failure")
	ErrNotFound               = errors.New("not found")
)

// InputError is a malformed or missing field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// Invalid builds an InputError.
func Invalid(field, reason string) error {
	return &InputError{Field: field, Reason: reason}
}

// ReferenceError is an unknown or inactive patient or medicine.
type ReferenceError struct {
	Entity   string
	ID       int64
	Name     string
	Inactive bool
}

func (e *ReferenceError) Error() string {
	if e.Inactive {
		if e.Name != "" {
			return fmt.Sprintf("%s '%s' is inactive", e.Entity, e.Name)
		}
		return fmt.Sprintf("%s %d is inactive", e.Entity, e.ID)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *ReferenceError) Unwrap() error { return ErrInvalidReference }

func (e *ReferenceError) Is(target error) bool {
	return target == ErrInactiveEntity && e.Inactive
}

// StockError reports a quantity that would drive stock below zero.
type StockError struct {
	MedicineID int64
	Name       string
	Available  int64
	Requested  int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. available: %d, requested: %d", e.Name, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// Storage wraps a driver error as a StorageFailure, keeping the cause.
func Storage(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageFailure, err)
}
