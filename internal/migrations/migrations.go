package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the dispensary schema for the connected driver.
func Run(db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "pgx" {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS medicines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE,
            unit_price REAL NOT NULL CHECK(unit_price >= 0),
            stock_qty INTEGER NOT NULL DEFAULT 0 CHECK(stock_qty >= 0),
            reorder_level INTEGER NOT NULL DEFAULT 0,
            category TEXT NOT NULL DEFAULT '',
            barcode TEXT NOT NULL DEFAULT '',
            active INTEGER NOT NULL DEFAULT 1
        );`,
	`CREATE TABLE IF NOT EXISTS patients (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            age INTEGER,
            gender TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            active INTEGER NOT NULL DEFAULT 1
        );`,
	`CREATE TABLE IF NOT EXISTS invoices (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            invoice_no TEXT NOT NULL UNIQUE,
            patient_id INTEGER,
            doctor_fee REAL NOT NULL DEFAULT 0 CHECK(doctor_fee >= 0),
            subtotal REAL NOT NULL DEFAULT 0 CHECK(subtotal >= 0),
            total REAL NOT NULL DEFAULT 0 CHECK(total >= 0),
            total_items INTEGER NOT NULL DEFAULT 0,
            created_at TEXT NOT NULL,
            FOREIGN KEY(patient_id) REFERENCES patients(id)
        );`,
	`CREATE TABLE IF NOT EXISTS invoice_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            invoice_id INTEGER NOT NULL,
            medicine_id INTEGER NOT NULL,
            qty INTEGER NOT NULL CHECK(qty > 0),
            unit_price REAL NOT NULL CHECK(unit_price >= 0),
            line_total REAL NOT NULL CHECK(line_total >= 0),
            FOREIGN KEY(invoice_id) REFERENCES invoices(id) ON DELETE CASCADE,
            FOREIGN KEY(medicine_id) REFERENCES medicines(id)
        );`,
	`CREATE TABLE IF NOT EXISTS inventory_moves (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            medicine_id INTEGER NOT NULL,
            change_qty INTEGER NOT NULL,
            reason TEXT NOT NULL,
            ref TEXT NOT NULL DEFAULT '',
            created_at TEXT NOT NULL,
            FOREIGN KEY(medicine_id) REFERENCES medicines(id)
        );`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_created_at ON invoices(created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_patient ON invoices(patient_id);`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items(invoice_id);`,
	`CREATE INDEX IF NOT EXISTS idx_moves_med_created ON inventory_moves(medicine_id, created_at);`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS medicines (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL UNIQUE,
            unit_price DOUBLE PRECISION NOT NULL CHECK(unit_price >= 0),
            stock_qty BIGINT NOT NULL DEFAULT 0 CHECK(stock_qty >= 0),
            reorder_level BIGINT NOT NULL DEFAULT 0,
            category TEXT NOT NULL DEFAULT '',
            barcode TEXT NOT NULL DEFAULT '',
            active BOOLEAN NOT NULL DEFAULT TRUE
        );`,
	`CREATE TABLE IF NOT EXISTS patients (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            age BIGINT,
            gender TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            active BOOLEAN NOT NULL DEFAULT TRUE
        );`,
	`CREATE TABLE IF NOT EXISTS invoices (
            id SERIAL PRIMARY KEY,
            invoice_no TEXT NOT NULL UNIQUE,
            patient_id INTEGER REFERENCES patients(id),
            doctor_fee DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK(doctor_fee >= 0),
            subtotal DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK(subtotal >= 0),
            total DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK(total >= 0),
            total_items BIGINT NOT NULL DEFAULT 0,
            created_at TEXT NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS invoice_items (
            id SERIAL PRIMARY KEY,
            invoice_id INTEGER NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
            medicine_id INTEGER NOT NULL REFERENCES medicines(id),
            qty BIGINT NOT NULL CHECK(qty > 0),
            unit_price DOUBLE PRECISION NOT NULL CHECK(unit_price >= 0),
            line_total DOUBLE PRECISION NOT NULL CHECK(line_total >= 0)
        );`,
	`CREATE TABLE IF NOT EXISTS inventory_moves (
            id SERIAL PRIMARY KEY,
            medicine_id INTEGER NOT NULL REFERENCES medicines(id),
            change_qty BIGINT NOT NULL,
            reason TEXT NOT NULL,
            ref TEXT NOT NULL DEFAULT '',
            created_at TEXT NOT NULL
        );`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_created_at ON invoices(created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_patient ON invoices(patient_id);`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items(invoice_id);`,
	`CREATE INDEX IF NOT EXISTS idx_moves_med_created ON inventory_moves(medicine_id, created_at);`,
}
