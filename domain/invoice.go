package domain

// TimeLayout is how timestamps are persisted. Lexical order equals
// chronological order, which the report queries rely on.
const TimeLayout = "2006-01-02 15:04:05"

type Invoice struct {
	ID         int64   `db:"id" json:"id"`
	InvoiceNo  string  `db:"invoice_no" json:"invoice_no"`
	PatientID  *int64  `db:"patient_id" json:"patient_id,omitempty"`
	DoctorFee  float64 `db:"doctor_fee" json:"doctor_fee"`
	Subtotal   float64 `db:"subtotal" json:"subtotal"`
	Total      float64 `db:"total" json:"total"`
	TotalItems int64   `db:"total_items" json:"total_items"`
	CreatedAt  string  `db:"created_at" json:"created_at"`
}

type InvoiceLine struct {
	ID         int64   `db:"id" json:"id"`
	InvoiceID  int64   `db:"invoice_id" json:"invoice_id"`
	MedicineID int64   `db:"medicine_id" json:"medicine_id"`
	Name       string  `db:"name" json:"name"`
	Qty        int64   `db:"qty" json:"qty"`
	UnitPrice  float64 `db:"unit_price" json:"unit_price"`
	LineTotal  float64 `db:"line_total" json:"line_total"`
}

// CartItem is a client-proposed line. UnitPrice is whatever the client last
// saw; it only feeds previews and is never used for billing.
type CartItem struct {
	MedicineID int64   `json:"medicine_id" validate:"gt=0"`
	Qty        int64   `json:"qty" validate:"gt=0"`
	UnitPrice  float64 `json:"unit_price,omitempty"`
}

type InvoiceRequest struct {
	Items     []CartItem `json:"items" validate:"required,min=1,dive"`
	PatientID *int64     `json:"patient_id,omitempty"`
	DoctorFee float64    `json:"doctor_fee" validate:"gte=0"`
}

type InvoiceResult struct {
	InvoiceID  int64   `json:"invoice_id"`
	InvoiceNo  string  `json:"invoice_no"`
	Subtotal   float64 `json:"subtotal"`
	Total      float64 `json:"total"`
	TotalItems int64   `json:"total_items"`
}

// InvoiceDetail is an invoice with its lines and patient, as printed.
type InvoiceDetail struct {
	Invoice
	PatientName  string        `db:"patient_name" json:"patient_name"`
	PatientPhone string        `db:"patient_phone" json:"patient_phone"`
	Lines        []InvoiceLine `json:"lines"`
}

// PatientLabel returns the patient name, or Walk-in for anonymous sales.
func (d InvoiceDetail) PatientLabel() string {
	if d.PatientName == "" {
		return "Walk-in"
	}
	return d.PatientName
}
