// Package billing computes invoice totals. Previews and posted invoices both
// go through Compute so they round identically.
package billing

import "github.com/shopspring/decimal"

// Line is a quantity at a unit price.
type Line struct {
	Qty       int64
	UnitPrice float64
}

type Totals struct {
	LineTotals []float64
	Subtotal   float64
	DoctorFee  float64
	GrandTotal float64
	TotalItems int64
}

// LineTotal returns qty × price rounded to cents, half away from zero.
func LineTotal(qty int64, unitPrice float64) float64 {
	return lineTotal(qty, unitPrice).InexactFloat64()
}

func lineTotal(qty int64, unitPrice float64) decimal.Decimal {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(qty)).Round(2)
}

// Compute rounds every line to cents, then the subtotal and the doctor fee,
// then their sum.
func Compute(lines []Line, doctorFee float64) Totals {
	totals := Totals{LineTotals: make([]float64, len(lines))}
	subtotal := decimal.Zero
	for i, l := range lines {
		lt := lineTotal(l.Qty, l.UnitPrice)
		totals.LineTotals[i] = lt.InexactFloat64()
		subtotal = subtotal.Add(lt)
		totals.TotalItems += l.Qty
	}
	subtotal = subtotal.Round(2)
	totals.Subtotal = subtotal.InexactFloat64()
	fee := decimal.NewFromFloat(doctorFee).Round(2)
	totals.DoctorFee = fee.InexactFloat64()
	totals.GrandTotal = subtotal.Add(fee).Round(2).InexactFloat64()
	return totals
}

// Sum adds cent amounts without binary drift, rounding the result to cents.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}
