package reports

import (
	"html/template"
	"io"

	"dispensary/m/domain"
	"dispensary/m/internal/config"
)

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": money,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.Invoice.InvoiceNo}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 24px; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 4px 6px; }
th { border-bottom: 1px solid #333; text-align: left; }
.num { text-align: right; }
.totals td { border: none; }
</style>
</head>
<body>
<header>
  <h2>{{.Clinic.Name}}</h2>
  {{with .Clinic.Address}}<div>{{.}}</div>{{end}}
  {{with .Clinic.Phone}}<div>Phone: {{.}}</div>{{end}}
  <p>Invoice: <b>{{.Invoice.InvoiceNo}}</b><br>Date: {{.Invoice.CreatedAt}}</p>
</header>
<p>Patient: {{.Invoice.PatientLabel}}&nbsp;&nbsp; Phone: {{if .Invoice.PatientPhone}}{{.Invoice.PatientPhone}}{{else}}-{{end}}</p>
<table>
  <tr><th>Item</th><th class="num">Qty</th><th class="num">Unit</th><th class="num">Line Total</th></tr>
  {{range .Invoice.Lines}}<tr><td>{{.Name}}</td><td class="num">{{.Qty}}</td><td class="num">{{money .UnitPrice}}</td><td class="num">{{money .LineTotal}}</td></tr>
  {{end}}
</table>
<table class="totals">
  <tr><td class="num">Subtotal:</td><td class="num">{{money .Invoice.Subtotal}}</td></tr>
  <tr><td class="num">Doctor Fee:</td><td class="num">{{money .Invoice.DoctorFee}}</td></tr>
  <tr><td class="num"><b>Grand Total:</b></td><td class="num"><b>{{money .Invoice.Total}}</b></td></tr>
</table>
<p>Total quantity of medicines: {{.Invoice.TotalItems}}</p>
</body>
</html>
`))

// RenderInvoiceHTML writes a printable A4 invoice.
func RenderInvoiceHTML(w io.Writer, clinic config.Clinic, invoice domain.InvoiceDetail) error {
	return invoiceTemplate.Execute(w, struct {
		Clinic  config.Clinic
		Invoice domain.InvoiceDetail
	}{clinic, invoice})
}
