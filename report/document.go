package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/finledger/finledger/internal/billing"
)

// Renderer lays out a document as HTML and hands it to Gotenberg. It
// satisfies the billing handler's PDF interface.
type Renderer struct {
	client *Client
	tmpl   *template.Template
	fmt    *message.Printer
}

func NewRenderer(client *Client) *Renderer {
	return &Renderer{
		client: client,
		tmpl:   template.Must(template.New("document").Parse(documentTemplate)),
		fmt:    message.NewPrinter(language.English),
	}
}

func (r *Renderer) Render(ctx context.Context, d billing.Document) ([]byte, error) {
	html, err := r.buildHTML(d)
	if err != nil {
		return nil, err
	}
	return r.client.RenderHTML(ctx, html)
}

// amount renders a decimal with grouped thousands and two places, the way
// the printed documents show money.
func (r *Renderer) amount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return r.fmt.Sprintf("%.2f", f)
}

func documentTitle(t billing.DocType) string {
	switch t {
	case billing.TypeBill:
		return "Bill"
	case billing.TypeVendorCredit:
		return "Vendor Credit"
	default:
		return "Invoice"
	}
}

type lineView struct {
	Name      string
	Quantity  string
	UnitPrice string
	Discount  string
	TaxRate   string
	Total     string
}

type documentView struct {
	Title           string
	Number          string
	Status          string
	PartyName       string
	IssueDate       string
	Lines           []lineView
	Subtotal        string
	DiscountAmount  string
	WithholdingKind string
	TaxAmount       string
	Adjustment      string
	Total           string
	Notes           string
}

func (r *Renderer) buildHTML(d billing.Document) (string, error) {
	view := documentView{
		Title:           documentTitle(d.Type),
		Number:          d.Number,
		Status:          strings.ToUpper(string(d.Status)),
		PartyName:       d.PartyName,
		IssueDate:       d.IssueDate.Format("02 Jan 2006"),
		Subtotal:        r.amount(d.Subtotal),
		DiscountAmount:  r.amount(d.DiscountAmount),
		WithholdingKind: strings.ToUpper(string(d.WithholdingKind)),
		TaxAmount:       r.amount(d.TaxAmount),
		Adjustment:      r.amount(d.Adjustment),
		Total:           r.amount(d.Total),
		Notes:           d.Notes,
	}
	for _, l := range d.Lines {
		view.Lines = append(view.Lines, lineView{
			Name:      l.Name,
			Quantity:  l.Quantity.String(),
			UnitPrice: r.amount(l.UnitPrice),
			Discount:  r.amount(l.Discount),
			TaxRate:   l.TaxRate.String() + "%",
			Total:     r.amount(l.LineTotal),
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("report: execute template: %w", err)
	}
	return buf.String(), nil
}

const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; margin: 40px; }
h1 { font-size: 20px; margin-bottom: 0; }
.meta { color: #666; margin-bottom: 24px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #ddd; }
th { background: #f5f5f5; }
td.num, th.num { text-align: right; }
.totals { margin-top: 16px; width: 40%; margin-left: auto; }
.totals td { border: none; padding: 3px 8px; }
.totals .grand td { font-weight: bold; border-top: 1px solid #222; }
.notes { margin-top: 24px; color: #666; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Title}} {{.Number}}</h1>
<div class="meta">{{.PartyName}} &middot; {{.IssueDate}} &middot; {{.Status}}</div>
<table>
<tr><th>Item</th><th class="num">Qty</th><th class="num">Rate</th><th class="num">Discount</th><th class="num">Tax</th><th class="num">Amount</th></tr>
{{range .Lines}}<tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.Discount}}</td><td class="num">{{.TaxRate}}</td><td class="num">{{.Total}}</td></tr>
{{end}}</table>
<table class="totals">
<tr><td>Subtotal</td><td class="num">{{.Subtotal}}</td></tr>
<tr><td>Discount</td><td class="num">{{.DiscountAmount}}</td></tr>
{{if ne .WithholdingKind "NONE"}}<tr><td>{{.WithholdingKind}}</td><td class="num">{{.TaxAmount}}</td></tr>{{end}}
<tr><td>Adjustment</td><td class="num">{{.Adjustment}}</td></tr>
<tr class="grand"><td>Total</td><td class="num">{{.Total}}</td></tr>
</table>
{{if .Notes}}<div class="notes">{{.Notes}}</div>{{end}}
</body>
</html>`
