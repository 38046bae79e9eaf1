package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finledger/finledger/internal/billing"
	"github.com/finledger/finledger/internal/billing/calc"
)

func sampleDocument() billing.Document {
	return billing.Document{
		Number:          "INV-20260115-1A2B3C",
		Type:            billing.TypeInvoice,
		Status:          billing.StatusConfirmed,
		PartyName:       "Globex",
		IssueDate:       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		WithholdingKind: calc.WithholdingTDS,
		Lines: []billing.Line{
			{Name: "Steel Rod", Quantity: decimal.NewFromInt(20), UnitPrice: decimal.RequireFromString("1250.50"), LineTotal: decimal.RequireFromString("25010")},
		},
		Subtotal:  decimal.RequireFromString("25010"),
		TaxAmount: decimal.RequireFromString("2501"),
		Total:     decimal.RequireFromString("22509"),
	}
}

func TestBuildHTMLFormatsAmounts(t *testing.T) {
	r := NewRenderer(NewClient("http://gotenberg:3000"))

	html, err := r.buildHTML(sampleDocument())
	require.NoError(t, err)
	require.Contains(t, html, "Invoice INV-20260115-1A2B3C")
	require.Contains(t, html, "Globex")
	require.Contains(t, html, "1,250.50", "rates are grouped and rounded to two places")
	require.Contains(t, html, "22,509.00")
	require.Contains(t, html, "TDS")
	require.Contains(t, html, "15 Jan 2026")
}

func TestBuildHTMLOmitsWithholdingRowWhenNone(t *testing.T) {
	r := NewRenderer(NewClient("http://gotenberg:3000"))
	d := sampleDocument()
	d.WithholdingKind = calc.WithholdingNone

	html, err := r.buildHTML(d)
	require.NoError(t, err)
	require.NotContains(t, html, "NONE")
}
