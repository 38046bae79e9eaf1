// Package calc derives document totals for bills, invoices, and vendor
// credits. All three document types share the same arithmetic, so it lives
// here exactly once. The functions are pure and operate on decimals end to
// end; rounding happens only at display time, never mid-computation.
package calc

import "github.com/shopspring/decimal"

// DiscountType selects how a document-level discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountAmount     DiscountType = "amount"
)

// WithholdingKind is the document-level TDS/TCS choice. At most one applies.
type WithholdingKind string

const (
	WithholdingNone WithholdingKind = "none"
	WithholdingTDS  WithholdingKind = "tds"
	WithholdingTCS  WithholdingKind = "tcs"
)

// Line is one row of a document's item table. Discount is an absolute
// currency amount at line level, distinct from the document discount.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	TaxRate   decimal.Decimal
}

// Input carries everything the calculator needs for one document.
type Input struct {
	Lines         []Line
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	Withholding   WithholdingKind
	// WithholdingRate is the percentage copied from the tax catalog at
	// selection time. Catalog edits never change it retroactively.
	WithholdingRate decimal.Decimal
	// Adjustment is a signed amount added after withholding.
	Adjustment decimal.Decimal
}

// Result holds the derived summary amounts.
type Result struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableBase    decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// LineTotal computes the total for one line: quantity times unit price, less
// the line discount, plus line tax on the discounted amount. A discount
// larger than the line amount clamps the pre-tax base at zero rather than
// producing a negative line; credits are modeled as their own document type,
// not as negative lines.
func LineTotal(l Line) decimal.Decimal {
	net := l.Quantity.Mul(l.UnitPrice).Sub(l.Discount)
	if net.IsNegative() {
		net = decimal.Zero
	}
	return net.Add(net.Mul(l.TaxRate).Div(hundred))
}

// Totals derives the document summary in a fixed order: subtotal, then the
// document discount, then withholding on the discounted base, then the
// adjustment. The order matters because withholding applies to the
// post-discount amount.
//
// TDS reduces the payable total (the payer withholds it and remits it on the
// vendor's behalf); TCS is collected on top of the base.
func Totals(in Input) Result {
	subtotal := decimal.Zero
	for _, l := range in.Lines {
		subtotal = subtotal.Add(LineTotal(l))
	}

	var discountAmount decimal.Decimal
	switch in.DiscountType {
	case DiscountPercentage:
		discountAmount = subtotal.Mul(in.DiscountValue).Div(hundred)
	default:
		discountAmount = in.DiscountValue
	}

	taxableBase := subtotal.Sub(discountAmount)

	var taxAmount decimal.Decimal
	if in.Withholding == WithholdingTDS || in.Withholding == WithholdingTCS {
		taxAmount = taxableBase.Mul(in.WithholdingRate).Div(hundred)
	}

	var total decimal.Decimal
	switch in.Withholding {
	case WithholdingTDS:
		total = taxableBase.Sub(taxAmount).Add(in.Adjustment)
	case WithholdingTCS:
		total = taxableBase.Add(taxAmount).Add(in.Adjustment)
	default:
		total = taxableBase.Add(in.Adjustment)
	}

	return Result{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxableBase:    taxableBase,
		TaxAmount:      taxAmount,
		Total:          total,
	}
}
