// Package billing manages bills, invoices, and vendor credits as one
// document shape. The three types share line items, discounts, withholding,
// and the total pipeline; only the party side, the number prefix, and the
// stock direction differ.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/billing/calc"
)

type DocType string

const (
	TypeBill         DocType = "bill"
	TypeInvoice      DocType = "invoice"
	TypeVendorCredit DocType = "vendor_credit"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusVoid      Status = "void"
)

// Account classifications copied onto a line when an item is selected.
const (
	AccountInventoryAsset  = "Inventory Asset"
	AccountCostOfGoodsSold = "Cost of Goods Sold"
)

// Line is one document row. ItemID is zero for free-text lines. LineTotal is
// derived and recomputed on every write, never edited directly.
type Line struct {
	ID          int64           `json:"id"`
	ItemID      int64           `json:"item_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	UOM         string          `json:"uom,omitempty"`
	Account     string          `json:"account,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Document is a bill, invoice, or vendor credit. WithholdingRate is the rate
// copied from the tax catalog when the entry was selected; catalog edits do
// not change it afterwards.
type Document struct {
	ID              int64                `json:"id"`
	Number          string               `json:"number,omitempty"`
	Type            DocType              `json:"type"`
	Status          Status               `json:"status"`
	PartyID         int64                `json:"party_id,omitempty"`
	PartyName       string               `json:"party_name"`
	IssueDate       time.Time            `json:"issue_date"`
	DueDate         *time.Time           `json:"due_date,omitempty"`
	Lines           []Line               `json:"lines"`
	DiscountType    calc.DiscountType    `json:"discount_type"`
	DiscountValue   decimal.Decimal      `json:"discount_value"`
	WithholdingKind calc.WithholdingKind `json:"withholding_kind"`
	TaxEntryID      int64                `json:"tax_entry_id,omitempty"`
	WithholdingRate decimal.Decimal      `json:"withholding_rate"`
	Adjustment      decimal.Decimal      `json:"adjustment"`
	Notes           string               `json:"notes,omitempty"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	DiscountAmount  decimal.Decimal      `json:"discount_amount"`
	TaxAmount       decimal.Decimal      `json:"tax_amount"`
	Total           decimal.Decimal      `json:"total"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// numberPrefix returns the document number prefix per type.
func numberPrefix(t DocType) string {
	switch t {
	case TypeBill:
		return "BILL"
	case TypeVendorCredit:
		return "VC"
	default:
		return "INV"
	}
}

// stockSign returns the direction confirmed documents move stock in: bills
// receive goods, invoices and vendor credits send them out.
func stockSign(t DocType) int {
	if t == TypeBill {
		return 1
	}
	return -1
}
