package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/billing/calc"
)

type LineForm struct {
	ItemID      int64           `json:"item_id"`
	Name        string          `json:"name" validate:"max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

type DocumentForm struct {
	PartyID         int64                `json:"party_id"`
	PartyName       string               `json:"party_name" validate:"max=200"`
	IssueDate       time.Time            `json:"issue_date"`
	DueDate         *time.Time           `json:"due_date"`
	Lines           []LineForm           `json:"lines" validate:"min=1,dive"`
	DiscountType    calc.DiscountType    `json:"discount_type" validate:"omitempty,oneof=percentage amount"`
	DiscountValue   decimal.Decimal      `json:"discount_value"`
	WithholdingKind calc.WithholdingKind `json:"withholding_kind" validate:"omitempty,oneof=none tds tcs"`
	TaxEntryID      int64                `json:"tax_entry_id"`
	Adjustment      decimal.Decimal      `json:"adjustment"`
	Notes           string               `json:"notes" validate:"max=2000"`
}

type ListFilters struct {
	Type    DocType
	Status  Status
	PartyID int64
	Page    int
	PerPage int
}
