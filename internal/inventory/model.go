// Package inventory keeps the stock movement ledger. Every change to an
// item's on-hand quantity is a signed movement row; the item's current_stock
// column is a running total maintained in the same transaction.
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement reasons. Documents write receipt/issue movements when they are
// confirmed; manual corrections use adjustment.
const (
	ReasonReceipt    = "receipt"
	ReasonIssue      = "issue"
	ReasonAdjustment = "adjustment"
)

type Movement struct {
	ID        int64           `json:"id"`
	ItemID    int64           `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"`
	Reference string          `json:"reference,omitempty"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type AdjustmentForm struct {
	ItemID   int64           `json:"item_id" validate:"required,gt=0"`
	Quantity decimal.Decimal `json:"quantity"`
	Note     string          `json:"note" validate:"max=500"`
}
