// Package items manages the sellable/purchasable item catalog.
package items

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is one catalog entry. CurrentStock is meaningful only when TrackStock
// is set; untracked items are services or pass-through goods.
type Item struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Description  string          `json:"description"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	UOM          string          `json:"uom"`
	TrackStock   bool            `json:"track_stock"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)
