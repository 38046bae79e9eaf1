package items

import "github.com/shopspring/decimal"

type ItemForm struct {
	Name        string          `json:"name" validate:"required,max=200"`
	SKU         string          `json:"sku" validate:"required,max=64"`
	Description string          `json:"description" validate:"max=2000"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	UOM         string          `json:"uom" validate:"max=32"`
	TrackStock  bool            `json:"track_stock"`
}

type ListFilters struct {
	Search  string
	Page    int
	PerPage int
}
