// Package delivery manages delivery challans: the paper that travels with
// goods to the customer. Challans track handover, not money; amounts live on
// the invoice the challan is usually linked to.
package delivery

import (
	"time"

	"github.com/shopspring/decimal"
)

type ChallanStatus string

const (
	StatusOpen      ChallanStatus = "OPEN"
	StatusDelivered ChallanStatus = "DELIVERED"
	StatusCancelled ChallanStatus = "CANCELLED"
)

// CanDeliver checks if the challan can be marked delivered.
func (s ChallanStatus) CanDeliver() bool {
	return s == StatusOpen
}

// CanCancel checks if the challan can be cancelled.
func (s ChallanStatus) CanCancel() bool {
	return s == StatusOpen
}

type Challan struct {
	ID            int64         `json:"id"`
	Number        string        `json:"number"`
	CustomerID    int64         `json:"customer_id,omitempty"`
	CustomerName  string        `json:"customer_name"`
	InvoiceID     int64         `json:"invoice_id,omitempty"`
	DeliveryDate  time.Time     `json:"delivery_date"`
	DriverName    string        `json:"driver_name,omitempty"`
	VehicleNumber string        `json:"vehicle_number,omitempty"`
	Status        ChallanStatus `json:"status"`
	Notes         string        `json:"notes,omitempty"`
	Lines         []ChallanLine `json:"lines"`
	DeliveredAt   *time.Time    `json:"delivered_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type ChallanLine struct {
	ID       int64           `json:"id"`
	ItemID   int64           `json:"item_id,omitempty"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	UOM      string          `json:"uom,omitempty"`
}

type ChallanLineForm struct {
	ItemID   int64           `json:"item_id"`
	Name     string          `json:"name" validate:"required,max=200"`
	Quantity decimal.Decimal `json:"quantity"`
	UOM      string          `json:"uom" validate:"max=32"`
}

type ChallanForm struct {
	CustomerID    int64             `json:"customer_id"`
	CustomerName  string            `json:"customer_name" validate:"max=200"`
	InvoiceID     int64             `json:"invoice_id"`
	DeliveryDate  time.Time         `json:"delivery_date"`
	DriverName    string            `json:"driver_name" validate:"max=100"`
	VehicleNumber string            `json:"vehicle_number" validate:"max=32"`
	Notes         string            `json:"notes" validate:"max=2000"`
	Lines         []ChallanLineForm `json:"lines" validate:"min=1,dive"`
}

type ListFilters struct {
	Status  ChallanStatus
	Page    int
	PerPage int
}
