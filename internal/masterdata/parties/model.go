// Package parties manages the vendor and customer catalogs. Both share one
// shape and one store; Kind keeps the two lists apart. Bills and vendor
// credits reference vendors, invoices reference customers.
package parties

import "time"

type Kind string

const (
	KindVendor   Kind = "vendor"
	KindCustomer Kind = "customer"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Party struct {
	ID          int64     `json:"id"`
	Kind        Kind      `json:"kind"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	TaxNumber   string    `json:"tax_number,omitempty"`
	Address     string    `json:"address,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type PartyForm struct {
	DisplayName string `json:"display_name" validate:"required,max=200"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"max=32"`
	TaxNumber   string `json:"tax_number" validate:"max=32"`
	Address     string `json:"address" validate:"max=500"`
}

type ListFilters struct {
	Search  string
	Page    int
	PerPage int
}
