// Package auth handles staff authentication for the mobile clients: phone
// number plus a 4-digit PIN exchanged for a signed bearer token.
package auth

import "time"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Staff is a person who can log in. The PIN is stored as a bcrypt hash and
// never leaves the service.
type Staff struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	PINHash   string    `json:"-"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterForm struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"required,min=8,max=16"`
	PIN   string `json:"pin" validate:"required,len=4,numeric"`
	Role  string `json:"role" validate:"omitempty,oneof=admin staff"`
}

type LoginForm struct {
	Phone string `json:"phone" validate:"required"`
	PIN   string `json:"pin" validate:"required"`
}

type LoginResult struct {
	Token string `json:"token"`
	Staff Staff  `json:"staff"`
}
