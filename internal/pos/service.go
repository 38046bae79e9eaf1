// Package pos handles point-of-sale checkout: a sale is an invoice that is
// created and confirmed in one step, with cash tendered and change due
// computed on top.
package pos

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/billing"
	"github.com/finledger/finledger/internal/shared"
)

type SaleForm struct {
	CustomerID   int64              `json:"customer_id"`
	CustomerName string             `json:"customer_name" validate:"max=200"`
	Lines        []billing.LineForm `json:"lines" validate:"min=1,dive"`
	Tendered     decimal.Decimal    `json:"tendered"`
	PaymentMode  string             `json:"payment_mode" validate:"omitempty,oneof=cash card upi"`
}

type Sale struct {
	Invoice     billing.Document `json:"invoice"`
	Tendered    decimal.Decimal  `json:"tendered"`
	ChangeDue   decimal.Decimal  `json:"change_due"`
	PaymentMode string           `json:"payment_mode"`
}

// Documents is the slice of the billing service checkout needs.
type Documents interface {
	Create(ctx context.Context, t billing.DocType, form billing.DocumentForm) (billing.Document, error)
	Confirm(ctx context.Context, id int64) (billing.Document, error)
}

type Service struct {
	logger    *slog.Logger
	documents Documents
	validator *shared.Validator
}

func NewService(logger *slog.Logger, documents Documents, validator *shared.Validator) *Service {
	return &Service{logger: logger, documents: documents, validator: validator}
}

// Checkout creates the invoice, confirms it, and returns the change due.
// A walk-in sale needs no customer record; the register falls back to a
// generic name.
func (s *Service) Checkout(ctx context.Context, form SaleForm) (Sale, error) {
	if err := s.validator.Struct(form); err != nil {
		return Sale{}, err
	}
	if form.Tendered.IsNegative() {
		return Sale{}, shared.NewValidationError([]string{"tendered must not be negative"})
	}

	name := form.CustomerName
	if form.CustomerID == 0 && name == "" {
		name = "Walk-in Customer"
	}

	draft, err := s.documents.Create(ctx, billing.TypeInvoice, billing.DocumentForm{
		PartyID:   form.CustomerID,
		PartyName: name,
		Lines:     form.Lines,
	})
	if err != nil {
		return Sale{}, err
	}

	// Short payment is rejected while the invoice is still a draft, so a
	// failed checkout never leaves a confirmed invoice behind.
	if form.Tendered.LessThan(draft.Total) {
		return Sale{}, shared.NewValidationError([]string{"tendered amount is less than the sale total"})
	}

	invoice, err := s.documents.Confirm(ctx, draft.ID)
	if err != nil {
		return Sale{}, err
	}

	mode := form.PaymentMode
	if mode == "" {
		mode = "cash"
	}

	s.logger.Info("pos sale completed", "number", invoice.Number, "total", invoice.Total, "mode", mode)
	return Sale{
		Invoice:     invoice,
		Tendered:    form.Tendered,
		ChangeDue:   form.Tendered.Sub(invoice.Total),
		PaymentMode: mode,
	}, nil
}
