package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/finledger/finledger/internal/inventory"
	"github.com/finledger/finledger/internal/shared"
)

// StockRecorder writes stock movements inside the delivery transaction.
type StockRecorder interface {
	RecordInTx(ctx context.Context, tx pgx.Tx, m inventory.Movement) error
}

type Service struct {
	logger    *slog.Logger
	repo      Repository
	stock     StockRecorder
	validator *shared.Validator
}

func NewService(logger *slog.Logger, repo Repository, stock StockRecorder, validator *shared.Validator) *Service {
	return &Service{logger: logger, repo: repo, stock: stock, validator: validator}
}

func (s *Service) Create(ctx context.Context, form ChallanForm) (Challan, error) {
	if err := s.validator.Struct(form); err != nil {
		return Challan{}, err
	}

	var violations []string
	if form.CustomerID <= 0 && strings.TrimSpace(form.CustomerName) == "" {
		violations = append(violations, "a customer must be selected or named")
	}
	for i, l := range form.Lines {
		if !l.Quantity.IsPositive() {
			violations = append(violations, fmt.Sprintf("line %d: quantity must be above zero", i+1))
		}
	}
	if err := shared.NewValidationError(violations); err != nil {
		return Challan{}, err
	}

	c := Challan{
		Number:        shared.GenerateNumber("CH"),
		CustomerID:    form.CustomerID,
		CustomerName:  strings.TrimSpace(form.CustomerName),
		InvoiceID:     form.InvoiceID,
		DeliveryDate:  form.DeliveryDate,
		DriverName:    form.DriverName,
		VehicleNumber: form.VehicleNumber,
		Status:        StatusOpen,
		Notes:         form.Notes,
	}
	if c.DeliveryDate.IsZero() {
		c.DeliveryDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	for _, l := range form.Lines {
		c.Lines = append(c.Lines, ChallanLine{
			ItemID:   l.ItemID,
			Name:     strings.TrimSpace(l.Name),
			Quantity: l.Quantity,
			UOM:      l.UOM,
		})
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return Challan{}, err
	}
	s.logger.Info("challan created", "number", created.Number)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Challan, error) {
	if id <= 0 {
		return Challan{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Challan, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) MarkDelivered(ctx context.Context, id int64) (Challan, error) {
	now := time.Now().UTC()
	delivered, err := s.repo.SetStatus(ctx, id, StatusOpen, StatusDelivered, &now, func(tx pgx.Tx, c Challan) error {
		return s.issueStock(ctx, tx, c)
	})
	if err != nil {
		return Challan{}, err
	}
	s.logger.Info("challan delivered", "number", delivered.Number)
	return delivered, nil
}

func (s *Service) Cancel(ctx context.Context, id int64) (Challan, error) {
	return s.repo.SetStatus(ctx, id, StatusOpen, StatusCancelled, nil, nil)
}

// issueStock writes outbound movements for the challan's tracked lines.
// Challans cut against an invoice skip this: the invoice already issued the
// stock at confirmation and a second movement would double-count.
func (s *Service) issueStock(ctx context.Context, tx pgx.Tx, c Challan) error {
	if c.InvoiceID > 0 {
		return nil
	}
	for _, l := range c.Lines {
		if l.ItemID <= 0 || !l.Quantity.IsPositive() {
			continue
		}
		err := s.stock.RecordInTx(ctx, tx, inventory.Movement{
			ItemID:    l.ItemID,
			Quantity:  l.Quantity.Neg(),
			Reason:    inventory.ReasonIssue,
			Reference: c.Number,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
