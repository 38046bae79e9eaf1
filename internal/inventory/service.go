package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/platform/db"
	"github.com/finledger/finledger/internal/shared"
)

type Service struct {
	pool      *pgxpool.Pool
	repo      Repository
	validator *shared.Validator
}

func NewService(pool *pgxpool.Pool, repo Repository, validator *shared.Validator) *Service {
	return &Service{pool: pool, repo: repo, validator: validator}
}

// RecordInTx is the hook document confirmation uses: the billing and POS
// services pass their open transaction so stock changes commit with the
// document status change.
func (s *Service) RecordInTx(ctx context.Context, tx pgx.Tx, m Movement) error {
	return s.repo.Record(ctx, tx, m)
}

// Adjust applies a manual stock correction.
func (s *Service) Adjust(ctx context.Context, form AdjustmentForm) error {
	if err := s.validator.Struct(form); err != nil {
		return err
	}
	if form.Quantity.IsZero() {
		return shared.NewValidationError([]string{"quantity must not be zero"})
	}

	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return s.repo.Record(ctx, tx, Movement{
			ItemID:   form.ItemID,
			Quantity: form.Quantity,
			Reason:   ReasonAdjustment,
			Note:     form.Note,
		})
	})
}

func (s *Service) OnHand(ctx context.Context, itemID int64) (decimal.Decimal, error) {
	if itemID <= 0 {
		return decimal.Zero, shared.ErrNotFound
	}
	return s.repo.OnHand(ctx, itemID)
}

func (s *Service) ListByItem(ctx context.Context, itemID int64, limit int) ([]Movement, error) {
	if itemID <= 0 {
		return nil, shared.ErrNotFound
	}
	return s.repo.ListByItem(ctx, itemID, limit)
}
