package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/shared"
)

type Repository interface {
	Record(ctx context.Context, tx pgx.Tx, m Movement) error
	OnHand(ctx context.Context, itemID int64) (decimal.Decimal, error)
	ListByItem(ctx context.Context, itemID int64, limit int) ([]Movement, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Record appends a movement and bumps the item's running stock inside the
// caller's transaction, so a document confirmation and its stock effects
// commit or roll back together. Untracked items are skipped silently.
func (r *repository) Record(ctx context.Context, tx pgx.Tx, m Movement) error {
	var tracked bool
	err := tx.QueryRow(ctx, `SELECT track_stock FROM items WHERE id = $1 FOR UPDATE`, m.ItemID).Scan(&tracked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("item %d: %w", m.ItemID, shared.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if !tracked {
		return nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO stock_movements (item_id, quantity, reason, reference, note)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ItemID, m.Quantity, m.Reason, m.Reference, m.Note)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `UPDATE items SET current_stock = current_stock + $1, updated_at = now() WHERE id = $2`,
		m.Quantity, m.ItemID)
	return err
}

func (r *repository) OnHand(ctx context.Context, itemID int64) (decimal.Decimal, error) {
	var raw string
	err := r.pool.QueryRow(ctx, `SELECT current_stock::text FROM items WHERE id = $1`, itemID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, shared.ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

func (r *repository) ListByItem(ctx context.Context, itemID int64, limit int) ([]Movement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, item_id, quantity::text, reason, reference, note, created_at
		FROM stock_movements
		WHERE item_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, itemID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		var qty string
		if err := rows.Scan(&m.ID, &m.ItemID, &qty, &m.Reason, &m.Reference, &m.Note, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Quantity, err = decimal.NewFromString(qty)
		if err != nil {
			return nil, fmt.Errorf("inventory: parse quantity: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
