package items

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Item, int, error)
	Get(ctx context.Context, id int64) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id int64, item Item) (Item, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const itemColumns = `id, name, sku, description, unit_price::text, cost_price::text, uom, track_stock, current_stock::text, status, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	var unitPrice, costPrice, currentStock string
	err := row.Scan(&it.ID, &it.Name, &it.SKU, &it.Description, &unitPrice, &costPrice,
		&it.UOM, &it.TrackStock, &currentStock, &it.Status, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	for _, pair := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&it.UnitPrice, unitPrice},
		{&it.CostPrice, costPrice},
		{&it.CurrentStock, currentStock},
	} {
		*pair.dst, err = decimal.NewFromString(pair.src)
		if err != nil {
			return Item{}, fmt.Errorf("items: parse amount: %w", err)
		}
	}
	return it, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM items WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR sku ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name`
	if filters.PerPage > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.PerPage)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.PerPage
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, it)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	it, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, shared.ErrNotFound
	}
	return it, err
}

func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	query := `
		INSERT INTO items (name, sku, description, unit_price, cost_price, uom, track_stock, current_stock, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + itemColumns
	created, err := scanItem(r.pool.QueryRow(ctx, query,
		item.Name, item.SKU, item.Description, item.UnitPrice, item.CostPrice,
		item.UOM, item.TrackStock, item.CurrentStock, item.Status))
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Item{}, fmt.Errorf("sku %q: %w", item.SKU, shared.ErrDuplicate)
		}
		return Item{}, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id int64, item Item) (Item, error) {
	query := `
		UPDATE items
		SET name = $1, sku = $2, description = $3, unit_price = $4, cost_price = $5,
		    uom = $6, track_stock = $7, status = $8, updated_at = now()
		WHERE id = $9
		RETURNING ` + itemColumns
	updated, err := scanItem(r.pool.QueryRow(ctx, query,
		item.Name, item.SKU, item.Description, item.UnitPrice, item.CostPrice,
		item.UOM, item.TrackStock, item.Status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		if shared.IsUniqueViolation(err) {
			return Item{}, fmt.Errorf("sku %q: %w", item.SKU, shared.ErrDuplicate)
		}
		return Item{}, err
	}
	return updated, nil
}
