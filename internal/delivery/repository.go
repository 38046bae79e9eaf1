package delivery

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/platform/db"
	"github.com/finledger/finledger/internal/shared"
)

type Repository interface {
	Create(ctx context.Context, c Challan) (Challan, error)
	Get(ctx context.Context, id int64) (Challan, error)
	List(ctx context.Context, filters ListFilters) ([]Challan, int, error)
	// SetStatus moves a challan from one status to another. The challan is
	// locked for the duration; fn (optional) runs inside the same
	// transaction so side effects like stock movements commit atomically
	// with the status change.
	SetStatus(ctx context.Context, id int64, from, to ChallanStatus, deliveredAt *time.Time, fn func(tx pgx.Tx, c Challan) error) (Challan, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const challanColumns = `id, number, COALESCE(customer_id, 0), customer_name, COALESCE(invoice_id, 0),
	delivery_date, driver_name, vehicle_number, status, notes, delivered_at, created_at, updated_at`

func scanChallan(row pgx.Row) (Challan, error) {
	var c Challan
	err := row.Scan(&c.ID, &c.Number, &c.CustomerID, &c.CustomerName, &c.InvoiceID,
		&c.DeliveryDate, &c.DriverName, &c.VehicleNumber, &c.Status, &c.Notes,
		&c.DeliveredAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadLines(ctx context.Context, q querier, challanID int64) ([]ChallanLine, error) {
	rows, err := q.Query(ctx, `
		SELECT id, COALESCE(item_id, 0), name, quantity::text, uom
		FROM challan_lines
		WHERE challan_id = $1
		ORDER BY position, id`, challanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []ChallanLine
	for rows.Next() {
		var l ChallanLine
		var qty string
		if err := rows.Scan(&l.ID, &l.ItemID, &l.Name, &qty, &l.UOM); err != nil {
			return nil, err
		}
		l.Quantity, err = decimal.NewFromString(qty)
		if err != nil {
			return nil, fmt.Errorf("delivery: parse quantity: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Challan) (Challan, error) {
	var created Challan
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO challans (number, customer_id, customer_name, invoice_id, delivery_date,
				driver_name, vehicle_number, status, notes)
			VALUES ($1, NULLIF($2, 0), $3, NULLIF($4, 0), $5, $6, $7, $8, $9)
			RETURNING `+challanColumns,
			c.Number, c.CustomerID, c.CustomerName, c.InvoiceID, c.DeliveryDate,
			c.DriverName, c.VehicleNumber, c.Status, c.Notes)
		var err error
		created, err = scanChallan(row)
		if err != nil {
			return err
		}
		for i, l := range c.Lines {
			_, err := tx.Exec(ctx, `
				INSERT INTO challan_lines (challan_id, item_id, name, quantity, uom, position)
				VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6)`,
				created.ID, l.ItemID, l.Name, l.Quantity, l.UOM, i)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Challan{}, shared.ErrDuplicate
		}
		return Challan{}, err
	}
	created.Lines, err = loadLines(ctx, r.pool, created.ID)
	return created, err
}

func (r *repository) Get(ctx context.Context, id int64) (Challan, error) {
	c, err := scanChallan(r.pool.QueryRow(ctx, `SELECT `+challanColumns+` FROM challans WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Challan{}, shared.ErrNotFound
	}
	if err != nil {
		return Challan{}, err
	}
	c.Lines, err = loadLines(ctx, r.pool, id)
	return c, err
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Challan, int, error) {
	query := `SELECT ` + challanColumns + ` FROM challans WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM challans WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Status != "" {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY created_at DESC, id DESC`
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

	var out []Challan
	for rows.Next() {
		c, err := scanChallan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) SetStatus(ctx context.Context, id int64, from, to ChallanStatus, deliveredAt *time.Time, fn func(tx pgx.Tx, c Challan) error) (Challan, error) {
	var updated Challan
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		c, err := scanChallan(tx.QueryRow(ctx, `SELECT `+challanColumns+` FROM challans WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrNotFound
		}
		if err != nil {
			return err
		}
		if c.Status != from {
			return fmt.Errorf("challan is %s: %w", c.Status, shared.ErrInvalidState)
		}
		c.Lines, err = loadLines(ctx, tx, id)
		if err != nil {
			return err
		}
		if fn != nil {
			if err := fn(tx, c); err != nil {
				return err
			}
		}
		row := tx.QueryRow(ctx, `
			UPDATE challans SET status = $1, delivered_at = $2, updated_at = now()
			WHERE id = $3
			RETURNING `+challanColumns, to, deliveredAt, id)
		updated, err = scanChallan(row)
		if err != nil {
			return err
		}
		updated.Lines = c.Lines
		return nil
	})
	if err != nil {
		return Challan{}, err
	}
	return updated, nil
}
