package taxes

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
	List(ctx context.Context, kind Kind, status string) ([]Entry, error)
	Get(ctx context.Context, id int64) (Entry, error)
	GetMany(ctx context.Context, ids []int64) ([]Entry, error)
	Create(ctx context.Context, e Entry) (Entry, error)
	Update(ctx context.Context, id int64, e Entry) error
	Count(ctx context.Context) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const entryColumns = `id, name, kind, rate::text, section, status, is_group, start_date, end_date, created_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var rate string
	err := row.Scan(&e.ID, &e.Name, &e.Kind, &rate, &e.Section, &e.Status, &e.IsGroup, &e.StartDate, &e.EndDate, &e.CreatedAt)
	if err != nil {
		return Entry{}, err
	}
	e.Rate, err = decimal.NewFromString(rate)
	if err != nil {
		return Entry{}, fmt.Errorf("taxes: parse rate: %w", err)
	}
	return e, nil
}

func (r *repository) List(ctx context.Context, kind Kind, status string) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM tax_entries WHERE kind = $1`
	args := []any{kind}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY name`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM tax_entries WHERE id = $1`
	e, err := scanEntry(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, shared.ErrNotFound
	}
	return e, err
}

func (r *repository) GetMany(ctx context.Context, ids []int64) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM tax_entries WHERE id = ANY($1) ORDER BY id`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) Create(ctx context.Context, e Entry) (Entry, error) {
	query := `
		INSERT INTO tax_entries (name, kind, rate, section, status, is_group, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + entryColumns
	created, err := scanEntry(r.pool.QueryRow(ctx, query,
		e.Name, e.Kind, e.Rate, e.Section, e.Status, e.IsGroup, e.StartDate, e.EndDate))
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Entry{}, shared.ErrDuplicate
		}
		return Entry{}, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id int64, e Entry) error {
	query := `
		UPDATE tax_entries
		SET name = $1, rate = $2, section = $3, status = $4
		WHERE id = $5`
	tag, err := r.pool.Exec(ctx, query, e.Name, e.Rate, e.Section, e.Status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tax_entries`).Scan(&total)
	return total, err
}
