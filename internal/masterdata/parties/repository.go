package parties

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finledger/finledger/internal/shared"
)

type Repository interface {
	List(ctx context.Context, kind Kind, filters ListFilters) ([]Party, int, error)
	Get(ctx context.Context, kind Kind, id int64) (Party, error)
	Create(ctx context.Context, p Party) (Party, error)
	Update(ctx context.Context, id int64, p Party) (Party, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const partyColumns = `id, kind, display_name, email, phone, tax_number, address, status, created_at`

func scanParty(row pgx.Row) (Party, error) {
	var p Party
	err := row.Scan(&p.ID, &p.Kind, &p.DisplayName, &p.Email, &p.Phone, &p.TaxNumber, &p.Address, &p.Status, &p.CreatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, kind Kind, filters ListFilters) ([]Party, int, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE kind = $1`
	countQuery := `SELECT COUNT(*) FROM parties WHERE kind = $1`
	args := []any{kind}
	argCount := 1

	if filters.Search != "" {
		argCount++
		clause := ` AND (display_name ILIKE $` + strconv.Itoa(argCount) + ` OR email ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY display_name`
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

	var out []Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, kind Kind, id int64) (Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE kind = $1 AND id = $2`
	p, err := scanParty(r.pool.QueryRow(ctx, query, kind, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Party{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Party) (Party, error) {
	query := `
		INSERT INTO parties (kind, display_name, email, phone, tax_number, address, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + partyColumns
	created, err := scanParty(r.pool.QueryRow(ctx, query,
		p.Kind, p.DisplayName, p.Email, p.Phone, p.TaxNumber, p.Address, p.Status))
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Party{}, shared.ErrDuplicate
		}
		return Party{}, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id int64, p Party) (Party, error) {
	query := `
		UPDATE parties
		SET display_name = $1, email = $2, phone = $3, tax_number = $4, address = $5, status = $6
		WHERE id = $7
		RETURNING ` + partyColumns
	updated, err := scanParty(r.pool.QueryRow(ctx, query,
		p.DisplayName, p.Email, p.Phone, p.TaxNumber, p.Address, p.Status, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Party{}, shared.ErrNotFound
	}
	return updated, err
}
