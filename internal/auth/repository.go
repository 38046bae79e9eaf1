package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finledger/finledger/internal/shared"
)

type Repository interface {
	Create(ctx context.Context, s Staff) (Staff, error)
	GetByPhone(ctx context.Context, phone string) (Staff, error)
	GetByID(ctx context.Context, id int64) (Staff, error)
	List(ctx context.Context) ([]Staff, error)
	SetStatus(ctx context.Context, id int64, status string) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const staffColumns = `id, name, phone, pin_hash, role, status, created_at`

func scanStaff(row pgx.Row) (Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.PINHash, &s.Role, &s.Status, &s.CreatedAt)
	return s, err
}

func (r *repository) Create(ctx context.Context, s Staff) (Staff, error) {
	query := `
		INSERT INTO staff (name, phone, pin_hash, role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + staffColumns
	created, err := scanStaff(r.pool.QueryRow(ctx, query, s.Name, s.Phone, s.PINHash, s.Role, s.Status))
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Staff{}, shared.ErrDuplicate
		}
		return Staff{}, err
	}
	return created, nil
}

func (r *repository) GetByPhone(ctx context.Context, phone string) (Staff, error) {
	s, err := scanStaff(r.pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE phone = $1`, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return Staff{}, shared.ErrNotFound
	}
	return s, err
}

func (r *repository) GetByID(ctx context.Context, id int64) (Staff, error) {
	s, err := scanStaff(r.pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Staff{}, shared.ErrNotFound
	}
	return s, err
}

func (r *repository) List(ctx context.Context) ([]Staff, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+staffColumns+` FROM staff ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) SetStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE staff SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
