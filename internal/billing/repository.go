package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/platform/db"
	"github.com/finledger/finledger/internal/shared"
)

type Repository interface {
	Create(ctx context.Context, d Document) (Document, error)
	// Replace rewrites a document's fields and lines in one transaction.
	Replace(ctx context.Context, id int64, d Document) (Document, error)
	Get(ctx context.Context, id int64) (Document, error)
	List(ctx context.Context, filters ListFilters) ([]Document, int, error)
	// Transition moves a document from one status to another. The document is
	// locked for the duration; fn runs inside the same transaction so side
	// effects like stock movements commit atomically with the status change.
	// A non-empty number is assigned during the transition.
	Transition(ctx context.Context, id int64, from, to Status, number string, fn func(tx pgx.Tx, d Document) error) (Document, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const docColumns = `id, number, type, status, COALESCE(party_id, 0), party_name, issue_date, due_date,
	discount_type, discount_value::text, withholding_kind, COALESCE(tax_entry_id, 0), withholding_rate::text,
	adjustment::text, notes, subtotal::text, discount_amount::text, tax_amount::text, total::text,
	created_at, updated_at`

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	var discountValue, withholdingRate, adjustment, subtotal, discountAmount, taxAmount, total string
	err := row.Scan(&d.ID, &d.Number, &d.Type, &d.Status, &d.PartyID, &d.PartyName, &d.IssueDate, &d.DueDate,
		&d.DiscountType, &discountValue, &d.WithholdingKind, &d.TaxEntryID, &withholdingRate,
		&adjustment, &d.Notes, &subtotal, &discountAmount, &taxAmount, &total,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return Document{}, err
	}
	for _, pair := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&d.DiscountValue, discountValue},
		{&d.WithholdingRate, withholdingRate},
		{&d.Adjustment, adjustment},
		{&d.Subtotal, subtotal},
		{&d.DiscountAmount, discountAmount},
		{&d.TaxAmount, taxAmount},
		{&d.Total, total},
	} {
		*pair.dst, err = decimal.NewFromString(pair.src)
		if err != nil {
			return Document{}, fmt.Errorf("billing: parse amount: %w", err)
		}
	}
	return d, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadLines(ctx context.Context, q querier, documentID int64) ([]Line, error) {
	rows, err := q.Query(ctx, `
		SELECT id, COALESCE(item_id, 0), name, description, uom, account,
			quantity::text, unit_price::text, discount::text, tax_rate::text, line_total::text
		FROM document_lines
		WHERE document_id = $1
		ORDER BY position, id`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		var qty, price, discount, taxRate, lineTotal string
		if err := rows.Scan(&l.ID, &l.ItemID, &l.Name, &l.Description, &l.UOM, &l.Account,
			&qty, &price, &discount, &taxRate, &lineTotal); err != nil {
			return nil, err
		}
		for _, pair := range []struct {
			dst *decimal.Decimal
			src string
		}{
			{&l.Quantity, qty},
			{&l.UnitPrice, price},
			{&l.Discount, discount},
			{&l.TaxRate, taxRate},
			{&l.LineTotal, lineTotal},
		} {
			var perr error
			*pair.dst, perr = decimal.NewFromString(pair.src)
			if perr != nil {
				return nil, fmt.Errorf("billing: parse line amount: %w", perr)
			}
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func insertLines(ctx context.Context, tx pgx.Tx, documentID int64, lines []Line) error {
	for i, l := range lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO document_lines (document_id, item_id, name, description, uom, account,
				quantity, unit_price, discount, tax_rate, line_total, position)
			VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			documentID, l.ItemID, l.Name, l.Description, l.UOM, l.Account,
			l.Quantity, l.UnitPrice, l.Discount, l.TaxRate, l.LineTotal, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) Create(ctx context.Context, d Document) (Document, error) {
	var created Document
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO documents (number, type, status, party_id, party_name, issue_date, due_date,
				discount_type, discount_value, withholding_kind, tax_entry_id, withholding_rate,
				adjustment, notes, subtotal, discount_amount, tax_amount, total)
			VALUES ($1, $2, $3, NULLIF($4, 0), $5, $6, $7, $8, $9, $10, NULLIF($11, 0), $12, $13, $14, $15, $16, $17, $18)
			RETURNING `+docColumns,
			d.Number, d.Type, d.Status, d.PartyID, d.PartyName, d.IssueDate, d.DueDate,
			d.DiscountType, d.DiscountValue, d.WithholdingKind, d.TaxEntryID, d.WithholdingRate,
			d.Adjustment, d.Notes, d.Subtotal, d.DiscountAmount, d.TaxAmount, d.Total)
		var err error
		created, err = scanDocument(row)
		if err != nil {
			return err
		}
		if err := insertLines(ctx, tx, created.ID, d.Lines); err != nil {
			return err
		}
		created.Lines, err = loadLines(ctx, tx, created.ID)
		return err
	})
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Document{}, shared.ErrDuplicate
		}
		return Document{}, err
	}
	return created, nil
}

func (r *repository) Replace(ctx context.Context, id int64, d Document) (Document, error) {
	var updated Document
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE documents
			SET party_id = NULLIF($1, 0), party_name = $2, issue_date = $3, due_date = $4,
				discount_type = $5, discount_value = $6, withholding_kind = $7,
				tax_entry_id = NULLIF($8, 0), withholding_rate = $9, adjustment = $10, notes = $11,
				subtotal = $12, discount_amount = $13, tax_amount = $14, total = $15, updated_at = now()
			WHERE id = $16
			RETURNING `+docColumns,
			d.PartyID, d.PartyName, d.IssueDate, d.DueDate,
			d.DiscountType, d.DiscountValue, d.WithholdingKind,
			d.TaxEntryID, d.WithholdingRate, d.Adjustment, d.Notes,
			d.Subtotal, d.DiscountAmount, d.TaxAmount, d.Total, id)
		var err error
		updated, err = scanDocument(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, id); err != nil {
			return err
		}
		if err := insertLines(ctx, tx, id, d.Lines); err != nil {
			return err
		}
		updated.Lines, err = loadLines(ctx, tx, id)
		return err
	})
	if err != nil {
		return Document{}, err
	}
	return updated, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Document, error) {
	d, err := scanDocument(r.pool.QueryRow(ctx, `SELECT `+docColumns+` FROM documents WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, shared.ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	d.Lines, err = loadLines(ctx, r.pool, id)
	return d, err
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Document, int, error) {
	query := `SELECT ` + docColumns + ` FROM documents WHERE type = $1`
	countQuery := `SELECT COUNT(*) FROM documents WHERE type = $1`
	args := []any{filters.Type}
	argCount := 1

	if filters.Status != "" {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Status)
	}
	if filters.PartyID > 0 {
		argCount++
		clause := ` AND party_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.PartyID)
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

	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (r *repository) Transition(ctx context.Context, id int64, from, to Status, number string, fn func(tx pgx.Tx, d Document) error) (Document, error) {
	var result Document
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		d, err := scanDocument(tx.QueryRow(ctx, `SELECT `+docColumns+` FROM documents WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrNotFound
		}
		if err != nil {
			return err
		}
		if d.Status != from {
			return fmt.Errorf("document is %s: %w", d.Status, shared.ErrInvalidState)
		}
		d.Lines, err = loadLines(ctx, tx, id)
		if err != nil {
			return err
		}

		if fn != nil {
			if err := fn(tx, d); err != nil {
				return err
			}
		}

		if number == "" {
			number = d.Number
		}
		row := tx.QueryRow(ctx, `
			UPDATE documents SET status = $1, number = $2, updated_at = now()
			WHERE id = $3
			RETURNING `+docColumns, to, number, id)
		result, err = scanDocument(row)
		if err != nil {
			return err
		}
		result.Lines = d.Lines
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	return result, nil
}
