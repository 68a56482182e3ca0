package repository

import (
	"context"
	"database/sql"
)

// InternalProductRepo handles the Gampack catalog.
type InternalProductRepo struct {
	db DBTX
}

func NewInternalProductRepo(db DBTX) *InternalProductRepo { return &InternalProductRepo{db: db} }

func (r *InternalProductRepo) Insert(ctx context.Context, p InternalProduct) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO internal_products(name, code, final_price_cents, effective_date, imported_at)
	VALUES(?, ?, ?, ?, ?);
	`, p.Name, p.Code, p.FinalPriceCents, p.EffectiveDate, p.ImportedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *InternalProductRepo) Update(ctx context.Context, p InternalProduct) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE internal_products
	SET name = ?, final_price_cents = ?, effective_date = ?, imported_at = ?
	WHERE id = ?`,
		p.Name, p.FinalPriceCents, p.EffectiveDate, p.ImportedAt, p.ID)
	return err
}

// GetByCode looks a row up by its natural key. Returns nil when absent.
func (r *InternalProductRepo) GetByCode(ctx context.Context, code string) (*InternalProduct, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, code, final_price_cents, effective_date, imported_at
		 FROM internal_products WHERE code = ?`, code)
	return scanInternal(row)
}

func (r *InternalProductRepo) GetByID(ctx context.Context, id int64) (*InternalProduct, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, code, final_price_cents, effective_date, imported_at
		 FROM internal_products WHERE id = ?`, id)
	return scanInternal(row)
}

// Delete removes a row; foreign keys cascade to its equivalence and
// unmatched marker. Reports whether a row was deleted.
func (r *InternalProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM internal_products WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *InternalProductRepo) List(ctx context.Context) ([]InternalProduct, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, code, final_price_cents, effective_date, imported_at
		 FROM internal_products ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []InternalProduct
	for rows.Next() {
		var p InternalProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.FinalPriceCents, &p.EffectiveDate, &p.ImportedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanInternal(row *sql.Row) (*InternalProduct, error) {
	var p InternalProduct
	if err := row.Scan(&p.ID, &p.Name, &p.Code, &p.FinalPriceCents, &p.EffectiveDate, &p.ImportedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
