package repository

import (
	"context"
	"database/sql"
)

// ExternalProductRepo handles the supplier catalog.
type ExternalProductRepo struct {
	db DBTX
}

func NewExternalProductRepo(db DBTX) *ExternalProductRepo { return &ExternalProductRepo{db: db} }

func (r *ExternalProductRepo) Insert(ctx context.Context, p ExternalProduct) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO external_products(name, code, final_price_cents, company_type, effective_date, supplier, imported_at)
	VALUES(?, ?, ?, ?, ?, ?, ?);
	`, p.Name, p.Code, p.FinalPriceCents, p.CompanyType, p.EffectiveDate, p.Supplier, p.ImportedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *ExternalProductRepo) Update(ctx context.Context, p ExternalProduct) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE external_products
	SET name = ?, final_price_cents = ?, company_type = ?, effective_date = ?, imported_at = ?
	WHERE id = ?`,
		p.Name, p.FinalPriceCents, p.CompanyType, p.EffectiveDate, p.ImportedAt, p.ID)
	return err
}

// GetByKey looks a row up by its natural key. Returns nil when absent.
func (r *ExternalProductRepo) GetByKey(ctx context.Context, code, supplier string) (*ExternalProduct, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, code, final_price_cents, company_type, effective_date, supplier, imported_at
		 FROM external_products WHERE code = ? AND supplier = ?`, code, supplier)
	return scanExternal(row)
}

func (r *ExternalProductRepo) GetByID(ctx context.Context, id int64) (*ExternalProduct, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, code, final_price_cents, company_type, effective_date, supplier, imported_at
		 FROM external_products WHERE id = ?`, id)
	return scanExternal(row)
}

// Delete removes a row; foreign keys cascade to its equivalence and
// unmatched marker. Reports whether a row was deleted.
func (r *ExternalProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM external_products WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ExternalProductRepo) List(ctx context.Context) ([]ExternalProduct, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, code, final_price_cents, company_type, effective_date, supplier, imported_at
		 FROM external_products ORDER BY supplier, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ExternalProduct
	for rows.Next() {
		var p ExternalProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.FinalPriceCents, &p.CompanyType,
			&p.EffectiveDate, &p.Supplier, &p.ImportedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanExternal(row *sql.Row) (*ExternalProduct, error) {
	var p ExternalProduct
	if err := row.Scan(&p.ID, &p.Name, &p.Code, &p.FinalPriceCents, &p.CompanyType,
		&p.EffectiveDate, &p.Supplier, &p.ImportedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
