package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// UnmatchedRepo handles the per-side pools of products with no equivalence.
type UnmatchedRepo struct {
	db DBTX
}

func NewUnmatchedRepo(db DBTX) *UnmatchedRepo { return &UnmatchedRepo{db: db} }

func poolTable(side Side) string {
	if side == SideExternal {
		return "unmatched_external"
	}
	return "unmatched_internal"
}

func productTable(side Side) string {
	if side == SideExternal {
		return "external_products"
	}
	return "internal_products"
}

// Add parks a product in its side's pool.
func (r *UnmatchedRepo) Add(ctx context.Context, side Side, productID int64, reason, since string) error {
	_, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s(product_id, reason, since) VALUES(?, ?, ?)`, poolTable(side)),
		productID, reason, since)
	return err
}

// Remove reports whether the marker existed.
func (r *UnmatchedRepo) Remove(ctx context.Context, side Side, productID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE product_id = ?`, poolTable(side)), productID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// List returns the pool joined with product fields, oldest product first.
func (r *UnmatchedRepo) List(ctx context.Context, side Side) ([]UnmatchedProduct, error) {
	var query string
	if side == SideExternal {
		query = `
		SELECT u.product_id, p.name, p.code, p.final_price_cents, p.supplier, u.reason, u.since
		FROM unmatched_external u
		JOIN external_products p ON p.id = u.product_id
		ORDER BY u.product_id`
	} else {
		query = `
		SELECT u.product_id, p.name, p.code, p.final_price_cents, '', u.reason, u.since
		FROM unmatched_internal u
		JOIN internal_products p ON p.id = u.product_id
		ORDER BY u.product_id`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []UnmatchedProduct
	for rows.Next() {
		var p UnmatchedProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Code, &p.FinalPriceCents, &p.Supplier, &p.Reason, &p.Since); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MatchByCode returns the lowest-id pooled product on side whose code equals
// code exactly (case-sensitive). Returns nil when no candidate exists.
func (r *UnmatchedRepo) MatchByCode(ctx context.Context, side Side, code string) (*int64, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`
	SELECT p.id FROM %s u
	JOIN %s p ON p.id = u.product_id
	WHERE p.code = ?
	ORDER BY p.id
	LIMIT 1`, poolTable(side), productTable(side)), code)
	return scanCandidate(row)
}

// MatchByName returns the lowest-id pooled product on side whose name equals
// name case-insensitively. Returns nil when no candidate exists.
func (r *UnmatchedRepo) MatchByName(ctx context.Context, side Side, name string) (*int64, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`
	SELECT p.id FROM %s u
	JOIN %s p ON p.id = u.product_id
	WHERE lower(p.name) = lower(?)
	ORDER BY p.id
	LIMIT 1`, poolTable(side), productTable(side)), name)
	return scanCandidate(row)
}

func scanCandidate(row *sql.Row) (*int64, error) {
	var id int64
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}
