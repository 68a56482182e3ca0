package repository

import (
	"context"
	"strings"
)

// ComparisonFilter narrows the comparison view.
type ComparisonFilter struct {
	FromDate string // inclusive, 2006-01-02; empty = unbounded
	ToDate   string // inclusive
	Search   string // free text over names, codes and supplier
}

// ComparisonRepo reads price pairs for linked products.
type ComparisonRepo struct{ db DBTX }

func NewComparisonRepo(db DBTX) *ComparisonRepo { return &ComparisonRepo{db: db} }

// List returns one row per equivalence with both prices. The date range
// applies to the external row's effective date.
func (r *ComparisonRepo) List(ctx context.Context, f ComparisonFilter) ([]ComparisonRow, error) {
	query := `
	SELECT x.id, x.name, x.code, x.supplier, x.final_price_cents, x.effective_date,
	       i.id, i.name, i.code, i.final_price_cents
	FROM equivalences e
	JOIN external_products x ON x.id = e.external_id
	JOIN internal_products i ON i.id = e.internal_id`

	var where []string
	var args []any
	if f.FromDate != "" {
		where = append(where, "x.effective_date >= ?")
		args = append(args, f.FromDate)
	}
	if f.ToDate != "" {
		where = append(where, "x.effective_date <= ?")
		args = append(args, f.ToDate)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(x.name LIKE ? OR x.code LIKE ? OR x.supplier LIKE ? OR i.name LIKE ? OR i.code LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like, like, like, like)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY x.supplier, x.code"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ComparisonRow
	for rows.Next() {
		var c ComparisonRow
		if err := rows.Scan(&c.ExternalID, &c.ExternalName, &c.ExternalCode, &c.Supplier,
			&c.ExternalPriceCents, &c.EffectiveDate,
			&c.InternalID, &c.InternalName, &c.InternalCode, &c.InternalPriceCents); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
