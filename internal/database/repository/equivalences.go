package repository

import (
	"context"
	"database/sql"
	"strings"
)

// EquivalenceRepo handles the external-internal relation.
type EquivalenceRepo struct {
	db DBTX
}

func NewEquivalenceRepo(db DBTX) *EquivalenceRepo { return &EquivalenceRepo{db: db} }

// Insert creates the link. The UNIQUE constraints on external_id and
// internal_id reject a second link on either side.
func (r *EquivalenceRepo) Insert(ctx context.Context, externalID, internalID int64, criterion Criterion, createdAt string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO equivalences(external_id, internal_id, criterion, created_at)
	VALUES(?, ?, ?, ?);
	`, externalID, internalID, criterion, createdAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *EquivalenceRepo) GetByID(ctx context.Context, id int64) (*Equivalence, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, external_id, internal_id, criterion, created_at FROM equivalences WHERE id = ?`, id)
	return scanEquivalence(row)
}

func (r *EquivalenceRepo) GetByExternalID(ctx context.Context, externalID int64) (*Equivalence, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, external_id, internal_id, criterion, created_at FROM equivalences WHERE external_id = ?`, externalID)
	return scanEquivalence(row)
}

func (r *EquivalenceRepo) GetByInternalID(ctx context.Context, internalID int64) (*Equivalence, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, external_id, internal_id, criterion, created_at FROM equivalences WHERE internal_id = ?`, internalID)
	return scanEquivalence(row)
}

// Delete reports whether a row was deleted.
func (r *EquivalenceRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM equivalences WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// EquivalenceFilter defines list filters for the joined relation view.
type EquivalenceFilter struct {
	Search  string // free text over all joined fields
	SortKey string // one of the keys in equivalenceSortKeys; default id
}

var equivalenceSortKeys = map[string]string{
	"id":            "e.id",
	"created_at":    "e.created_at",
	"criterion":     "e.criterion",
	"supplier":      "x.supplier",
	"external_name": "x.name COLLATE NOCASE",
	"internal_name": "i.name COLLATE NOCASE",
}

// ListView returns the joined relation rows for display.
func (r *EquivalenceRepo) ListView(ctx context.Context, f EquivalenceFilter) ([]EquivalenceView, error) {
	query := `
	SELECT e.id, e.criterion, e.created_at,
	       x.id, x.name, x.code, x.final_price_cents, x.supplier,
	       i.id, i.name, i.code, i.final_price_cents
	FROM equivalences e
	JOIN external_products x ON x.id = e.external_id
	JOIN internal_products i ON i.id = e.internal_id`

	var args []any
	if s := strings.TrimSpace(f.Search); s != "" {
		query += `
	WHERE x.name LIKE ? OR x.code LIKE ? OR x.supplier LIKE ?
	   OR i.name LIKE ? OR i.code LIKE ? OR e.criterion LIKE ?`
		like := "%" + s + "%"
		args = append(args, like, like, like, like, like, like)
	}

	order, ok := equivalenceSortKeys[f.SortKey]
	if !ok {
		order = "e.id"
	}
	query += " ORDER BY " + order

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquivalenceView
	for rows.Next() {
		var v EquivalenceView
		if err := rows.Scan(&v.ID, &v.Criterion, &v.CreatedAt,
			&v.ExternalID, &v.ExternalName, &v.ExternalCode, &v.ExternalPriceCents, &v.Supplier,
			&v.InternalID, &v.InternalName, &v.InternalCode, &v.InternalPriceCents); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanEquivalence(row *sql.Row) (*Equivalence, error) {
	var e Equivalence
	if err := row.Scan(&e.ID, &e.ExternalID, &e.InternalID, &e.Criterion, &e.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
