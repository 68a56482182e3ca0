package repository

import "context"

// ImportRepo records batch import outcomes.
type ImportRepo struct{ db DBTX }

func NewImportRepo(db DBTX) *ImportRepo { return &ImportRepo{db: db} }

func (r *ImportRepo) Record(ctx context.Context, rec ImportRecord) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO imports(id, side, supplier, inserted, updated, updated_price_changed, skipped, imported_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Side, rec.Supplier, rec.Inserted, rec.Updated, rec.UpdatedPriceChanged, rec.Skipped, rec.ImportedAt)
	return err
}

func (r *ImportRepo) List(ctx context.Context) ([]ImportRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, side, supplier, inserted, updated, updated_price_changed, skipped, imported_at
		 FROM imports ORDER BY imported_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ImportRecord
	for rows.Next() {
		var rec ImportRecord
		if err := rows.Scan(&rec.ID, &rec.Side, &rec.Supplier, &rec.Inserted, &rec.Updated,
			&rec.UpdatedPriceChanged, &rec.Skipped, &rec.ImportedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
