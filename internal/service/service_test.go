package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gampack/pricesync/internal/database"
	"github.com/gampack/pricesync/internal/database/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newServices(t *testing.T) (*sql.DB, *ImportService, *ResolverService) {
	t.Helper()
	db := newTestDB(t)
	resolver := NewResolverService(db)
	return db, NewImportService(db, resolver), resolver
}

// catalogMatrix builds a minimal spreadsheet: header row then one data row
// per (code, name, price) triple.
func catalogMatrix(rows ...[3]string) [][]string {
	m := [][]string{{"Code", "Name", "Final Price"}}
	for _, r := range rows {
		m = append(m, []string{r[0], r[1], r[2]})
	}
	return m
}

func catalogMapping() HeaderMapping {
	return HeaderMapping{
		FieldCode:  "Code",
		FieldName:  "Name",
		FieldPrice: "Final Price",
	}
}

// requirePoolsConsistent asserts the core invariant: a product appears in
// its side's unmatched pool exactly when it has no equivalence.
func requirePoolsConsistent(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()

	var drifted int
	err := db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM external_products p
	WHERE (SELECT COUNT(*) FROM equivalences e WHERE e.external_id = p.id)
	    + (SELECT COUNT(*) FROM unmatched_external u WHERE u.product_id = p.id) != 1
	`).Scan(&drifted)
	require.NoError(t, err)
	require.Zero(t, drifted, "external pool drifted from equivalences")

	err = db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM internal_products p
	WHERE (SELECT COUNT(*) FROM equivalences e WHERE e.internal_id = p.id)
	    + (SELECT COUNT(*) FROM unmatched_internal u WHERE u.product_id = p.id) != 1
	`).Scan(&drifted)
	require.NoError(t, err)
	require.Zero(t, drifted, "internal pool drifted from equivalences")
}

func listEquivalenceRows(t *testing.T, db *sql.DB) []repository.Equivalence {
	t.Helper()
	rows, err := db.Query(`SELECT id, external_id, internal_id, criterion, created_at FROM equivalences ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()
	var out []repository.Equivalence
	for rows.Next() {
		var e repository.Equivalence
		require.NoError(t, rows.Scan(&e.ID, &e.ExternalID, &e.InternalID, &e.Criterion, &e.CreatedAt))
		out = append(out, e)
	}
	require.NoError(t, rows.Err())
	return out
}
