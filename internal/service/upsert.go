package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gampack/pricesync/internal/database"
	"github.com/gampack/pricesync/internal/database/repository"
)

// Outcome classifies one upserted row.
type Outcome string

const (
	OutcomeInserted            Outcome = "inserted"
	OutcomeUpdated             Outcome = "updated"
	OutcomeUpdatedPriceChanged Outcome = "updated_price_changed"
	OutcomeSkipped             Outcome = "skipped"
)

// RowSkip explains why one row was skipped, for display.
type RowSkip struct {
	Line   int
	Reason string
}

// BatchResult aggregates one import. Skips are not a batch failure.
type BatchResult struct {
	Inserted            int
	Updated             int
	UpdatedPriceChanged int
	Skipped             int
	Linked              int // equivalences auto-created for inserted rows
	Skips               []RowSkip
}

// ImportService runs the import pipeline: normalize, upsert row by row,
// then auto-resolve equivalences for the newly inserted rows.
type ImportService struct {
	DB       *sql.DB
	Resolver *ResolverService

	// CompanyType tags external rows; defaults to supplier.
	CompanyType string
}

func NewImportService(db *sql.DB, resolver *ResolverService) *ImportService {
	return &ImportService{DB: db, Resolver: resolver, CompanyType: "supplier"}
}

// ImportBatch ingests one spreadsheet into the side's catalog. Each row runs
// in its own transaction so one malformed row never rolls back its siblings.
// A totally unreadable input (empty matrix, header row out of range) fails
// before any row is processed.
func (s *ImportService) ImportBatch(ctx context.Context, side repository.Side, supplier string, matrix [][]string, headerRow int, mapping HeaderMapping) (BatchResult, error) {
	if !side.Valid() {
		return BatchResult{}, &ValidationError{Reason: fmt.Sprintf("unknown catalog side %q", side)}
	}
	supplier = strings.TrimSpace(supplier)
	if side == repository.SideExternal && supplier == "" {
		return BatchResult{}, &ValidationError{Reason: "supplier is required for external imports"}
	}

	records, err := NormalizeRows(matrix, headerRow, mapping)
	if err != nil {
		return BatchResult{}, err
	}

	var res BatchResult
	var insertedIDs []int64
	for _, rec := range records {
		outcome, id, reason, err := s.upsertRow(ctx, side, supplier, rec)
		if err != nil {
			return res, err
		}
		switch outcome {
		case OutcomeInserted:
			res.Inserted++
			insertedIDs = append(insertedIDs, id)
		case OutcomeUpdated:
			res.Updated++
		case OutcomeUpdatedPriceChanged:
			res.UpdatedPriceChanged++
		case OutcomeSkipped:
			res.Skipped++
			if reason != "" {
				res.Skips = append(res.Skips, RowSkip{Line: rec.Line, Reason: reason})
			}
		}
	}

	// Existing linked rows are never re-evaluated; only fresh inserts go
	// through the resolver.
	for _, id := range insertedIDs {
		linked, err := s.Resolver.ResolveNew(ctx, side, id)
		if err != nil {
			return res, err
		}
		if linked {
			res.Linked++
		}
	}

	rec := repository.ImportRecord{
		ID:                  uuid.NewString(),
		Side:                side,
		Supplier:            supplier,
		Inserted:            res.Inserted,
		Updated:             res.Updated,
		UpdatedPriceChanged: res.UpdatedPriceChanged,
		Skipped:             res.Skipped,
		ImportedAt:          nowStamp(),
	}
	if err := repository.NewImportRepo(s.DB).Record(ctx, rec); err != nil {
		return res, fmt.Errorf("record import: %w", err)
	}
	return res, nil
}

// upsertRow classifies and persists one record inside its own transaction.
func (s *ImportService) upsertRow(ctx context.Context, side repository.Side, supplier string, rec RawRecord) (Outcome, int64, string, error) {
	if rec.Name == "" {
		return OutcomeSkipped, 0, "missing name", nil
	}
	if rec.Code == "" {
		return OutcomeSkipped, 0, "missing code", nil
	}
	if rec.Price == "" {
		return OutcomeSkipped, 0, "missing price", nil
	}
	priceCents, err := ParsePriceCents(rec.Price)
	if err != nil {
		return OutcomeSkipped, 0, err.Error(), nil
	}

	var outcome Outcome
	var id int64
	err = database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var txErr error
		if side == repository.SideExternal {
			outcome, id, txErr = s.upsertExternal(ctx, tx, supplier, rec, priceCents)
		} else {
			outcome, id, txErr = s.upsertInternal(ctx, tx, rec, priceCents)
		}
		return txErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			// The natural key was checked inside this same transaction, so a
			// duplicate here means the uniqueness invariant broke elsewhere.
			return "", 0, "", &IntegrityError{Op: "catalog upsert", Err: err}
		}
		return "", 0, "", err
	}
	return outcome, id, "", nil
}

func (s *ImportService) upsertExternal(ctx context.Context, tx *sql.Tx, supplier string, rec RawRecord, priceCents int64) (Outcome, int64, error) {
	products := repository.NewExternalProductRepo(tx)
	existing, err := products.GetByKey(ctx, rec.Code, supplier)
	if err != nil {
		return "", 0, fmt.Errorf("lookup (%s, %s): %w", rec.Code, supplier, err)
	}

	if existing == nil {
		id, err := products.Insert(ctx, repository.ExternalProduct{
			Name:            rec.Name,
			Code:            rec.Code,
			FinalPriceCents: priceCents,
			CompanyType:     s.companyType(),
			EffectiveDate:   today(),
			Supplier:        supplier,
			ImportedAt:      nowStamp(),
		})
		if err != nil {
			return "", 0, fmt.Errorf("insert (%s, %s): %w", rec.Code, supplier, err)
		}
		// New rows start life unlinked.
		if err := repository.NewUnmatchedRepo(tx).Add(ctx, repository.SideExternal, id, "new import", nowStamp()); err != nil {
			return "", 0, fmt.Errorf("park unmatched: %w", err)
		}
		return OutcomeInserted, id, nil
	}

	if existing.Name == rec.Name && existing.FinalPriceCents == priceCents {
		return OutcomeSkipped, existing.ID, nil
	}

	outcome := OutcomeUpdated
	if existing.FinalPriceCents != priceCents {
		outcome = OutcomeUpdatedPriceChanged
		existing.EffectiveDate = today()
	}
	existing.Name = rec.Name
	existing.FinalPriceCents = priceCents
	existing.ImportedAt = nowStamp()
	if err := products.Update(ctx, *existing); err != nil {
		return "", 0, fmt.Errorf("update (%s, %s): %w", rec.Code, supplier, err)
	}
	return outcome, existing.ID, nil
}

func (s *ImportService) upsertInternal(ctx context.Context, tx *sql.Tx, rec RawRecord, priceCents int64) (Outcome, int64, error) {
	products := repository.NewInternalProductRepo(tx)
	existing, err := products.GetByCode(ctx, rec.Code)
	if err != nil {
		return "", 0, fmt.Errorf("lookup %s: %w", rec.Code, err)
	}

	if existing == nil {
		id, err := products.Insert(ctx, repository.InternalProduct{
			Name:            rec.Name,
			Code:            rec.Code,
			FinalPriceCents: priceCents,
			EffectiveDate:   today(),
			ImportedAt:      nowStamp(),
		})
		if err != nil {
			return "", 0, fmt.Errorf("insert %s: %w", rec.Code, err)
		}
		if err := repository.NewUnmatchedRepo(tx).Add(ctx, repository.SideInternal, id, "new import", nowStamp()); err != nil {
			return "", 0, fmt.Errorf("park unmatched: %w", err)
		}
		return OutcomeInserted, id, nil
	}

	if existing.Name == rec.Name && existing.FinalPriceCents == priceCents {
		return OutcomeSkipped, existing.ID, nil
	}

	outcome := OutcomeUpdated
	if existing.FinalPriceCents != priceCents {
		outcome = OutcomeUpdatedPriceChanged
		existing.EffectiveDate = today()
	}
	existing.Name = rec.Name
	existing.FinalPriceCents = priceCents
	existing.ImportedAt = nowStamp()
	if err := products.Update(ctx, *existing); err != nil {
		return "", 0, fmt.Errorf("update %s: %w", rec.Code, err)
	}
	return outcome, existing.ID, nil
}

func (s *ImportService) companyType() string {
	if s.CompanyType != "" {
		return s.CompanyType
	}
	return "supplier"
}

func today() string {
	return database.Now().Format(time.DateOnly)
}
