package service

import (
	"context"
	"database/sql"
	"math"

	"github.com/gampack/pricesync/internal/database/repository"
)

// Comparison pairs the prices of one linked product with their difference.
// PriceDifferencePercent is nil when the comparison is not applicable.
type Comparison struct {
	repository.ComparisonRow
	PriceDifferencePercent *float64
}

// ComparisonService derives price differences for linked pairs. Pure read.
type ComparisonService struct {
	DB *sql.DB
}

func NewComparisonService(db *sql.DB) *ComparisonService { return &ComparisonService{DB: db} }

// ListComparisons returns every linked pair within the filter, with the
// percentage difference of internal over external price.
func (s *ComparisonService) ListComparisons(ctx context.Context, f repository.ComparisonFilter) ([]Comparison, error) {
	rows, err := repository.NewComparisonRepo(s.DB).List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]Comparison, 0, len(rows))
	for _, r := range rows {
		out = append(out, Comparison{
			ComparisonRow:          r,
			PriceDifferencePercent: priceDifferencePercent(r.InternalPriceCents, r.ExternalPriceCents),
		})
	}
	return out, nil
}

// priceDifferencePercent computes ((internal - external) / external) * 100
// rounded to 2 decimal places. A zero external price has no defined
// difference and yields nil, never a number.
func priceDifferencePercent(internalCents, externalCents int64) *float64 {
	if externalCents == 0 {
		return nil
	}
	v := float64(internalCents-externalCents) / float64(externalCents) * 100
	v = math.Round(v*100) / 100
	return &v
}
