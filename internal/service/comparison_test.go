package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gampack/pricesync/internal/database/repository"
)

func seedLinkedPair(t *testing.T, importer *ImportService, code, name, externalPrice, internalPrice string) {
	t.Helper()
	ctx := context.Background()

	internal := catalogMatrix([3]string{"I-" + code, name, internalPrice})
	_, err := importer.ImportBatch(ctx, repository.SideInternal, "", internal, 1, catalogMapping())
	require.NoError(t, err)

	external := catalogMatrix([3]string{code, name, externalPrice})
	res, err := importer.ImportBatch(ctx, repository.SideExternal, "TechSupply", external, 1, catalogMapping())
	require.NoError(t, err)
	require.Equal(t, 1, res.Linked)
}

func TestListComparisonsPercent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, importer, _ := newServices(t)

	seedLinkedPair(t, importer, "TS001", "Gaming Mouse Pro", "55.00", "58.00")

	comps, err := NewComparisonService(db).ListComparisons(ctx, repository.ComparisonFilter{})
	require.NoError(t, err)
	require.Len(t, comps, 1)

	c := comps[0]
	require.Equal(t, int64(5500), c.ExternalPriceCents)
	require.Equal(t, int64(5800), c.InternalPriceCents)
	require.NotNil(t, c.PriceDifferencePercent)
	// (5800-5500)/5500 * 100 = 5.4545... rounds to 5.45
	require.InDelta(t, 5.45, *c.PriceDifferencePercent, 0.0001)
}

func TestListComparisonsZeroExternalPrice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, importer, _ := newServices(t)

	seedLinkedPair(t, importer, "TS001", "Promo Sticker Pack", "0", "3.00")

	comps, err := NewComparisonService(db).ListComparisons(ctx, repository.ComparisonFilter{})
	require.NoError(t, err)
	require.Len(t, comps, 1)
	require.Nil(t, comps[0].PriceDifferencePercent, "zero external price has no defined difference")
}

func TestListComparisonsNegativeDifference(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, importer, _ := newServices(t)

	seedLinkedPair(t, importer, "TS001", "Webcam HD", "40.00", "30.00")

	comps, err := NewComparisonService(db).ListComparisons(ctx, repository.ComparisonFilter{})
	require.NoError(t, err)
	require.Len(t, comps, 1)
	require.NotNil(t, comps[0].PriceDifferencePercent)
	require.InDelta(t, -25.0, *comps[0].PriceDifferencePercent, 0.0001)
}

func TestListComparisonsOnlyLinkedPairs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, importer, _ := newServices(t)

	seedLinkedPair(t, importer, "TS001", "Gaming Mouse Pro", "55.00", "58.00")

	// An unlinked external product must not appear.
	extra := catalogMatrix([3]string{"TS099", "Orphan Gadget", "12.00"})
	_, err := importer.ImportBatch(ctx, repository.SideExternal, "TechSupply", extra, 1, catalogMapping())
	require.NoError(t, err)

	comps, err := NewComparisonService(db).ListComparisons(ctx, repository.ComparisonFilter{})
	require.NoError(t, err)
	require.Len(t, comps, 1)
	require.Equal(t, "TS001", comps[0].ExternalCode)
}

func TestListComparisonsDateAndSearchFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, importer, _ := newServices(t)

	seedLinkedPair(t, importer, "TS001", "Gaming Mouse Pro", "55.00", "58.00")
	seedLinkedPair(t, importer, "TS002", "Mechanical Keyboard", "120.00", "110.00")

	svc := NewComparisonService(db)
	today := time.Now().UTC().Format(time.DateOnly)

	comps, err := svc.ListComparisons(ctx, repository.ComparisonFilter{FromDate: today, ToDate: today})
	require.NoError(t, err)
	require.Len(t, comps, 2)

	comps, err = svc.ListComparisons(ctx, repository.ComparisonFilter{ToDate: "2000-01-01"})
	require.NoError(t, err)
	require.Empty(t, comps)

	comps, err = svc.ListComparisons(ctx, repository.ComparisonFilter{Search: "keyboard"})
	require.NoError(t, err)
	require.Len(t, comps, 1)
	require.Equal(t, "TS002", comps[0].ExternalCode)
}
