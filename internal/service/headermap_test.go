package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gampack/pricesync/internal/database/repository"
)

func TestMapHeadersExact(t *testing.T) {
	t.Parallel()
	m := &HeaderMapper{}

	got := m.MapHeaders(repository.SideExternal, []string{"Code", "Name", "Final Price"})
	require.Equal(t, HeaderMapping{
		FieldCode:  "Code",
		FieldName:  "Name",
		FieldPrice: "Final Price",
	}, got)
}

func TestMapHeadersSubstring(t *testing.T) {
	t.Parallel()
	m := &HeaderMapper{}

	got := m.MapHeaders(repository.SideExternal, []string{"Product Code (EAN)", "Product Description", "Unit Price EUR"})
	require.Equal(t, "Product Code (EAN)", got[FieldCode])
	require.Equal(t, "Product Description", got[FieldName])
	require.Equal(t, "Unit Price EUR", got[FieldPrice])
}

func TestMapHeadersFuzzy(t *testing.T) {
	t.Parallel()
	m := &HeaderMapper{}

	// Misspellings that pass neither the exact nor the substring pass.
	got := m.MapHeaders(repository.SideExternal, []string{"Coode", "Namme", "Pricce"})
	require.Equal(t, "Coode", got[FieldCode])
	require.Equal(t, "Namme", got[FieldName])
	require.Equal(t, "Pricce", got[FieldPrice])
}

func TestMapHeadersSpanish(t *testing.T) {
	t.Parallel()
	m := &HeaderMapper{}

	got := m.MapHeaders(repository.SideExternal, []string{"Codigo", "Descripcion", "PVP"})
	require.Equal(t, "Codigo", got[FieldCode])
	require.Equal(t, "Descripcion", got[FieldName])
	require.Equal(t, "PVP", got[FieldPrice])
}

func TestMapHeadersDuplicateFirstWins(t *testing.T) {
	t.Parallel()
	m := &HeaderMapper{}

	headers := []string{"price", "price", "name", "code"}
	got := m.MapHeaders(repository.SideExternal, headers)
	require.Equal(t, "price", got[FieldPrice])
	// Both price columns normalize identically; the mapping must resolve to
	// the first occurrence when projected back onto the header row.
	cols := resolveColumns(headers, got)
	require.Equal(t, 0, cols[FieldPrice])
}

func TestMapHeadersEmptyRowUnmapped(t *testing.T) {
	t.Parallel()
	m := &HeaderMapper{}

	require.Empty(t, m.MapHeaders(repository.SideExternal, []string{"", "", ""}))
	require.Empty(t, m.MapHeaders(repository.SideExternal, nil))
}

func TestMapHeadersNoCandidateAboveThreshold(t *testing.T) {
	t.Parallel()
	m := &HeaderMapper{}

	got := m.MapHeaders(repository.SideExternal, []string{"zzzzzzzz", "qqqqqqqq"})
	require.Empty(t, got)
}

func TestSuggestHeaderRow(t *testing.T) {
	t.Parallel()
	m := &HeaderMapper{}

	matrix := [][]string{
		{"Supplier price list Q3", "", ""},
		{"", "", ""},
		{"Code", "Name", "Final Price"},
		{"TS001", "Gaming Mouse Pro", "55.00"},
	}
	require.Equal(t, 3, m.SuggestHeaderRow(repository.SideExternal, matrix))
}

func TestSuggestHeaderRowNothingMaps(t *testing.T) {
	t.Parallel()
	m := &HeaderMapper{}

	matrix := [][]string{
		{"xxxxxx", "yyyyyy"},
		{"1", "2"},
	}
	require.Equal(t, 0, m.SuggestHeaderRow(repository.SideExternal, matrix))
}
