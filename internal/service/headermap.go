package service

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/gampack/pricesync/internal/database/repository"
)

// Field is a canonical record field the import pipeline needs to locate.
type Field string

const (
	FieldName  Field = "name"
	FieldCode  Field = "code"
	FieldPrice Field = "price"
)

// HeaderMapping maps a canonical field to the raw header cell value that
// carries it in the spreadsheet.
type HeaderMapping map[Field]string

// DefaultFuzzyThreshold is the minimum similarity (1 - distance/maxlen) a
// header must score against a synonym to be accepted in the fuzzy pass.
const DefaultFuzzyThreshold = 0.60

// Synonym lists are tried in order; earlier entries are more trusted.
// Supplier sheets mix English and Spanish vocabulary.
var headerSynonyms = map[repository.Side]map[Field][]string{
	repository.SideExternal: {
		FieldName:  {"name", "product name", "description", "product", "item", "producto", "descripcion", "articulo"},
		FieldCode:  {"code", "product code", "sku", "reference", "ref", "codigo", "referencia"},
		FieldPrice: {"final price", "price", "unit price", "pvp", "net price", "precio final", "precio", "tarifa"},
	},
	repository.SideInternal: {
		FieldName:  {"name", "product name", "description", "producto", "descripcion"},
		FieldCode:  {"code", "internal code", "sku", "codigo"},
		FieldPrice: {"final price", "price", "pvp", "precio final", "precio"},
	},
}

// HeaderMapper guesses which raw headers carry the canonical fields.
type HeaderMapper struct {
	// FuzzyThreshold overrides DefaultFuzzyThreshold when > 0.
	FuzzyThreshold float64
}

func (m *HeaderMapper) threshold() float64 {
	if m.FuzzyThreshold > 0 {
		return m.FuzzyThreshold
	}
	return DefaultFuzzyThreshold
}

// MapHeaders proposes a raw header for each canonical field. Fields with no
// candidate above the acceptance threshold are absent from the result and
// the caller must fall back to manual selection.
func (m *HeaderMapper) MapHeaders(side repository.Side, headers []string) HeaderMapping {
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = normalizeHeader(h)
	}

	out := HeaderMapping{}
	for _, f := range []Field{FieldName, FieldCode, FieldPrice} {
		if raw, ok := m.mapField(side, f, headers, norm); ok {
			out[f] = raw
		}
	}
	return out
}

// mapField tries each synonym in priority order: exact match, then substring
// containment, then fuzzy similarity over all headers. The first synonym that
// produces any hit wins; on duplicate headers the first occurrence wins.
func (m *HeaderMapper) mapField(side repository.Side, f Field, headers, norm []string) (string, bool) {
	for _, syn := range headerSynonyms[side][f] {
		for i, n := range norm {
			if n != "" && n == syn {
				return headers[i], true
			}
		}
		for i, n := range norm {
			if n != "" && strings.Contains(n, syn) {
				return headers[i], true
			}
		}
		bestIdx := -1
		bestScore := 0.0
		for i, n := range norm {
			if n == "" {
				continue
			}
			if s := similarity(n, syn); s > bestScore {
				bestScore = s
				bestIdx = i
			}
		}
		if bestIdx >= 0 && bestScore >= m.threshold() {
			return headers[bestIdx], true
		}
	}
	return "", false
}

// SuggestHeaderRow scans the leading rows of the matrix and returns the
// 1-based row whose headers map the most canonical fields, or 0 when no row
// maps anything. Earlier rows win ties.
func (m *HeaderMapper) SuggestHeaderRow(side repository.Side, matrix [][]string) int {
	const scanLimit = 10
	limit := len(matrix)
	if limit > scanLimit {
		limit = scanLimit
	}

	best := 0
	bestRow := 0
	for i := 0; i < limit; i++ {
		n := len(m.MapHeaders(side, matrix[i]))
		if n > best {
			best = n
			bestRow = i + 1
		}
	}
	return bestRow
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func similarity(a, b string) float64 {
	maxlen := len(a)
	if len(b) > maxlen {
		maxlen = len(b)
	}
	if maxlen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxlen)
}
