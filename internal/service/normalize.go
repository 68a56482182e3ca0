package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawRecord is one candidate catalog record projected out of the cell
// matrix. Price stays raw text here; parsing and rejection happen in the
// upserter so malformed values are reported per row.
type RawRecord struct {
	Line  int // 1-based row number in the matrix
	Name  string
	Code  string
	Price string
}

// NormalizeRows projects the raw cell matrix into candidate records.
// Data rows are all rows strictly after headerRow (1-based); blank rows are
// dropped; cells missing from short rows read as empty strings; columns not
// present in the mapping are ignored.
func NormalizeRows(matrix [][]string, headerRow int, mapping HeaderMapping) ([]RawRecord, error) {
	if len(matrix) == 0 {
		return nil, &ValidationError{Reason: "empty cell matrix"}
	}
	if headerRow < 1 || headerRow > len(matrix) {
		return nil, &ValidationError{Reason: fmt.Sprintf("header row %d out of range (matrix has %d rows)", headerRow, len(matrix))}
	}

	cols := resolveColumns(matrix[headerRow-1], mapping)

	var out []RawRecord
	for rn := headerRow; rn < len(matrix); rn++ {
		row := matrix[rn]
		if isBlankRow(row) {
			continue
		}
		out = append(out, RawRecord{
			Line:  rn + 1,
			Name:  cellAt(row, cols, FieldName),
			Code:  cellAt(row, cols, FieldCode),
			Price: cellAt(row, cols, FieldPrice),
		})
	}
	return out, nil
}

// resolveColumns finds the column index carrying each mapped raw header.
// The first occurrence wins when headers repeat.
func resolveColumns(headers []string, mapping HeaderMapping) map[Field]int {
	cols := make(map[Field]int, len(mapping))
	for f, raw := range mapping {
		want := strings.TrimSpace(raw)
		for i, h := range headers {
			if strings.TrimSpace(h) == want {
				cols[f] = i
				break
			}
		}
	}
	return cols
}

func cellAt(row []string, cols map[Field]int, f Field) string {
	idx, ok := cols[f]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ParsePriceCents converts a raw price cell to integer cents. Currency
// symbols and thousand separators are stripped; negative values are
// rejected, never coerced.
func ParsePriceCents(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	for _, sym := range []string{"$", "€", "£", " "} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative price %q", raw)
	}
	return int64(math.Round(v * 100)), nil
}
