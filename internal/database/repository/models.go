package repository

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repos can run inside
// a caller-owned transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Side selects which catalog an operation targets.
type Side string

const (
	SideExternal Side = "external"
	SideInternal Side = "internal"
)

// Valid reports whether s is a known catalog side.
func (s Side) Valid() bool { return s == SideExternal || s == SideInternal }

// Opposite returns the other catalog side.
func (s Side) Opposite() Side {
	if s == SideExternal {
		return SideInternal
	}
	return SideExternal
}

// Criterion records how an equivalence was established.
type Criterion string

const (
	CriterionManual Criterion = "manual"
	CriterionName   Criterion = "name"
	CriterionCode   Criterion = "code"
)

// ExternalProduct is one supplier price-list row. (code, supplier) is unique.
type ExternalProduct struct {
	ID              int64
	Name            string
	Code            string
	FinalPriceCents int64
	CompanyType     string // supplier | competitor
	EffectiveDate   string // 2006-01-02
	Supplier        string
	ImportedAt      string // RFC3339
}

// InternalProduct is one Gampack price-list row. code is unique.
type InternalProduct struct {
	ID              int64
	Name            string
	Code            string
	FinalPriceCents int64
	EffectiveDate   string
	ImportedAt      string
}

// Equivalence links one external product to one internal product.
type Equivalence struct {
	ID         int64
	ExternalID int64
	InternalID int64
	Criterion  Criterion
	CreatedAt  string
}

// EquivalenceView is the joined relation row used for display.
type EquivalenceView struct {
	ID                 int64
	Criterion          Criterion
	CreatedAt          string
	ExternalID         int64
	ExternalName       string
	ExternalCode       string
	ExternalPriceCents int64
	Supplier           string
	InternalID         int64
	InternalName       string
	InternalCode       string
	InternalPriceCents int64
}

// UnmatchedProduct is a catalog row with no current equivalence.
type UnmatchedProduct struct {
	ProductID       int64
	Name            string
	Code            string
	FinalPriceCents int64
	Supplier        string // empty for internal rows
	Reason          string
	Since           string
}

// ImportRecord is the audit row written after each batch import.
type ImportRecord struct {
	ID                  string
	Side                Side
	Supplier            string
	Inserted            int
	Updated             int
	UpdatedPriceChanged int
	Skipped             int
	ImportedAt          string
}

// ComparisonRow pairs the prices of a linked external/internal product.
type ComparisonRow struct {
	ExternalID         int64
	ExternalName       string
	ExternalCode       string
	Supplier           string
	ExternalPriceCents int64
	EffectiveDate      string
	InternalID         int64
	InternalName       string
	InternalCode       string
	InternalPriceCents int64
}
