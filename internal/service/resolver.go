package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gampack/pricesync/internal/database"
	"github.com/gampack/pricesync/internal/database/repository"
)

// ResolverService maintains equivalences and the per-side unmatched pools.
// Every equivalence mutation is paired with its unmatched-pool mutation
// inside one transaction so the two can never drift.
type ResolverService struct {
	DB *sql.DB
}

func NewResolverService(db *sql.DB) *ResolverService { return &ResolverService{DB: db} }

// ResolveNew attempts automatic linking for one newly inserted product:
// exact code match (case-sensitive) against the opposite unmatched pool,
// else exact case-insensitive name match, else the product stays unmatched.
// Ties between candidates go to the lowest product id. Reports whether a
// link was created.
func (s *ResolverService) ResolveNew(ctx context.Context, side repository.Side, productID int64) (bool, error) {
	if !side.Valid() {
		return false, &ValidationError{Reason: fmt.Sprintf("unknown catalog side %q", side)}
	}

	code, name, err := s.productKey(ctx, side, productID)
	if err != nil {
		return false, err
	}
	if code == "" && name == "" {
		return false, nil // product vanished under us; nothing to link
	}

	pools := repository.NewUnmatchedRepo(s.DB)
	opp := side.Opposite()

	candidate, err := pools.MatchByCode(ctx, opp, code)
	if err != nil {
		return false, fmt.Errorf("scan %s pool by code: %w", opp, err)
	}
	criterion := repository.CriterionCode
	if candidate == nil {
		candidate, err = pools.MatchByName(ctx, opp, name)
		if err != nil {
			return false, fmt.Errorf("scan %s pool by name: %w", opp, err)
		}
		criterion = repository.CriterionName
	}
	if candidate == nil {
		return false, nil
	}

	externalID, internalID := orient(side, productID, *candidate)
	_, err = s.link(ctx, externalID, internalID, criterion)
	if err != nil {
		// A candidate claimed by a concurrent link loses the race and the
		// new product simply stays unmatched.
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateManualLink links two unmatched products unconditionally, with no
// name/code re-validation.
func (s *ResolverService) CreateManualLink(ctx context.Context, externalID, internalID int64) (repository.Equivalence, error) {
	ext, err := repository.NewExternalProductRepo(s.DB).GetByID(ctx, externalID)
	if err != nil {
		return repository.Equivalence{}, err
	}
	if ext == nil {
		return repository.Equivalence{}, &NotFoundError{Resource: "external product", ID: externalID}
	}
	intp, err := repository.NewInternalProductRepo(s.DB).GetByID(ctx, internalID)
	if err != nil {
		return repository.Equivalence{}, err
	}
	if intp == nil {
		return repository.Equivalence{}, &NotFoundError{Resource: "internal product", ID: internalID}
	}

	id, err := s.link(ctx, externalID, internalID, repository.CriterionManual)
	if err != nil {
		return repository.Equivalence{}, err
	}

	eq, err := repository.NewEquivalenceRepo(s.DB).GetByID(ctx, id)
	if err != nil {
		return repository.Equivalence{}, err
	}
	if eq == nil {
		return repository.Equivalence{}, &IntegrityError{Op: "manual link", Err: sql.ErrNoRows}
	}
	return *eq, nil
}

// link removes both participants from their pools and creates the
// equivalence in one transaction. A participant whose marker is already gone
// is linked elsewhere; the transaction rolls back with a ConflictError.
func (s *ResolverService) link(ctx context.Context, externalID, internalID int64, criterion repository.Criterion) (int64, error) {
	var id int64
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		pools := repository.NewUnmatchedRepo(tx)
		gotExt, err := pools.Remove(ctx, repository.SideExternal, externalID)
		if err != nil {
			return fmt.Errorf("claim external %d: %w", externalID, err)
		}
		gotInt, err := pools.Remove(ctx, repository.SideInternal, internalID)
		if err != nil {
			return fmt.Errorf("claim internal %d: %w", internalID, err)
		}
		if !gotExt {
			return &ConflictError{Reason: fmt.Sprintf("external product %d is already linked", externalID)}
		}
		if !gotInt {
			return &ConflictError{Reason: fmt.Sprintf("internal product %d is already linked", internalID)}
		}

		id, err = repository.NewEquivalenceRepo(tx).Insert(ctx, externalID, internalID, criterion, nowStamp())
		if err != nil {
			if isUniqueViolation(err) {
				// Marker said unmatched but an equivalence exists: the pools
				// and the relation drifted, which the invariants forbid.
				return &IntegrityError{Op: "create equivalence", Err: err}
			}
			return fmt.Errorf("create equivalence: %w", err)
		}
		return nil
	})
	return id, err
}

// DeleteProduct removes a catalog row. A linked product's equivalence is
// deleted and the surviving counterpart returns to its unmatched pool; an
// unlinked product just loses its marker (via cascade).
func (s *ResolverService) DeleteProduct(ctx context.Context, side repository.Side, id int64) error {
	if !side.Valid() {
		return &ValidationError{Reason: fmt.Sprintf("unknown catalog side %q", side)}
	}
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		eqs := repository.NewEquivalenceRepo(tx)
		pools := repository.NewUnmatchedRepo(tx)

		var eq *repository.Equivalence
		var deleted bool
		var err error
		if side == repository.SideExternal {
			eq, err = eqs.GetByExternalID(ctx, id)
		} else {
			eq, err = eqs.GetByInternalID(ctx, id)
		}
		if err != nil {
			return err
		}

		if eq != nil {
			if _, err := eqs.Delete(ctx, eq.ID); err != nil {
				return fmt.Errorf("delete equivalence %d: %w", eq.ID, err)
			}
			counterpart := eq.InternalID
			if side == repository.SideInternal {
				counterpart = eq.ExternalID
			}
			if err := pools.Add(ctx, side.Opposite(), counterpart, "link removed", nowStamp()); err != nil {
				return &IntegrityError{Op: "restore counterpart to unmatched pool", Err: err}
			}
		}

		if side == repository.SideExternal {
			deleted, err = repository.NewExternalProductRepo(tx).Delete(ctx, id)
		} else {
			deleted, err = repository.NewInternalProductRepo(tx).Delete(ctx, id)
		}
		if err != nil {
			return err
		}
		if !deleted {
			return &NotFoundError{Resource: string(side) + " product", ID: id}
		}
		return nil
	})
}

// DeleteLink removes an equivalence and returns both sides to their
// unmatched pools.
func (s *ResolverService) DeleteLink(ctx context.Context, relationID int64) error {
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		eqs := repository.NewEquivalenceRepo(tx)
		eq, err := eqs.GetByID(ctx, relationID)
		if err != nil {
			return err
		}
		if eq == nil {
			return &NotFoundError{Resource: "equivalence", ID: relationID}
		}
		if _, err := eqs.Delete(ctx, relationID); err != nil {
			return fmt.Errorf("delete equivalence %d: %w", relationID, err)
		}
		pools := repository.NewUnmatchedRepo(tx)
		if err := pools.Add(ctx, repository.SideExternal, eq.ExternalID, "link removed", nowStamp()); err != nil {
			return &IntegrityError{Op: "return external product to pool", Err: err}
		}
		if err := pools.Add(ctx, repository.SideInternal, eq.InternalID, "link removed", nowStamp()); err != nil {
			return &IntegrityError{Op: "return internal product to pool", Err: err}
		}
		return nil
	})
}

// ListUnmatched returns the current pool for one side.
func (s *ResolverService) ListUnmatched(ctx context.Context, side repository.Side) ([]repository.UnmatchedProduct, error) {
	if !side.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown catalog side %q", side)}
	}
	return repository.NewUnmatchedRepo(s.DB).List(ctx, side)
}

// ListEquivalences returns the joined relation view.
func (s *ResolverService) ListEquivalences(ctx context.Context, f repository.EquivalenceFilter) ([]repository.EquivalenceView, error) {
	return repository.NewEquivalenceRepo(s.DB).ListView(ctx, f)
}

func (s *ResolverService) productKey(ctx context.Context, side repository.Side, id int64) (code, name string, err error) {
	if side == repository.SideExternal {
		p, err := repository.NewExternalProductRepo(s.DB).GetByID(ctx, id)
		if err != nil || p == nil {
			return "", "", err
		}
		return p.Code, p.Name, nil
	}
	p, err := repository.NewInternalProductRepo(s.DB).GetByID(ctx, id)
	if err != nil || p == nil {
		return "", "", err
	}
	return p.Code, p.Name, nil
}

// orient maps (side of the new product, its id, candidate id) to the
// (externalID, internalID) pair an equivalence row stores.
func orient(side repository.Side, productID, candidateID int64) (externalID, internalID int64) {
	if side == repository.SideExternal {
		return productID, candidateID
	}
	return candidateID, productID
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE")
}

func nowStamp() string {
	return database.Now().Format(time.RFC3339)
}
