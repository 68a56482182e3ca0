package service

import "fmt"

// ValidationError reports missing or malformed input. During imports it is
// row-scoped and captured into the skip count; at the batch entry point it
// aborts before any row is processed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConflictError reports an operation that would violate a uniqueness rule,
// such as linking an already-linked product.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// NotFoundError reports an absent operation target.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// IntegrityError wraps a storage-layer constraint violation on a path where
// the invariants should have made one impossible. It indicates a bug, not
// bad input, and must not be swallowed.
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation during %s: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }
