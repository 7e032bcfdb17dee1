package common

import (
	"errors"
	"fmt"
)

// Error kinds shared by services and the HTTP layer. Services wrap these
// with context via fmt.Errorf("...: %w", ...) and callers match with errors.Is.
var (
	// ErrInvalidInput marks a malformed request. Surfaced before any stream starts.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotEntitled marks a caller without a confirmed payment on record.
	ErrNotEntitled = errors.New("not entitled")

	// ErrLedgerUnavailable marks a failed read or append against the ledger store.
	ErrLedgerUnavailable = errors.New("ledger unavailable")

	// ErrUpstreamGeneration marks a failure of the advisory engine.
	ErrUpstreamGeneration = errors.New("upstream generation failed")

	// ErrNotFound marks a lookup with no matching records.
	ErrNotFound = errors.New("not found")
)

// InvalidInputf returns an ErrInvalidInput carrying a formatted reason.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// LedgerError wraps a storage failure as ErrLedgerUnavailable while keeping the cause.
func LedgerError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrLedgerUnavailable, op, err)
}
