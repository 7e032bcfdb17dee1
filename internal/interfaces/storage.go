// Package interfaces defines service contracts for riskgate
package interfaces

import (
	"context"

	"github.com/bobmcallan/riskgate/internal/models"
)

// LedgerFilter narrows a ReadAll to one key. An empty Key reads the whole collection.
type LedgerFilter struct {
	Key string
}

// LedgerStore is an append-only document ledger. There is no update or delete;
// ReadAll returns records in append order.
type LedgerStore interface {
	// Append stores payload as JSON under collection/key and returns the new record id.
	Append(ctx context.Context, collection, key string, payload any) (string, error)

	// ReadAll returns matching records ordered by append sequence, oldest first.
	ReadAll(ctx context.Context, collection string, filter LedgerFilter) ([]*models.LedgerRecord, error)

	Close() error
}
