// Package storage selects and opens the configured ledger backend.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/interfaces"
	"github.com/bobmcallan/riskgate/internal/storage/sqlite"
	"github.com/bobmcallan/riskgate/internal/storage/surrealdb"
)

// NewLedgerStore opens the ledger named by config.Storage.Backend.
// Supported backends: "sqlite" (default), "surrealdb".
func NewLedgerStore(logger *common.Logger, config *common.Config) (interfaces.LedgerStore, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = common.StorageBackendSQLite
	}

	switch backend {
	case common.StorageBackendSQLite:
		return sqlite.NewLedgerStore(logger, config.Storage.SQLite.Path)

	case common.StorageBackendSurrealDB:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return surrealdb.Connect(ctx, logger, config.Storage.SurrealDB)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: sqlite, surrealdb)", backend)
	}
}
