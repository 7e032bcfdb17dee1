// Package surrealdb implements the ledger on a remote SurrealDB instance.
package surrealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/interfaces"
	"github.com/bobmcallan/riskgate/internal/models"
)

const ledgerTable = "ledger"

// ledgerRow is the stored document. The SurrealDB record id is the ledger record id.
type ledgerRow struct {
	ID         *surrealmodels.RecordID `json:"id,omitempty"`
	RecordID   string                  `json:"record_id"`
	Collection string                  `json:"collection"`
	Key        string                  `json:"key"`
	Seq        int64                   `json:"seq"`
	Payload    string                  `json:"payload"`
	CreatedAt  time.Time               `json:"created_at"`
}

// LedgerStore implements interfaces.LedgerStore using SurrealDB.
type LedgerStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

var _ interfaces.LedgerStore = (*LedgerStore)(nil)

// Connect dials SurrealDB, signs in and selects the configured namespace/database.
func Connect(ctx context.Context, logger *common.Logger, config common.SurrealDBConfig) (*LedgerStore, error) {
	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	store, err := NewLedgerStore(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("SurrealDB ledger initialized")

	return store, nil
}

// NewLedgerStore wraps an already selected database and ensures the ledger table exists.
func NewLedgerStore(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*LedgerStore, error) {
	// SurrealDB v3 errors on querying non-existent tables
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", ledgerTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", ledgerTable, err)
	}
	return &LedgerStore{db: db, logger: logger}, nil
}

func (s *LedgerStore) Append(ctx context.Context, collection, key string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s payload: %w", collection, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate record id: %w", err)
	}

	now := time.Now().UTC()
	row := ledgerRow{
		RecordID:   id.String(),
		Collection: collection,
		Key:        key,
		Seq:        now.UnixNano(),
		Payload:    string(data),
		CreatedAt:  now,
	}

	sql := "CREATE $rid CONTENT $record"
	vars := map[string]any{
		"rid":    surrealmodels.NewRecordID(ledgerTable, row.RecordID),
		"record": row,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]ledgerRow](ctx, s.db, sql, vars)
		if err == nil {
			return row.RecordID, nil
		}
		lastErr = err
		s.logger.Warn().Err(err).Int("attempt", attempt).Str("collection", collection).Msg("Ledger append failed")
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("failed to append %s record after retries: %w", collection, lastErr)
}

func (s *LedgerStore) ReadAll(ctx context.Context, collection string, filter interfaces.LedgerFilter) ([]*models.LedgerRecord, error) {
	sql := "SELECT * FROM ledger WHERE collection = $collection"
	vars := map[string]any{"collection": collection}
	if filter.Key != "" {
		sql += " AND key = $key"
		vars["key"] = filter.Key
	}
	// record_id is a v7 uuid, so it breaks seq ties in creation order
	sql += " ORDER BY seq ASC, record_id ASC"

	results, err := surrealdb.Query[[]ledgerRow](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s records: %w", collection, err)
	}

	var records []*models.LedgerRecord
	if results != nil && len(*results) > 0 {
		for _, row := range (*results)[0].Result {
			records = append(records, &models.LedgerRecord{
				RecordID:   row.RecordID,
				Collection: row.Collection,
				Key:        row.Key,
				Seq:        row.Seq,
				Payload:    row.Payload,
				CreatedAt:  row.CreatedAt,
			})
		}
	}
	return records, nil
}

func (s *LedgerStore) Close() error {
	return s.db.Close(context.Background())
}
