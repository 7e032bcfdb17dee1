// Package sqlite implements the ledger on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/interfaces"
	"github.com/bobmcallan/riskgate/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	record_id  TEXT NOT NULL UNIQUE,
	collection TEXT NOT NULL,
	key        TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ledger_collection_key ON ledger(collection, key, seq);
`

// LedgerStore implements interfaces.LedgerStore. AUTOINCREMENT gives a
// strictly increasing seq, which is the append order.
type LedgerStore struct {
	db     *sql.DB
	logger *common.Logger
}

var _ interfaces.LedgerStore = (*LedgerStore)(nil)

// NewLedgerStore opens (or creates) the ledger at path. A DSN starting with
// "file:" is passed to the driver untouched, which lets tests use in-memory databases.
func NewLedgerStore(logger *common.Logger, path string) (*LedgerStore, error) {
	dsn := path
	if !strings.HasPrefix(path, "file:") {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve ledger path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
		// Append-only audit trail: fsync every write, never shrink
		dsn = absPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=auto_vacuum(NONE)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	// SQLite serialises writers anyway
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping ledger: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ledger schema: %w", err)
	}

	logger.Info().Str("path", path).Msg("SQLite ledger initialized")

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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ledger (record_id, collection, key, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		id.String(), collection, key, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("failed to append %s record: %w", collection, err)
	}
	return id.String(), nil
}

func (s *LedgerStore) ReadAll(ctx context.Context, collection string, filter interfaces.LedgerFilter) ([]*models.LedgerRecord, error) {
	query := `SELECT seq, record_id, collection, key, payload, created_at FROM ledger WHERE collection = ?`
	args := []any{collection}
	if filter.Key != "" {
		query += ` AND key = ?`
		args = append(args, filter.Key)
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s records: %w", collection, err)
	}
	defer rows.Close()

	var records []*models.LedgerRecord
	for rows.Next() {
		var (
			rec       models.LedgerRecord
			createdAt string
		)
		if err := rows.Scan(&rec.Seq, &rec.RecordID, &rec.Collection, &rec.Key, &rec.Payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", collection, err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = t
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s records: %w", collection, err)
	}
	return records, nil
}

func (s *LedgerStore) Close() error {
	return s.db.Close()
}
