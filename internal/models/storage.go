package models

import "time"

// LedgerRecord is the storage envelope for every appended document.
// Seq orders records within a collection by append time.
type LedgerRecord struct {
	RecordID   string    `json:"record_id"`
	Collection string    `json:"collection"`
	Key        string    `json:"key"`
	Seq        int64     `json:"seq"`
	Payload    string    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}

// Ledger collections.
const (
	CollectionSubscription = "subscription"
	CollectionPortfolio    = "portfolio"
	CollectionProfile      = "profile"
)
