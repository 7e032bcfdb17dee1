package models

import "time"

// EntitlementRecord is one claim that a payment was (or was not) completed.
// The latest record for an address by append order is authoritative.
type EntitlementRecord struct {
	RecordID        string    `json:"record_id"`
	Address         string    `json:"address"`
	TransactionDone bool      `json:"transactionDone"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// EntitlementStatus is the derived view of an address's latest record.
type EntitlementStatus struct {
	Address    string     `json:"address"`
	Entitled   bool       `json:"entitled"`
	Records    int        `json:"records"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}
