// Package entitlement gates the advisory feature on recorded payment claims.
//
// Claims are taken as reported by the client and are not verified on-chain.
package entitlement

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/interfaces"
	"github.com/bobmcallan/riskgate/internal/models"
)

// Service implements EntitlementService over the ledger.
type Service struct {
	ledger interfaces.LedgerStore
	logger *common.Logger
}

var _ interfaces.EntitlementService = (*Service)(nil)

// NewService creates a new entitlement service
func NewService(ledger interfaces.LedgerStore, logger *common.Logger) *Service {
	return &Service{
		ledger: ledger,
		logger: logger,
	}
}

// IsEntitled reports the transaction_done flag of the latest record for address.
// Any ledger failure denies access along with an ErrLedgerUnavailable error.
func (s *Service) IsEntitled(ctx context.Context, address string) (bool, error) {
	records, err := s.History(ctx, address)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return false, nil
	}
	return records[len(records)-1].TransactionDone, nil
}

// RecordPayment appends a claim for address. Repeated claims are all kept.
func (s *Service) RecordPayment(ctx context.Context, address string, confirmed bool) (*models.EntitlementRecord, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, common.InvalidInputf("address is required")
	}

	record := &models.EntitlementRecord{
		Address:         address,
		TransactionDone: confirmed,
		RecordedAt:      time.Now().UTC(),
	}

	id, err := s.ledger.Append(ctx, models.CollectionSubscription, address, record)
	if err != nil {
		return nil, common.LedgerError("record payment", err)
	}
	record.RecordID = id

	s.logger.Info().
		Str("address", address).
		Bool("transaction_done", confirmed).
		Str("record_id", id).
		Msg("Payment claim recorded")

	return record, nil
}

// History returns every claim for address, oldest first.
func (s *Service) History(ctx context.Context, address string) ([]*models.EntitlementRecord, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, common.InvalidInputf("address is required")
	}

	rows, err := s.ledger.ReadAll(ctx, models.CollectionSubscription, interfaces.LedgerFilter{Key: address})
	if err != nil {
		return nil, common.LedgerError("read subscriptions", err)
	}

	records := make([]*models.EntitlementRecord, 0, len(rows))
	for _, row := range rows {
		var rec models.EntitlementRecord
		if err := json.Unmarshal([]byte(row.Payload), &rec); err != nil {
			return nil, common.LedgerError("decode subscription", fmt.Errorf("record %s: %w", row.RecordID, err))
		}
		rec.RecordID = row.RecordID
		if rec.RecordedAt.IsZero() {
			rec.RecordedAt = row.CreatedAt
		}
		records = append(records, &rec)
	}
	return records, nil
}

// Status summarises the latest claim for address.
func (s *Service) Status(ctx context.Context, address string) (*models.EntitlementStatus, error) {
	records, err := s.History(ctx, address)
	if err != nil {
		return nil, err
	}

	status := &models.EntitlementStatus{
		Address: strings.TrimSpace(address),
		Records: len(records),
	}
	if len(records) > 0 {
		latest := records[len(records)-1]
		status.Entitled = latest.TransactionDone
		status.RecordedAt = &latest.RecordedAt
	}
	return status, nil
}
