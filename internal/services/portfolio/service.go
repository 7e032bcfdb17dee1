// Package portfolio records and reads wallet portfolio snapshots
package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/interfaces"
	"github.com/bobmcallan/riskgate/internal/models"
	"github.com/bobmcallan/riskgate/internal/services/risk"
)

// Service implements PortfolioService
type Service struct {
	ledger interfaces.LedgerStore
	logger *common.Logger
}

var _ interfaces.PortfolioService = (*Service)(nil)

// NewService creates a new portfolio service
func NewService(ledger interfaces.LedgerStore, logger *common.Logger) *Service {
	return &Service{
		ledger: ledger,
		logger: logger,
	}
}

// Record appends a snapshot. A missing id or timestamp is filled in and
// risk metrics are computed when the caller did not supply them.
func (s *Service) Record(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error) {
	if p == nil {
		return nil, common.InvalidInputf("portfolio is required")
	}
	snapshot := *p
	snapshot.WalletAddress = strings.TrimSpace(snapshot.WalletAddress)
	if snapshot.WalletAddress == "" {
		return nil, common.InvalidInputf("wallet_address is required")
	}
	if snapshot.Assets == nil {
		return nil, common.InvalidInputf("assets list is required")
	}
	if snapshot.PortfolioID == "" {
		snapshot.PortfolioID = uuid.NewString()
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.RiskMetrics == nil {
		metrics, err := risk.Compute(snapshot.Assets)
		if err != nil {
			return nil, err
		}
		snapshot.RiskMetrics = &metrics
	} else if err := risk.Validate(snapshot.Assets); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Append(ctx, models.CollectionPortfolio, snapshot.WalletAddress, &snapshot); err != nil {
		return nil, common.LedgerError("record portfolio", err)
	}

	s.logger.Info().
		Str("wallet", snapshot.WalletAddress).
		Str("portfolio_id", snapshot.PortfolioID).
		Int("assets", len(snapshot.Assets)).
		Str("risk_level", string(snapshot.RiskMetrics.RiskLevel)).
		Msg("Portfolio snapshot recorded")

	return &snapshot, nil
}

// History returns every snapshot for wallet in append order. An empty
// wallet returns snapshots for all wallets.
func (s *Service) History(ctx context.Context, wallet string) ([]*models.Portfolio, error) {
	rows, err := s.ledger.ReadAll(ctx, models.CollectionPortfolio, interfaces.LedgerFilter{Key: strings.TrimSpace(wallet)})
	if err != nil {
		return nil, common.LedgerError("read portfolios", err)
	}

	snapshots := make([]*models.Portfolio, 0, len(rows))
	for _, row := range rows {
		var p models.Portfolio
		if err := json.Unmarshal([]byte(row.Payload), &p); err != nil {
			return nil, common.LedgerError("decode portfolio", fmt.Errorf("record %s: %w", row.RecordID, err))
		}
		snapshots = append(snapshots, &p)
	}
	return snapshots, nil
}

// Latest returns the snapshot with the greatest timestamp, preferring the
// later append on equal timestamps.
func (s *Service) Latest(ctx context.Context, wallet string) (*models.Portfolio, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, common.InvalidInputf("wallet_address is required")
	}

	snapshots, err := s.History(ctx, wallet)
	if err != nil {
		return nil, err
	}

	var latest *models.Portfolio
	for _, p := range snapshots {
		if latest == nil || !p.Timestamp.Before(latest.Timestamp) {
			latest = p
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("portfolio for %s: %w", wallet, common.ErrNotFound)
	}
	return latest, nil
}
