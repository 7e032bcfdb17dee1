// Package profile stores what users tell us about their finances and risk appetite.
package profile

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
)

type Service struct {
	ledger interfaces.LedgerStore
	logger *common.Logger
}

var _ interfaces.ProfileService = (*Service)(nil)

func NewService(ledger interfaces.LedgerStore, logger *common.Logger) *Service {
	return &Service{
		ledger: ledger,
		logger: logger,
	}
}

// Save appends a profile keyed by its wallet address.
func (s *Service) Save(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	if p == nil {
		return nil, common.InvalidInputf("profile is required")
	}
	profile := *p
	profile.PersonalInfo.WalletAddress = strings.TrimSpace(profile.PersonalInfo.WalletAddress)
	if profile.PersonalInfo.WalletAddress == "" {
		return nil, common.InvalidInputf("personal_info.wallet_address is required")
	}
	if profile.ProfileID == "" {
		profile.ProfileID = uuid.NewString()
	}
	profile.CreatedAt = time.Now().UTC()

	if _, err := s.ledger.Append(ctx, models.CollectionProfile, profile.PersonalInfo.WalletAddress, &profile); err != nil {
		return nil, common.LedgerError("save profile", err)
	}

	s.logger.Info().
		Str("wallet", profile.PersonalInfo.WalletAddress).
		Str("profile_id", profile.ProfileID).
		Msg("User profile saved")

	return &profile, nil
}

// History returns all profiles for wallet, oldest first. An empty wallet reads every profile.
func (s *Service) History(ctx context.Context, wallet string) ([]*models.UserProfile, error) {
	rows, err := s.ledger.ReadAll(ctx, models.CollectionProfile, interfaces.LedgerFilter{Key: strings.TrimSpace(wallet)})
	if err != nil {
		return nil, common.LedgerError("read profiles", err)
	}

	profiles := make([]*models.UserProfile, 0, len(rows))
	for _, row := range rows {
		var p models.UserProfile
		if err := json.Unmarshal([]byte(row.Payload), &p); err != nil {
			return nil, common.LedgerError("decode profile", fmt.Errorf("record %s: %w", row.RecordID, err))
		}
		profiles = append(profiles, &p)
	}
	return profiles, nil
}

// Latest returns the most recently appended profile for wallet.
func (s *Service) Latest(ctx context.Context, wallet string) (*models.UserProfile, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, common.InvalidInputf("wallet_address is required")
	}

	profiles, err := s.History(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("profile for %s: %w", wallet, common.ErrNotFound)
	}
	return profiles[len(profiles)-1], nil
}
