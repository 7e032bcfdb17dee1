package profile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/models"
	"github.com/bobmcallan/riskgate/internal/storage/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:profile_%d?mode=memory&cache=shared", time.Now().UnixNano())
	ledger, err := sqlite.NewLedgerStore(common.NewSilentLogger(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })
	return NewService(ledger, common.NewSilentLogger())
}

func TestSaveAndLatest(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first := &models.UserProfile{
		PersonalInfo: models.PersonalInfo{Name: "Ada", WalletAddress: "0xA"},
		RiskStrategy: models.RiskStrategy{RiskTolerance: "low"},
	}
	saved, err := svc.Save(ctx, first)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ProfileID)

	second := &models.UserProfile{
		PersonalInfo:     models.PersonalInfo{Name: "Ada", WalletAddress: " 0xA "},
		FinancialProfile: models.FinancialProfile{MonthlyIncome: 5000},
		RiskStrategy:     models.RiskStrategy{RiskTolerance: "high", InvestmentTimeframe: "5y"},
	}
	_, err = svc.Save(ctx, second)
	require.NoError(t, err)

	latest, err := svc.Latest(ctx, "0xA")
	require.NoError(t, err)
	assert.Equal(t, "high", latest.RiskStrategy.RiskTolerance)
	assert.Equal(t, int64(5000), latest.FinancialProfile.MonthlyIncome)

	history, err := svc.History(ctx, "0xA")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestSave_RequiresWallet(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Save(context.Background(), &models.UserProfile{})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.Save(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestLatest_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Latest(context.Background(), "0xNONE")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
