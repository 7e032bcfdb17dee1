package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/models"
)

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "riskgate.db")
	cfg.Clients.Gemini.APIKey = ""
	return cfg
}

func TestNewAppWithConfig_WiresServices(t *testing.T) {
	a, err := NewAppWithConfig(testConfig(t), common.NewSilentLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Ledger)
	assert.Nil(t, a.AdvisoryEngine)
	assert.NotNil(t, a.EntitlementService)
	assert.NotNil(t, a.PortfolioService)
	assert.NotNil(t, a.ProfileService)
	assert.NotNil(t, a.Orchestrator)
}

func TestNewAppWithConfig_AdvisoryWithoutEngine(t *testing.T) {
	a, err := NewAppWithConfig(testConfig(t), common.NewSilentLogger())
	require.NoError(t, err)
	defer a.Close()
	ctx := context.Background()

	_, err = a.EntitlementService.RecordPayment(ctx, "0xA", true)
	require.NoError(t, err)

	_, err = a.Orchestrator.HandleAdvisoryRequest(ctx, models.AdvisoryRequest{
		Address: "0xA",
		Prompt:  "advise",
		Portfolio: &models.Portfolio{Assets: []models.Asset{
			{Symbol: "BTC", AllocationPercentage: decimal.NewFromInt(100)},
		}},
	})
	assert.True(t, errors.Is(err, common.ErrUpstreamGeneration))
}

func TestNewAppWithConfig_BadBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "nope"

	_, err := NewAppWithConfig(cfg, common.NewSilentLogger())
	assert.Error(t, err)
}
