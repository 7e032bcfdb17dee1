package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvisoryChunk_Terminal(t *testing.T) {
	assert.False(t, ContentChunk(OriginAdvisory, "x").Terminal())
	assert.True(t, DoneChunk().Terminal())
	assert.True(t, ErrorChunk("boom").Terminal())
}

func TestRequestState_Terminal(t *testing.T) {
	for _, s := range []RequestState{StateReceived, StateValidated, StateAuthorized, StateStreaming} {
		assert.False(t, s.Terminal(), s)
	}
	for _, s := range []RequestState{StateCompleted, StateCancelled, StateFailed, StateRejected} {
		assert.True(t, s.Terminal(), s)
	}
}

func TestAsset_DecodesJSONNumbers(t *testing.T) {
	var a Asset
	err := json.Unmarshal([]byte(`{"symbol":"BTC","quantity":0.5,"current_price_usd":60000,"value_usd":30000,"allocation_percentage":60}`), &a)
	require.NoError(t, err)

	assert.Equal(t, "BTC", a.Symbol)
	assert.True(t, a.AllocationPercentage.Equal(decimal.NewFromInt(60)))

	out, err := json.Marshal(EmptyRiskMetrics())
	require.NoError(t, err)
	assert.JSONEq(t, `{"largest_allocation_symbol":"N/A","largest_allocation_percentage":0,"risk_level":"N/A","diversification_score":0}`, string(out))
}
