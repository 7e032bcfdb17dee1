package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is one holding in a portfolio snapshot. ValueUSD is taken as given
// and allocations need not sum to 100.
type Asset struct {
	Symbol               string          `json:"symbol"`
	Name                 string          `json:"name,omitempty"`
	Quantity             decimal.Decimal `json:"quantity"`
	CurrentPriceUSD      decimal.Decimal `json:"current_price_usd"`
	ValueUSD             decimal.Decimal `json:"value_usd"`
	AllocationPercentage decimal.Decimal `json:"allocation_percentage"`
}

// Portfolio is an append-only snapshot of a wallet's holdings.
type Portfolio struct {
	PortfolioID   string          `json:"portfolio_id"`
	WalletAddress string          `json:"wallet_address"`
	Timestamp     time.Time       `json:"timestamp"`
	TotalValueUSD decimal.Decimal `json:"total_value_usd"`
	Assets        []Asset         `json:"assets"`
	RiskMetrics   *RiskMetrics    `json:"risk_metrics,omitempty"`
}

// RiskLevel classifies concentration of the largest allocation.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
	RiskLevelNone   RiskLevel = "N/A"
)

// Sentinel symbol reported when a portfolio has no assets.
const NoSymbol = "N/A"

// RiskMetrics is derived from a list of assets. DiversificationScore is
// 100 minus the mean squared allocation and is unbounded below.
type RiskMetrics struct {
	LargestAllocationSymbol     string          `json:"largest_allocation_symbol"`
	LargestAllocationPercentage decimal.Decimal `json:"largest_allocation_percentage"`
	RiskLevel                   RiskLevel       `json:"risk_level"`
	DiversificationScore        decimal.Decimal `json:"diversification_score"`
}

// EmptyRiskMetrics is the result for a portfolio with no assets.
func EmptyRiskMetrics() RiskMetrics {
	return RiskMetrics{
		LargestAllocationSymbol:     NoSymbol,
		LargestAllocationPercentage: decimal.Zero,
		RiskLevel:                   RiskLevelNone,
		DiversificationScore:        decimal.Zero,
	}
}
