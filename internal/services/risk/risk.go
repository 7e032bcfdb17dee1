// Package risk derives concentration metrics from portfolio allocations.
package risk

import (
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/models"
)

// Concentration thresholds on the largest allocation percentage.
var (
	HighThreshold   = decimal.NewFromInt(50)
	MediumThreshold = decimal.NewFromInt(30)
)

var hundred = decimal.NewFromInt(100)

// Compute returns the risk metrics for assets. An empty list yields the
// N/A sentinel. The largest allocation keeps the first asset on ties and
// the diversification score is 100 minus the mean squared allocation, so
// it goes negative for concentrated portfolios.
func Compute(assets []models.Asset) (models.RiskMetrics, error) {
	if err := Validate(assets); err != nil {
		return models.RiskMetrics{}, err
	}
	if len(assets) == 0 {
		return models.EmptyRiskMetrics(), nil
	}

	largest := assets[0]
	sumSquares := decimal.Zero
	for _, a := range assets {
		if a.AllocationPercentage.GreaterThan(largest.AllocationPercentage) {
			largest = a
		}
		sumSquares = sumSquares.Add(a.AllocationPercentage.Mul(a.AllocationPercentage))
	}

	meanSquare := sumSquares.Div(decimal.NewFromInt(int64(len(assets))))

	return models.RiskMetrics{
		LargestAllocationSymbol:     largest.Symbol,
		LargestAllocationPercentage: largest.AllocationPercentage,
		RiskLevel:                   Level(largest.AllocationPercentage),
		DiversificationScore:        hundred.Sub(meanSquare),
	}, nil
}

// Level classifies a largest allocation percentage.
func Level(largest decimal.Decimal) models.RiskLevel {
	switch {
	case largest.GreaterThanOrEqual(HighThreshold):
		return models.RiskLevelHigh
	case largest.GreaterThanOrEqual(MediumThreshold):
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

// Validate rejects allocations outside [0,100] and negative quantities or prices.
func Validate(assets []models.Asset) error {
	for i, a := range assets {
		if a.AllocationPercentage.IsNegative() || a.AllocationPercentage.GreaterThan(hundred) {
			return common.InvalidInputf("asset %d (%s): allocation_percentage %s outside [0,100]", i, a.Symbol, a.AllocationPercentage)
		}
		if a.Quantity.IsNegative() {
			return common.InvalidInputf("asset %d (%s): negative quantity", i, a.Symbol)
		}
		if a.CurrentPriceUSD.IsNegative() {
			return common.InvalidInputf("asset %d (%s): negative current_price_usd", i, a.Symbol)
		}
	}
	return nil
}
