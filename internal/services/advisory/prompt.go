package advisory

import (
	"encoding/json"
	"strings"

	"github.com/bobmcallan/riskgate/internal/models"
)

// DefaultSystemInstruction frames the engine as a portfolio risk advisor.
const DefaultSystemInstruction = `You are a crypto portfolio risk advisor. Use the portfolio context and risk metrics provided to answer the user's request.
Be concrete about allocation changes and their effect on concentration. Do not present advice as a guarantee of returns.`

// PromptContext is the optional material embedded alongside the user's request.
type PromptContext struct {
	Portfolio *models.Portfolio
	Metrics   *models.RiskMetrics
	Profile   *models.UserProfile
}

// ComposePrompt builds the engine prompt from the user's request and its context.
func ComposePrompt(prompt string, pc PromptContext) string {
	var sb strings.Builder

	if pc.Portfolio != nil {
		sb.WriteString("Portfolio context:\n")
		sb.WriteString(marshalIndent(pc.Portfolio))
		sb.WriteString("\n\n")
	}

	if pc.Metrics != nil {
		sb.WriteString("Risk metrics:\n")
		sb.WriteString("- Largest allocation: ")
		sb.WriteString(pc.Metrics.LargestAllocationSymbol)
		sb.WriteString(" (")
		sb.WriteString(pc.Metrics.LargestAllocationPercentage.String())
		sb.WriteString("%)\n- Risk level: ")
		sb.WriteString(string(pc.Metrics.RiskLevel))
		sb.WriteString("\n- Diversification score: ")
		sb.WriteString(pc.Metrics.DiversificationScore.String())
		sb.WriteString("\n\n")
	}

	if pc.Profile != nil {
		rs := pc.Profile.RiskStrategy
		if rs.RiskTolerance != "" || rs.InvestmentTimeframe != "" {
			sb.WriteString("Investor profile:\n")
			if rs.RiskTolerance != "" {
				sb.WriteString("- Risk tolerance: " + rs.RiskTolerance + "\n")
			}
			if rs.InvestmentTimeframe != "" {
				sb.WriteString("- Investment timeframe: " + rs.InvestmentTimeframe + "\n")
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("User request:\n")
	sb.WriteString(strings.TrimSpace(prompt))
	return sb.String()
}

func marshalIndent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
