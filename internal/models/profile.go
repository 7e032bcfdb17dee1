package models

import "time"

// UserProfile captures what a user tells us about themselves and their
// appetite for risk. Keyed by PersonalInfo.WalletAddress.
type UserProfile struct {
	ProfileID        string           `json:"profile_id"`
	PersonalInfo     PersonalInfo     `json:"personal_info"`
	FinancialProfile FinancialProfile `json:"financial_profile"`
	RiskStrategy     RiskStrategy     `json:"risk_strategy"`
	CreatedAt        time.Time        `json:"created_at"`
}

type PersonalInfo struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	WalletAddress     string `json:"wallet_address"`
	TradingExperience string `json:"trading_experience"`
	Profession        string `json:"profession"`
}

type FinancialProfile struct {
	MonthlyIncome         int64  `json:"monthly_income"`
	TotalInvestableAmount int64  `json:"total_investable_amount"`
	MonthlyInvestment     int64  `json:"monthly_investment"`
	EmergencyFunds        int64  `json:"emergency_funds"`
	ExistingInvestments   string `json:"existing_investments"`
}

type RiskStrategy struct {
	RiskTolerance       string `json:"risk_tolerance"`
	MaxPortfolioLoss    string `json:"max_portfolio_loss"`
	InvestmentTimeframe string `json:"investment_timeframe"`
	WithdrawalNeeds     string `json:"withdrawal_needs"`
}
