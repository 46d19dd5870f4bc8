package models

import "github.com/shopspring/decimal"

// AllocationRow is the sizing for one ticker of an AllocationPlan.
type AllocationRow struct {
	Ticker                 string          `json:"ticker"`
	NativeCurrency         string          `json:"native_currency"`
	PricePerShare          decimal.Decimal `json:"price_per_share"`
	AnnualDividendPerShare decimal.Decimal `json:"annual_dividend_per_share"`
	DividendYieldPercent   decimal.Decimal `json:"dividend_yield"`
	PerTickerTarget        decimal.Decimal `json:"per_ticker_target"`
	SharesNeeded           int64           `json:"shares_needed"`
	InvestmentNative       decimal.Decimal `json:"investment_native"`
	InvestmentTarget       decimal.Decimal `json:"investment_target"`
	MonthlyDividendTarget  decimal.Decimal `json:"monthly_dividend_target"`
}

// AllocationPlan is the investment needed to reach a monthly dividend income.
// All portfolio level amounts are in TargetCurrency.
type AllocationPlan struct {
	TargetCurrency       string          `json:"target_currency"`
	TargetMonthlyIncome  decimal.Decimal `json:"target_monthly_income"`
	HorizonYears         int             `json:"horizon_years"`
	Strategy             string          `json:"strategy"`
	Rows                 []AllocationRow `json:"rows"`
	TotalInvestment      decimal.Decimal `json:"total_investment"`
	TotalMonthlyDividend decimal.Decimal `json:"total_monthly_dividend"`
	TotalShares          int64           `json:"total_shares"`
	MonthlyInvestment    decimal.Decimal `json:"monthly_investment"`
	YearlyInvestment     decimal.Decimal `json:"yearly_investment"`
	SharesPerMonth       decimal.Decimal `json:"shares_per_month"`
	SharesPerYear        decimal.Decimal `json:"shares_per_year"`
}
