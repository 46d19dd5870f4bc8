package models

import "github.com/shopspring/decimal"

// TickerStatistics are the annualized figures estimated for one ticker from
// its payment history.
type TickerStatistics struct {
	Ticker                 string          `json:"ticker"`
	Currency               string          `json:"currency"`
	AnnualDividendPerShare decimal.Decimal `json:"annual_dividend_per_share"`
	LatestPricePerShare    decimal.Decimal `json:"price_per_share"`
	PaymentsPerYear        int             `json:"payments_per_year"`
	DividendYieldPercent   decimal.Decimal `json:"dividend_yield"`
}
