package processors

import (
	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/models"
)

// CurrencyConverter converts amounts between currencies using a static rate table.
type CurrencyConverter interface {
	Convert(amount decimal.Decimal, from, to string) decimal.Decimal
	ConvertStrict(amount decimal.Decimal, from, to string) (decimal.Decimal, error)
	IsSupported(code string) bool
	SupportedCurrencies() []string
}

// LedgerBuilder joins fetched dividend records with holdings.
type LedgerBuilder interface {
	Build(holdings []models.Holding, recordsByHolding map[string][]models.DividendRecord) []models.LedgerEntry
	ApplyPatch(entry models.LedgerEntry, patch models.LedgerPatch) (models.LedgerEntry, error)
}

// LedgerQuery filters and aggregates a ledger for display.
type LedgerQuery interface {
	Filter(ledger []models.LedgerEntry, filter LedgerFilter, today date.Date) []models.LedgerEntry
	AggregateByCurrency(entries []models.LedgerEntry) []models.CurrencyTotal
	Total(entries []models.LedgerEntry) decimal.Decimal
	Tickers(entries []models.LedgerEntry) []string
}

// StatisticsEstimator derives annualised per-ticker figures from payment history.
type StatisticsEstimator interface {
	Estimate(entries []models.LedgerEntry) models.TickerStatistics
	EstimateAll(ledger []models.LedgerEntry) []models.TickerStatistics
}

// AllocationPlanner sizes the investment needed to reach a monthly dividend income.
type AllocationPlanner interface {
	Plan(stats []models.TickerStatistics, targetMonthlyIncome decimal.Decimal, targetCurrency string, horizonYears int) *models.AllocationPlan
}
