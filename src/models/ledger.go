package models

import (
	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/date"
)

// LedgerEntry is a dividend payment joined with the share count of the
// holding it was fetched for. Total is always DividendPerShare × ShareCount.
type LedgerEntry struct {
	ID               string          `json:"id"`
	HoldingID        string          `json:"holding_id"`
	Ticker           string          `json:"ticker"`
	PaymentDate      date.Date       `json:"payment_date"`
	Currency         string          `json:"currency"`
	DividendPerShare decimal.Decimal `json:"dividend"`
	PricePerShare    decimal.Decimal `json:"price_per_share"`
	ShareCount       int64           `json:"shares"`
	Total            decimal.Decimal `json:"total"`
}

// LedgerPatch holds the user corrections for one entry. Nil fields are left
// unchanged.
type LedgerPatch struct {
	ShareCount       *int64           `json:"shares,omitempty"`
	PricePerShare    *decimal.Decimal `json:"price_per_share,omitempty"`
	DividendPerShare *decimal.Decimal `json:"dividend,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p LedgerPatch) IsEmpty() bool {
	return p.ShareCount == nil && p.PricePerShare == nil && p.DividendPerShare == nil
}

// CurrencyTotal is the sum of ledger totals paid in one currency.
type CurrencyTotal struct {
	Currency string          `json:"currency"`
	Total    decimal.Decimal `json:"total"`
}

// LedgerView is the filtered history returned to clients.
type LedgerView struct {
	Entries          []LedgerEntry   `json:"entries"`
	TotalsByCurrency []CurrencyTotal `json:"totals_by_currency"`
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	Tickers          []string        `json:"tickers"`
	Range            string          `json:"range"`
	Ticker           string          `json:"ticker,omitempty"`
}
