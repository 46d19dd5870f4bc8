package models

import (
	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/date"
)

// DividendRecord is one payment event for a ticker, as reported by the provider.
type DividendRecord struct {
	PaymentDate      date.Date       `json:"payment_date"`
	Ticker           string          `json:"ticker"`
	Currency         string          `json:"currency"`
	DividendPerShare decimal.Decimal `json:"dividend"`
	PricePerShare    decimal.Decimal `json:"price_per_share"` // zero when unknown
}

// ProviderDividend is the wire shape of a single payment returned by the
// dividend history backend.
type ProviderDividend struct {
	PaymentDate   date.Date        `json:"payment_date"`
	Ticker        string           `json:"ticker"`
	Currency      string           `json:"currency"`
	Dividend      decimal.Decimal  `json:"dividend"`
	PricePerShare *decimal.Decimal `json:"price_per_share,omitempty"`
}

// DividendHistoryResponse is the payload of GET /dividends/{ticker}.
type DividendHistoryResponse struct {
	Ticker    string             `json:"ticker"`
	Currency  string             `json:"currency"`
	Dividends []ProviderDividend `json:"dividends"`
}

// Records converts the wire payload into DividendRecords. Missing per-payment
// currency or ticker fall back to the response level values and a missing
// price defaults to zero.
func (r DividendHistoryResponse) Records() []DividendRecord {
	records := make([]DividendRecord, 0, len(r.Dividends))
	for _, d := range r.Dividends {
		rec := DividendRecord{
			PaymentDate:      d.PaymentDate,
			Ticker:           d.Ticker,
			Currency:         d.Currency,
			DividendPerShare: d.Dividend,
		}
		if rec.Ticker == "" {
			rec.Ticker = r.Ticker
		}
		if rec.Currency == "" {
			rec.Currency = r.Currency
		}
		if d.PricePerShare != nil {
			rec.PricePerShare = *d.PricePerShare
		}
		records = append(records, rec)
	}
	return records
}
