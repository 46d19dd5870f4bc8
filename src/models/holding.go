package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/date"
)

func init() {
	// API consumers read amounts as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Holding is a user's position in one ticker.
type Holding struct {
	ID              string    `json:"id"`
	Ticker          string    `json:"ticker"`
	ShareCount      int64     `json:"share_count"`
	AcquisitionDate date.Date `json:"acquisition_date"`
}

// Key returns the lowercase ticker used for lookups and provider requests.
func (h Holding) Key() string { return NormalizeTicker(h.Ticker) }

// DisplayTicker returns the uppercase ticker shown to users.
func (h Holding) DisplayTicker() string { return DisplayTicker(h.Ticker) }

// NormalizeTicker trims and lowercases a ticker symbol.
func NormalizeTicker(ticker string) string { return strings.ToLower(strings.TrimSpace(ticker)) }

// DisplayTicker trims and uppercases a ticker symbol.
func DisplayTicker(ticker string) string { return strings.ToUpper(strings.TrimSpace(ticker)) }
