package models

import "time"

// FetchFailure records a holding whose dividend history could not be fetched.
type FetchFailure struct {
	HoldingID string `json:"holding_id"`
	Ticker    string `json:"ticker"`
	Reason    string `json:"reason"`
}

// Session is the state of one submitted portfolio: the holdings snapshot taken
// at submission and the ledger built from it. It is passed explicitly between
// the pipeline stages and replaced as a whole on every change.
type Session struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Holdings  []Holding      `json:"holdings"`
	Ledger    []LedgerEntry  `json:"-"`
	Failures  []FetchFailure `json:"failures"`
}

// SessionSummary is returned when a session is created.
type SessionSummary struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Holdings   int            `json:"holdings"`
	EntryCount int            `json:"entries"`
	Failures   []FetchFailure `json:"failures"`
	Tickers    []string       `json:"tickers"`
}
