package processors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/models"
)

var ErrUnknownPreset = errors.New("unknown date range preset")

// DateRangePreset names a window of history relative to the current date.
type DateRangePreset string

const (
	RangeAll         DateRangePreset = "all"
	RangeLastQuarter DateRangePreset = "last_quarter"
	RangeLast6Months DateRangePreset = "last_6_months"
	RangeLastYear    DateRangePreset = "last_year"
	RangeLast2Years  DateRangePreset = "last_2_years"
	RangeLast3Years  DateRangePreset = "last_3_years"
	RangeLast5Years  DateRangePreset = "last_5_years"
)

// DateRangePresets lists the accepted presets in display order.
var DateRangePresets = []DateRangePreset{
	RangeAll, RangeLastQuarter, RangeLast6Months, RangeLastYear, RangeLast2Years, RangeLast3Years, RangeLast5Years,
}

// ParseDateRangePreset reads a preset name. An empty string means RangeAll.
func ParseDateRangePreset(s string) (DateRangePreset, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RangeAll, nil
	}
	for _, p := range DateRangePresets {
		if string(p) == s {
			return p, nil
		}
	}
	return RangeAll, fmt.Errorf("%w: %q", ErrUnknownPreset, s)
}

// Resolve returns the inclusive day range the preset covers as of today.
// ok is false for RangeAll.
func (p DateRangePreset) Resolve(today date.Date) (r date.Range, ok bool) {
	switch p {
	case RangeLastQuarter:
		end := today.StartOfQuarter().Add(-1)
		return date.Range{From: end.StartOfQuarter(), To: end}, true
	case RangeLast6Months:
		return date.Range{From: today.AddMonths(-6), To: today}, true
	case RangeLastYear:
		return date.Range{From: today.AddYears(-1), To: today}, true
	case RangeLast2Years:
		return date.Range{From: today.AddYears(-2), To: today}, true
	case RangeLast3Years:
		return date.Range{From: today.AddYears(-3), To: today}, true
	case RangeLast5Years:
		return date.Range{From: today.AddYears(-5), To: today}, true
	default:
		return date.Range{}, false
	}
}

// LedgerFilter selects ledger entries. The zero value selects everything.
type LedgerFilter struct {
	Ticker string
	Preset DateRangePreset
}

type ledgerQueryImpl struct{}

// NewLedgerQuery creates a new instance of LedgerQuery.
func NewLedgerQuery() LedgerQuery {
	return &ledgerQueryImpl{}
}

// Filter keeps the entries matching the ticker (case-insensitive) and falling
// inside the preset's range, preserving ledger order.
func (q *ledgerQueryImpl) Filter(ledger []models.LedgerEntry, filter LedgerFilter, today date.Date) []models.LedgerEntry {
	ticker := strings.TrimSpace(filter.Ticker)
	window, bounded := filter.Preset.Resolve(today)

	out := make([]models.LedgerEntry, 0, len(ledger))
	for _, e := range ledger {
		if ticker != "" && !strings.EqualFold(e.Ticker, ticker) {
			continue
		}
		if bounded && !window.Contains(e.PaymentDate) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// AggregateByCurrency sums entry totals per currency, ordered by currency code.
func (q *ledgerQueryImpl) AggregateByCurrency(entries []models.LedgerEntry) []models.CurrencyTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range entries {
		code := strings.ToUpper(e.Currency)
		sums[code] = sums[code].Add(e.Total)
	}

	totals := make([]models.CurrencyTotal, 0, len(sums))
	for code, sum := range sums {
		totals = append(totals, models.CurrencyTotal{Currency: code, Total: sum})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Currency < totals[j].Currency })
	return totals
}

// Total sums entry totals without regard to currency.
func (q *ledgerQueryImpl) Total(entries []models.LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Total)
	}
	return total
}

// Tickers returns the distinct tickers of entries in lexical order.
func (q *ledgerQueryImpl) Tickers(entries []models.LedgerEntry) []string {
	seen := make(map[string]struct{})
	tickers := []string{}
	for _, e := range entries {
		if _, ok := seen[e.Ticker]; ok {
			continue
		}
		seen[e.Ticker] = struct{}{}
		tickers = append(tickers, e.Ticker)
	}
	sort.Strings(tickers)
	return tickers
}
