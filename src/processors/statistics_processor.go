package processors

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/models"
)

const (
	defaultPaymentsPerYear = 4
	minPaymentsPerYear     = 1
	maxPaymentsPerYear     = 12
	daysPerYear            = 365.25
	minInferenceSpanYears  = 0.25
)

var hundred = decimal.NewFromInt(100)

type statisticsEstimatorImpl struct{}

// NewStatisticsEstimator creates a new instance of StatisticsEstimator.
func NewStatisticsEstimator() StatisticsEstimator {
	return &statisticsEstimatorImpl{}
}

// Estimate derives the annualised figures of one ticker from all of its
// ledger entries. The entries must not be filtered by date.
func (s *statisticsEstimatorImpl) Estimate(entries []models.LedgerEntry) models.TickerStatistics {
	stats := models.TickerStatistics{
		Currency:               ReferenceCurrency,
		AnnualDividendPerShare: decimal.Zero,
		LatestPricePerShare:    decimal.Zero,
		PaymentsPerYear:        defaultPaymentsPerYear,
		DividendYieldPercent:   decimal.Zero,
	}
	if len(entries) == 0 {
		return stats
	}

	stats.Ticker = entries[0].Ticker
	if entries[0].Currency != "" {
		stats.Currency = entries[0].Currency
	}

	latest := entries[0]
	for _, e := range entries[1:] {
		if e.PaymentDate.After(latest.PaymentDate) {
			latest = e
		}
	}
	stats.LatestPricePerShare = latest.PricePerShare

	stats.PaymentsPerYear = inferPaymentsPerYear(entries)

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.DividendPerShare)
	}
	average := sum.Div(decimal.NewFromInt(int64(len(entries))))
	stats.AnnualDividendPerShare = average.Mul(decimal.NewFromInt(int64(stats.PaymentsPerYear)))

	if stats.LatestPricePerShare.IsPositive() {
		stats.DividendYieldPercent = stats.AnnualDividendPerShare.Div(stats.LatestPricePerShare).Mul(hundred)
	}
	return stats
}

// inferPaymentsPerYear estimates the payment cadence from the span between
// the first and last distinct payment dates.
func inferPaymentsPerYear(entries []models.LedgerEntry) int {
	distinct := make(map[date.Date]struct{})
	for _, e := range entries {
		distinct[e.PaymentDate] = struct{}{}
	}
	if len(distinct) < 2 {
		return defaultPaymentsPerYear
	}

	dates := make([]date.Date, 0, len(distinct))
	for d := range distinct {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	spanYears := float64(dates[len(dates)-1].DaysSince(dates[0])) / daysPerYear
	if spanYears <= minInferenceSpanYears {
		return defaultPaymentsPerYear
	}

	perYear := int(math.Round(float64(len(dates)) / spanYears))
	if perYear < minPaymentsPerYear {
		return minPaymentsPerYear
	}
	if perYear > maxPaymentsPerYear {
		return maxPaymentsPerYear
	}
	return perYear
}

// EstimateAll groups the full ledger by ticker and estimates each group.
// The result is ordered by ticker.
func (s *statisticsEstimatorImpl) EstimateAll(ledger []models.LedgerEntry) []models.TickerStatistics {
	groups := make(map[string][]models.LedgerEntry)
	for _, e := range ledger {
		groups[e.Ticker] = append(groups[e.Ticker], e)
	}

	tickers := make([]string, 0, len(groups))
	for t := range groups {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	stats := make([]models.TickerStatistics, 0, len(tickers))
	for _, t := range tickers {
		stats = append(stats, s.Estimate(groups[t]))
	}
	return stats
}
