package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/models"
)

func paid(day, dividend, price string) models.LedgerEntry {
	return models.LedgerEntry{
		Ticker:           "KO",
		Currency:         "USD",
		PaymentDate:      date.MustParse(day),
		DividendPerShare: dec(dividend),
		PricePerShare:    dec(price),
	}
}

func TestEstimateQuarterlyOverOneYear(t *testing.T) {
	entries := []models.LedgerEntry{
		paid("2025-03-01", "0.6", "50"),
		paid("2024-09-01", "0.5", "0"),
		paid("2024-06-01", "0.5", "0"),
		paid("2024-03-01", "0.4", "40"),
	}

	stats := NewStatisticsEstimator().Estimate(entries)
	assert.Equal(t, "KO", stats.Ticker)
	assert.Equal(t, "USD", stats.Currency)
	assert.Equal(t, 4, stats.PaymentsPerYear)
	assert.True(t, stats.LatestPricePerShare.Equal(dec("50")))
	assert.True(t, stats.AnnualDividendPerShare.Equal(dec("2")), stats.AnnualDividendPerShare.String())
	assert.True(t, stats.DividendYieldPercent.Equal(dec("4")), stats.DividendYieldPercent.String())
}

func TestEstimateSingleDateDefaultsToQuarterly(t *testing.T) {
	entries := []models.LedgerEntry{
		paid("2024-03-01", "0.5", "20"),
		paid("2024-03-01", "0.7", "20"),
	}

	stats := NewStatisticsEstimator().Estimate(entries)
	assert.Equal(t, 4, stats.PaymentsPerYear)
	assert.True(t, stats.AnnualDividendPerShare.Equal(dec("2.4")))
	assert.True(t, stats.DividendYieldPercent.Equal(dec("12")))
}

func TestEstimateFrequencyBounds(t *testing.T) {
	e := NewStatisticsEstimator()

	short := []models.LedgerEntry{paid("2024-03-01", "1", "0"), paid("2024-03-31", "1", "0")}
	assert.Equal(t, 4, e.Estimate(short).PaymentsPerYear)

	var monthly []models.LedgerEntry
	for m := 1; m <= 12; m++ {
		monthly = append(monthly, paid(date.MustParse("2024-01-15").AddMonths(m-1).String(), "0.1", "10"))
	}
	assert.Equal(t, 12, e.Estimate(monthly).PaymentsPerYear)

	sparse := []models.LedgerEntry{paid("2020-01-01", "1", "0"), paid("2025-01-01", "1", "0")}
	assert.Equal(t, 1, e.Estimate(sparse).PaymentsPerYear)

	semiAnnual := []models.LedgerEntry{
		paid("2022-06-01", "1", "0"), paid("2022-12-01", "1", "0"),
		paid("2023-06-01", "1", "0"), paid("2023-12-01", "1", "0"),
		paid("2024-06-01", "1", "0"),
	}
	assert.Equal(t, 2, e.Estimate(semiAnnual).PaymentsPerYear)
}

func TestEstimateLatestPriceTiesAndMissingData(t *testing.T) {
	entries := []models.LedgerEntry{
		paid("2024-06-01", "1", "10"),
		paid("2024-06-01", "1", "20"),
		paid("2024-01-01", "1", "30"),
	}
	entries[0].Currency = ""
	stats := NewStatisticsEstimator().Estimate(entries)
	assert.True(t, stats.LatestPricePerShare.Equal(dec("10")))
	assert.Equal(t, "USD", stats.Currency)

	noPrice := NewStatisticsEstimator().Estimate([]models.LedgerEntry{paid("2024-06-01", "1", "0")})
	assert.True(t, noPrice.DividendYieldPercent.IsZero())
}

func TestEstimateAllGroupsByTicker(t *testing.T) {
	ko := paid("2024-06-01", "0.5", "60")
	msft := paid("2024-05-01", "0.75", "400")
	msft.Ticker = "MSFT"
	aapl := paid("2024-05-16", "0.25", "190")
	aapl.Ticker = "AAPL"

	stats := NewStatisticsEstimator().EstimateAll([]models.LedgerEntry{msft, ko, aapl, msft})
	require.Len(t, stats, 3)
	assert.Equal(t, "AAPL", stats[0].Ticker)
	assert.Equal(t, "KO", stats[1].Ticker)
	assert.Equal(t, "MSFT", stats[2].Ticker)
	assert.True(t, stats[2].AnnualDividendPerShare.Equal(dec("3")))
}
