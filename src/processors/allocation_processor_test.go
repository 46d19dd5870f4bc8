package processors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/divtracker/backend/src/models"
)

func planner() AllocationPlanner {
	return NewAllocationPlanner(NewCurrencyConverter(TreatUnknownAsReference), nil)
}

func twoTickerStats() []models.TickerStatistics {
	return []models.TickerStatistics{
		{Ticker: "KO", Currency: "USD", AnnualDividendPerShare: dec("2"), LatestPricePerShare: dec("50"), PaymentsPerYear: 4},
		{Ticker: "SAP", Currency: "EUR", AnnualDividendPerShare: dec("1"), LatestPricePerShare: dec("20"), PaymentsPerYear: 1},
	}
}

func TestPlanEqualSplit(t *testing.T) {
	plan := planner().Plan(twoTickerStats(), dec("500"), "USD", 10)
	require.NotNil(t, plan)
	require.Len(t, plan.Rows, 2)
	assert.Equal(t, "equal_split", plan.Strategy)

	for _, row := range plan.Rows {
		assert.True(t, row.PerTickerTarget.Equal(dec("3000")), row.Ticker)
	}

	ko := plan.Rows[0]
	assert.Equal(t, int64(1500), ko.SharesNeeded)
	assert.True(t, ko.InvestmentNative.Equal(dec("75000")))
	assert.True(t, ko.InvestmentTarget.Equal(dec("75000")))
	assert.True(t, ko.MonthlyDividendTarget.Equal(dec("250")))

	sap := plan.Rows[1]
	assert.Equal(t, int64(2778), sap.SharesNeeded)
	assert.True(t, sap.InvestmentNative.Equal(dec("55560")))
	assert.True(t, sap.InvestmentTarget.Equal(dec("60004.8")))
	assert.True(t, sap.MonthlyDividendTarget.Equal(dec("250.02")), sap.MonthlyDividendTarget.String())

	assert.Equal(t, int64(4278), plan.TotalShares)
	assert.True(t, plan.TotalInvestment.Equal(dec("135004.8")))
	assert.True(t, plan.TotalMonthlyDividend.Equal(dec("500.02")))
	assert.True(t, plan.YearlyInvestment.Equal(dec("13500.48")))
	assert.True(t, plan.MonthlyInvestment.Equal(dec("1125.04")))
	assert.True(t, plan.SharesPerYear.Equal(dec("427.8")))
}

func TestPlanDegenerateInputs(t *testing.T) {
	p := planner()
	assert.Nil(t, p.Plan(nil, dec("500"), "USD", 10))
	assert.Nil(t, p.Plan(twoTickerStats(), decimal.Zero, "USD", 10))
	assert.Nil(t, p.Plan(twoTickerStats(), dec("-1"), "USD", 10))
}

func TestPlanGuardsDivisionByZero(t *testing.T) {
	stats := []models.TickerStatistics{
		{Ticker: "GROW", Currency: "USD", AnnualDividendPerShare: decimal.Zero, LatestPricePerShare: dec("100")},
	}
	plan := planner().Plan(stats, dec("100"), "usd", 0)
	require.NotNil(t, plan)
	assert.Equal(t, "USD", plan.TargetCurrency)
	assert.Equal(t, int64(0), plan.Rows[0].SharesNeeded)
	assert.True(t, plan.TotalInvestment.IsZero())
	assert.True(t, plan.MonthlyInvestment.IsZero())
	assert.True(t, plan.YearlyInvestment.IsZero())
	assert.True(t, plan.SharesPerMonth.IsZero())
}

type firstTickerOnly struct{}

func (firstTickerOnly) Name() string { return "first_only" }

func (firstTickerOnly) PerTickerTargets(target decimal.Decimal, stats []models.TickerStatistics) []decimal.Decimal {
	out := make([]decimal.Decimal, len(stats))
	out[0] = target
	return out
}

func TestPlanUsesStrategy(t *testing.T) {
	p := NewAllocationPlanner(NewCurrencyConverter(TreatUnknownAsReference), firstTickerOnly{})
	plan := p.Plan(twoTickerStats(), dec("100"), "USD", 1)
	require.NotNil(t, plan)
	assert.Equal(t, "first_only", plan.Strategy)
	assert.Equal(t, int64(600), plan.Rows[0].SharesNeeded)
	assert.Equal(t, int64(0), plan.Rows[1].SharesNeeded)
}
