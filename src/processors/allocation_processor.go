package processors

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/models"
)

var monthsPerYear = decimal.NewFromInt(12)

// AllocationStrategy splits the annual income target across tickers.
// PerTickerTargets returns one target per element of stats, in the same order.
type AllocationStrategy interface {
	Name() string
	PerTickerTargets(targetAnnualIncome decimal.Decimal, stats []models.TickerStatistics) []decimal.Decimal
}

// EqualSplit gives every ticker the same share of the annual target,
// regardless of its yield.
type EqualSplit struct{}

func (EqualSplit) Name() string { return "equal_split" }

func (EqualSplit) PerTickerTargets(targetAnnualIncome decimal.Decimal, stats []models.TickerStatistics) []decimal.Decimal {
	targets := make([]decimal.Decimal, len(stats))
	if len(stats) == 0 {
		return targets
	}
	each := targetAnnualIncome.Div(decimal.NewFromInt(int64(len(stats))))
	for i := range targets {
		targets[i] = each
	}
	return targets
}

type allocationPlannerImpl struct {
	converter CurrencyConverter
	strategy  AllocationStrategy
}

// NewAllocationPlanner creates a planner. A nil strategy means EqualSplit.
func NewAllocationPlanner(converter CurrencyConverter, strategy AllocationStrategy) AllocationPlanner {
	if strategy == nil {
		strategy = EqualSplit{}
	}
	return &allocationPlannerImpl{converter: converter, strategy: strategy}
}

// Plan sizes the holdings needed to earn targetMonthlyIncome in targetCurrency.
// It returns nil when there are no statistics or the target is not positive.
func (p *allocationPlannerImpl) Plan(stats []models.TickerStatistics, targetMonthlyIncome decimal.Decimal, targetCurrency string, horizonYears int) *models.AllocationPlan {
	if len(stats) == 0 || !targetMonthlyIncome.IsPositive() {
		return nil
	}
	targetCurrency = strings.ToUpper(strings.TrimSpace(targetCurrency))
	if targetCurrency == "" {
		targetCurrency = ReferenceCurrency
	}

	targetAnnual := targetMonthlyIncome.Mul(monthsPerYear)
	perTicker := p.strategy.PerTickerTargets(targetAnnual, stats)

	plan := &models.AllocationPlan{
		TargetCurrency:       targetCurrency,
		TargetMonthlyIncome:  targetMonthlyIncome,
		HorizonYears:         horizonYears,
		Strategy:             p.strategy.Name(),
		Rows:                 make([]models.AllocationRow, 0, len(stats)),
		TotalInvestment:      decimal.Zero,
		TotalMonthlyDividend: decimal.Zero,
		MonthlyInvestment:    decimal.Zero,
		YearlyInvestment:     decimal.Zero,
		SharesPerMonth:       decimal.Zero,
		SharesPerYear:        decimal.Zero,
	}

	for i, s := range stats {
		annualTarget := p.converter.Convert(s.AnnualDividendPerShare, s.Currency, targetCurrency)

		var shares int64
		if annualTarget.IsPositive() {
			shares = perTicker[i].Div(annualTarget).Ceil().IntPart()
		}
		sharesDec := decimal.NewFromInt(shares)

		investmentNative := sharesDec.Mul(s.LatestPricePerShare)
		row := models.AllocationRow{
			Ticker:                 s.Ticker,
			NativeCurrency:         s.Currency,
			PricePerShare:          s.LatestPricePerShare,
			AnnualDividendPerShare: s.AnnualDividendPerShare,
			DividendYieldPercent:   s.DividendYieldPercent,
			PerTickerTarget:        perTicker[i],
			SharesNeeded:           shares,
			InvestmentNative:       investmentNative,
			InvestmentTarget:       p.converter.Convert(investmentNative, s.Currency, targetCurrency),
			MonthlyDividendTarget:  sharesDec.Mul(annualTarget).Div(monthsPerYear),
		}
		plan.Rows = append(plan.Rows, row)

		plan.TotalInvestment = plan.TotalInvestment.Add(row.InvestmentTarget)
		plan.TotalMonthlyDividend = plan.TotalMonthlyDividend.Add(row.MonthlyDividendTarget)
		plan.TotalShares += shares
	}

	if horizonYears > 0 {
		years := decimal.NewFromInt(int64(horizonYears))
		months := years.Mul(monthsPerYear)
		totalShares := decimal.NewFromInt(plan.TotalShares)
		plan.MonthlyInvestment = plan.TotalInvestment.Div(months)
		plan.YearlyInvestment = plan.TotalInvestment.Div(years)
		plan.SharesPerMonth = totalShares.Div(months)
		plan.SharesPerYear = totalShares.Div(years)
	}
	return plan
}
