package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/config"
	"github.com/username/divtracker/backend/src/models"
	"github.com/username/divtracker/backend/src/parsers/holdings"
	"github.com/username/divtracker/backend/src/processors"
	"github.com/username/divtracker/backend/src/security/validation"
	"github.com/username/divtracker/backend/src/services"
	"github.com/username/divtracker/backend/src/utils"
)

// app holds what every subcommand shares.
type app struct {
	cfg      *config.AppConfig
	out      io.Writer
	provider services.DividendProvider // built from cfg when nil
}

func (a *app) commands() []subcommands.Command {
	return []subcommands.Command{
		&ledgerCmd{app: a},
		&statsCmd{app: a},
		&projectCmd{app: a},
		&currenciesCmd{app: a},
	}
}

func (a *app) dividendService() (services.DividendService, error) {
	provider := a.provider
	if provider == nil {
		var err error
		if provider, err = services.NewProviderFromConfig(a.cfg); err != nil {
			return nil, err
		}
	}
	return services.NewDividendService(
		services.NewDividendFetcher(provider, a.cfg.FetchConcurrency),
		processors.NewLedgerBuilder(),
		processors.NewLedgerQuery(),
		processors.NewStatisticsEstimator(),
		processors.NewAllocationPlanner(processors.NewCurrencyConverter(processors.TreatUnknownAsReference), nil),
		processors.NewCurrencyConverter(processors.RejectUnknown),
		a.cfg.SessionExpiration,
	), nil
}

// openSession reads the holdings file and runs the fetch batch for it.
// Fetch failures are reported on stderr.
func (a *app) openSession(ctx context.Context, holdingsPath string) (services.DividendService, *models.SessionSummary, error) {
	if holdingsPath == "" {
		return nil, nil, fmt.Errorf("-holdings is required")
	}
	f, err := os.Open(holdingsPath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	parsed, err := holdings.NewParser().Parse(f)
	if err != nil {
		return nil, nil, err
	}
	if parsed.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d invalid rows in %s\n", parsed.Skipped, holdingsPath)
	}

	svc, err := a.dividendService()
	if err != nil {
		return nil, nil, err
	}
	summary, err := svc.CreateSession(ctx, parsed.Holdings)
	if err != nil {
		return nil, nil, err
	}
	for _, failure := range summary.Failures {
		fmt.Fprintf(os.Stderr, "no dividends for %s: %s\n", failure.Ticker, failure.Reason)
	}
	return svc, summary, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}

type ledgerCmd struct {
	app      *app
	holdings string
	ticker   string
	period   string
}

func (*ledgerCmd) Name() string     { return "ledger" }
func (*ledgerCmd) Synopsis() string { return "list the dividends received by the holdings" }
func (*ledgerCmd) Usage() string {
	return `divcli ledger -holdings <file.csv> [-ticker <ticker>] [-range <preset>]

  Fetches the dividend history of every holding since its acquisition date
  and prints the payments, newest first, with totals per currency.
  Presets: all, last_quarter, last_6_months, last_year, last_2_years,
  last_3_years, last_5_years.
`
}

func (c *ledgerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.holdings, "holdings", "", "CSV file of holdings (ticker,shareCount,acquisitionDate).")
	f.StringVar(&c.ticker, "ticker", "", "Only show this ticker.")
	f.StringVar(&c.period, "range", "all", "Date range preset.")
}

func (c *ledgerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	preset, err := processors.ParseDateRangePreset(c.period)
	if err != nil {
		return fail(err)
	}
	svc, summary, err := c.app.openSession(ctx, c.holdings)
	if err != nil {
		return fail(err)
	}
	view, err := svc.GetLedger(ctx, summary.ID, processors.LedgerFilter{Ticker: c.ticker, Preset: preset})
	if err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(c.app.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Date\tTicker\tShares\tDividend\tPrice\tTotal\t")
	for _, e := range view.Entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t\n",
			e.PaymentDate, e.Ticker, e.ShareCount,
			e.DividendPerShare.String(),
			utils.FormatMoney(e.PricePerShare, e.Currency),
			utils.FormatMoney(e.Total, e.Currency))
	}
	w.Flush()

	fmt.Fprintln(c.app.out)
	for _, t := range view.TotalsByCurrency {
		fmt.Fprintf(c.app.out, "Total %s: %s\n", t.Currency, utils.FormatMoney(t.Total, t.Currency))
	}
	fmt.Fprintf(c.app.out, "Total earnings: %s\n", view.TotalEarnings.StringFixed(2))
	return subcommands.ExitSuccess
}

type statsCmd struct {
	app      *app
	holdings string
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "estimate annual dividend, frequency and yield per ticker" }
func (*statsCmd) Usage() string {
	return `divcli stats -holdings <file.csv>
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.holdings, "holdings", "", "CSV file of holdings (ticker,shareCount,acquisitionDate).")
}

func (c *statsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, summary, err := c.app.openSession(ctx, c.holdings)
	if err != nil {
		return fail(err)
	}
	stats, err := svc.Statistics(ctx, summary.ID)
	if err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(c.app.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Ticker\tCurrency\tPayments/yr\tAnnual/share\tPrice\tYield %\t")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t\n",
			s.Ticker, s.Currency, s.PaymentsPerYear,
			s.AnnualDividendPerShare.String(),
			utils.FormatMoney(s.LatestPricePerShare, s.Currency),
			s.DividendYieldPercent.StringFixed(2))
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type projectCmd struct {
	app      *app
	holdings string
	target   string
	years    string
	currency string
}

func (*projectCmd) Name() string     { return "project" }
func (*projectCmd) Synopsis() string { return "plan the investment needed for a monthly dividend income" }
func (*projectCmd) Usage() string {
	return `divcli project -holdings <file.csv> [-target 500] [-years 10] [-currency USD]

  Splits the target income equally between the tickers of the holdings and
  prints the shares and investment needed for each, plus the monthly and
  yearly amounts to invest over the horizon.
`
}

func (c *projectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.holdings, "holdings", "", "CSV file of holdings (ticker,shareCount,acquisitionDate).")
	f.StringVar(&c.target, "target", "500", "Target monthly dividend income.")
	f.StringVar(&c.years, "years", "10", "Investment horizon in years.")
	f.StringVar(&c.currency, "currency", "", "Target currency (defaults to DEFAULT_TARGET_CURRENCY).")
}

func (c *projectCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	target, err := validation.ValidateDecimalString(c.target, "target", false)
	if err != nil {
		return fail(err)
	}
	years, err := validation.ValidateIntString(c.years, "years", 0, validation.MaxHorizonYears)
	if err != nil {
		return fail(err)
	}
	currency := c.currency
	if currency == "" {
		currency = c.app.cfg.DefaultTargetCurrency
	}

	svc, summary, err := c.app.openSession(ctx, c.holdings)
	if err != nil {
		return fail(err)
	}
	plan, err := svc.Projection(ctx, summary.ID, services.ProjectionRequest{
		TargetMonthlyIncome: target,
		TargetCurrency:      currency,
		HorizonYears:        int(years),
	})
	if err != nil {
		return fail(err)
	}
	if plan == nil {
		fmt.Fprintln(c.app.out, "No plan: no ticker has dividend statistics or the target is zero.")
		return subcommands.ExitSuccess
	}

	cur := plan.TargetCurrency
	w := tabwriter.NewWriter(c.app.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Ticker\tYield %\tTarget/yr\tShares\tInvestment\tInvestment "+cur+"\tMonthly "+cur+"\t")
	for _, row := range plan.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t\n",
			row.Ticker, row.DividendYieldPercent.StringFixed(2),
			utils.FormatMoney(row.PerTickerTarget, cur), row.SharesNeeded,
			utils.FormatMoney(row.InvestmentNative, row.NativeCurrency),
			utils.FormatMoney(row.InvestmentTarget, cur),
			utils.FormatMoney(row.MonthlyDividendTarget, cur))
	}
	w.Flush()

	fmt.Fprintln(c.app.out)
	fmt.Fprintf(c.app.out, "Total investment: %s for %d shares\n", utils.FormatMoney(plan.TotalInvestment, cur), plan.TotalShares)
	fmt.Fprintf(c.app.out, "Monthly dividend: %s\n", utils.FormatMoney(plan.TotalMonthlyDividend, cur))
	if plan.HorizonYears > 0 {
		fmt.Fprintf(c.app.out, "Over %d years: invest %s per month (%s per year), buying %s shares per month\n",
			plan.HorizonYears,
			utils.FormatMoney(plan.MonthlyInvestment, cur),
			utils.FormatMoney(plan.YearlyInvestment, cur),
			plan.SharesPerMonth.StringFixed(1))
	}
	return subcommands.ExitSuccess
}

type currenciesCmd struct {
	app *app
}

func (*currenciesCmd) Name() string     { return "currencies" }
func (*currenciesCmd) Synopsis() string { return "list the supported currencies and their USD rate" }
func (*currenciesCmd) Usage() string {
	return `divcli currencies
`
}

func (*currenciesCmd) SetFlags(*flag.FlagSet) {}

func (c *currenciesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	converter := processors.NewCurrencyConverter(processors.RejectUnknown)
	w := tabwriter.NewWriter(c.app.out, 0, 4, 2, ' ', 0)
	one := decimal.NewFromInt(1)
	for _, code := range converter.SupportedCurrencies() {
		fmt.Fprintf(w, "%s\t%s\t\n", code, converter.Convert(one, code, processors.ReferenceCurrency).String())
	}
	w.Flush()
	return subcommands.ExitSuccess
}
