package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/divtracker/backend/src/config"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/models"
	"github.com/username/divtracker/backend/src/services"
)

type stubProvider struct{}

var _ services.DividendProvider = stubProvider{}

func (stubProvider) FetchHistory(_ context.Context, ticker string, _ *date.Date) (*models.DividendHistoryResponse, error) {
	if ticker != "ko" {
		return nil, &services.ProviderStatusError{Ticker: ticker, StatusCode: 404}
	}
	p1, p2 := decimal.RequireFromString("60"), decimal.RequireFromString("62")
	return &models.DividendHistoryResponse{
		Ticker: "KO", Currency: "USD",
		Dividends: []models.ProviderDividend{
			{PaymentDate: date.MustParse("2024-04-01"), Dividend: decimal.RequireFromString("0.485"), PricePerShare: &p1},
			{PaymentDate: date.MustParse("2024-07-01"), Dividend: decimal.RequireFromString("0.485"), PricePerShare: &p2},
		},
	}, nil
}

func newTestApp(t *testing.T) (*app, *bytes.Buffer, string) {
	t.Helper()
	out := &bytes.Buffer{}
	a := &app{
		cfg: &config.AppConfig{
			FetchConcurrency:      1,
			SessionExpiration:     time.Hour,
			DefaultTargetCurrency: "USD",
		},
		out:      out,
		provider: stubProvider{},
	}
	path := filepath.Join(t.TempDir(), "holdings.csv")
	require.NoError(t, os.WriteFile(path, []byte("ticker,shares,date\nKO,10,2024-01-01\nXX,1,2024-01-01\n"), 0o600))
	return a, out, path
}

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return cmd.Execute(context.Background(), fs)
}

func TestLedgerCommand(t *testing.T) {
	a, out, path := newTestApp(t)

	status := run(t, &ledgerCmd{app: a}, "-holdings", path, "-ticker", "ko")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "2024-07-01")
	assert.Contains(t, out.String(), "Total USD: $9.70")
	assert.Contains(t, out.String(), "Total earnings: 9.70")

	assert.Equal(t, subcommands.ExitFailure, run(t, &ledgerCmd{app: a}, "-holdings", path, "-range", "forever"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &ledgerCmd{app: a}))
}

func TestStatsCommand(t *testing.T) {
	a, out, path := newTestApp(t)

	require.Equal(t, subcommands.ExitSuccess, run(t, &statsCmd{app: a}, "-holdings", path))
	assert.Contains(t, out.String(), "KO")
	assert.Contains(t, out.String(), "$62.00")
}

func TestProjectCommand(t *testing.T) {
	a, out, path := newTestApp(t)

	require.Equal(t, subcommands.ExitSuccess, run(t, &projectCmd{app: a}, "-holdings", path))
	assert.Contains(t, out.String(), "Total investment: $191,766.00 for 3093 shares")
	assert.Contains(t, out.String(), "Over 10 years")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, run(t, &projectCmd{app: a}, "-holdings", path, "-target", "0"))
	assert.Contains(t, out.String(), "No plan")

	assert.Equal(t, subcommands.ExitFailure, run(t, &projectCmd{app: a}, "-holdings", path, "-currency", "XYZ"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &projectCmd{app: a}, "-holdings", path, "-years", "-1"))
}

func TestCurrenciesCommand(t *testing.T) {
	a, out, _ := newTestApp(t)

	require.Equal(t, subcommands.ExitSuccess, run(t, &currenciesCmd{app: a}))
	assert.Contains(t, out.String(), "EUR")
	assert.Contains(t, out.String(), "1.08")
	assert.Len(t, a.commands(), 4)
}
