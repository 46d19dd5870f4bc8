package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/models"
	"github.com/username/divtracker/backend/src/processors"
)

func threeHoldings() []models.Holding {
	return []models.Holding{
		{ID: "h-aapl", Ticker: "AAPL", ShareCount: 10, AcquisitionDate: date.MustParse("2024-01-01")},
		{ID: "h-bad", Ticker: "BAD", ShareCount: 5, AcquisitionDate: date.MustParse("2024-01-01")},
		{ID: "h-ko", Ticker: "KO", ShareCount: 20, AcquisitionDate: date.MustParse("2023-06-15")},
	}
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	provider := newFakeProvider()
	provider.histories["aapl"] = &models.DividendHistoryResponse{
		Ticker: "AAPL", Currency: "USD",
		Dividends: []models.ProviderDividend{payment("2024-05-16", "0.25", "190"), payment("2024-08-15", "0.25")},
	}
	provider.histories["ko"] = &models.DividendHistoryResponse{
		Ticker: "KO", Currency: "USD",
		Dividends: []models.ProviderDividend{payment("2024-07-01", "0.485", "62")},
	}
	provider.errs["bad"] = &ProviderStatusError{Ticker: "bad", StatusCode: http.StatusNotFound}

	holdings := threeHoldings()
	result := NewDividendFetcher(provider, 3).FetchAll(context.Background(), holdings)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "h-bad", result.Failures[0].HoldingID)
	assert.Equal(t, "BAD", result.Failures[0].Ticker)
	assert.Contains(t, result.Failures[0].Reason, "404")
	assert.Empty(t, result.Records["h-bad"])
	assert.Len(t, result.Records["h-aapl"], 2)
	assert.Len(t, result.Records["h-ko"], 1)

	ledger := processors.NewLedgerBuilder().Build(holdings, result.Records)
	require.Len(t, ledger, 3)
	for _, e := range ledger {
		assert.NotEqual(t, "h-bad", e.HoldingID)
	}

	require.NotNil(t, provider.starts["ko"])
	assert.Equal(t, date.MustParse("2023-06-15"), *provider.starts["ko"])
}

func TestFetchAllSequentialWhenConcurrencyIsOne(t *testing.T) {
	provider := newFakeProvider()
	NewDividendFetcher(provider, 1).FetchAll(context.Background(), threeHoldings())
	assert.Equal(t, int32(1), provider.maxInFlight.Load())
	assert.Len(t, provider.calls, 3)
}

func TestFetchAllBoundsConcurrency(t *testing.T) {
	provider := newFakeProvider()
	provider.gate = make(chan struct{})

	holdings := append(threeHoldings(),
		models.Holding{ID: "h4", Ticker: "PEP", ShareCount: 1},
		models.Holding{ID: "h5", Ticker: "JNJ", ShareCount: 1},
	)
	done := make(chan FetchResult)
	go func() { done <- NewDividendFetcher(provider, 2).FetchAll(context.Background(), holdings) }()
	for range holdings {
		provider.gate <- struct{}{}
	}
	result := <-done

	assert.LessOrEqual(t, provider.maxInFlight.Load(), int32(2))
	assert.Len(t, result.Records, 5)
	assert.Nil(t, provider.starts["pep"], "holdings without acquisition date fetch the full history")
}

func TestFetchAllIgnoresCancellation(t *testing.T) {
	provider := newFakeProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewDividendFetcher(provider, 2).FetchAll(ctx, threeHoldings())
	assert.Empty(t, result.Failures)
	assert.False(t, provider.sawCancel.Load())
}
