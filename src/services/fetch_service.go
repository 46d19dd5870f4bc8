package services

import (
	"context"

	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/logger"
	"github.com/username/divtracker/backend/src/models"
	"golang.org/x/sync/errgroup"
)

type dividendFetcherImpl struct {
	provider    DividendProvider
	concurrency int
}

// NewDividendFetcher creates a fetcher issuing at most concurrency provider
// calls at once. A concurrency of 1 fetches strictly one holding after another.
func NewDividendFetcher(provider DividendProvider, concurrency int) DividendFetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &dividendFetcherImpl{provider: provider, concurrency: concurrency}
}

// FetchAll fetches the history of every holding from its acquisition date.
// A failing holding contributes an empty record list and a FetchFailure; it
// never stops the other fetches. The batch always runs to completion, even if
// ctx is cancelled.
func (f *dividendFetcherImpl) FetchAll(ctx context.Context, holdings []models.Holding) FetchResult {
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx)

	records := make([][]models.DividendRecord, len(holdings))
	failures := make([]*models.FetchFailure, len(holdings))

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, h := range holdings {
		g.Go(func() error {
			var start *date.Date
			if !h.AcquisitionDate.IsZero() {
				acquired := h.AcquisitionDate
				start = &acquired
			}

			history, err := f.provider.FetchHistory(ctx, h.Key(), start)
			if err != nil {
				log.Warn("Dividend history fetch failed, holding contributes no records",
					"holdingID", h.ID, "ticker", h.DisplayTicker(), "error", err)
				failures[i] = &models.FetchFailure{HoldingID: h.ID, Ticker: h.DisplayTicker(), Reason: err.Error()}
				records[i] = []models.DividendRecord{}
				return nil
			}

			if history == nil {
				records[i] = []models.DividendRecord{}
				return nil
			}
			records[i] = history.Records()
			log.Debug("Dividend history fetched", "ticker", h.DisplayTicker(), "records", len(records[i]))
			return nil
		})
	}
	_ = g.Wait() // goroutines never return an error

	result := FetchResult{Records: make(map[string][]models.DividendRecord, len(holdings)), Failures: []models.FetchFailure{}}
	for i, h := range holdings {
		result.Records[h.ID] = records[i]
		if failures[i] != nil {
			result.Failures = append(result.Failures, *failures[i])
		}
	}
	return result
}
