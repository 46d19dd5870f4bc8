package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/models"
)

// fakeProvider serves canned histories keyed by lowercase ticker.
type fakeProvider struct {
	mu        sync.Mutex
	histories map[string]*models.DividendHistoryResponse
	errs      map[string]error
	calls     map[string]int
	starts    map[string]*date.Date

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	gate        chan struct{} // when set, every call waits on it
	sawCancel   atomic.Bool
}

var _ DividendProvider = (*fakeProvider)(nil)

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		histories: map[string]*models.DividendHistoryResponse{},
		errs:      map[string]error{},
		calls:     map[string]int{},
		starts:    map[string]*date.Date{},
	}
}

func (f *fakeProvider) FetchHistory(ctx context.Context, ticker string, start *date.Date) (*models.DividendHistoryResponse, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.gate != nil {
		<-f.gate
	}
	if ctx.Err() != nil {
		f.sawCancel.Store(true)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticker]++
	f.starts[ticker] = start
	if err := f.errs[ticker]; err != nil {
		return nil, err
	}
	if h, ok := f.histories[ticker]; ok {
		return h, nil
	}
	return &models.DividendHistoryResponse{Ticker: ticker, Currency: "USD"}, nil
}

func payment(day, dividend string, price ...string) models.ProviderDividend {
	d := models.ProviderDividend{
		PaymentDate: date.MustParse(day),
		Dividend:    decimal.RequireFromString(dividend),
	}
	if len(price) > 0 {
		p := decimal.RequireFromString(price[0])
		d.PricePerShare = &p
	}
	return d
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
