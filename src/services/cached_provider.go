package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/logger"
	"github.com/username/divtracker/backend/src/models"
)

const ckDividendHistory = "div_history_%s_from_%s"

// CachedProvider memoises successful responses of another provider.
// Failures are never cached.
type CachedProvider struct {
	next  DividendProvider
	cache *cache.Cache
}

// NewCachedProvider wraps next with a cache whose entries live for expiration.
func NewCachedProvider(next DividendProvider, expiration time.Duration) *CachedProvider {
	return &CachedProvider{
		next:  next,
		cache: cache.New(expiration, 2*expiration),
	}
}

var _ DividendProvider = (*CachedProvider)(nil)

func (p *CachedProvider) FetchHistory(ctx context.Context, ticker string, start *date.Date) (*models.DividendHistoryResponse, error) {
	from := "all"
	if start != nil && !start.IsZero() {
		from = start.String()
	}
	key := fmt.Sprintf(ckDividendHistory, models.NormalizeTicker(ticker), from)

	if cached, found := p.cache.Get(key); found {
		logger.FromContext(ctx).Debug("Dividend history cache hit", "key", key)
		return cached.(*models.DividendHistoryResponse), nil
	}

	history, err := p.next.FetchHistory(ctx, ticker, start)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, history, cache.DefaultExpiration)
	return history, nil
}

// Flush drops every cached response.
func (p *CachedProvider) Flush() { p.cache.Flush() }
