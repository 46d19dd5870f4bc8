package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/divtracker/backend/src/date"
)

func TestCachedProvider(t *testing.T) {
	inner := newFakeProvider()
	p := NewCachedProvider(inner, time.Minute)
	ctx := context.Background()
	start := date.MustParse("2024-01-01")

	_, err := p.FetchHistory(ctx, "ko", &start)
	require.NoError(t, err)
	_, err = p.FetchHistory(ctx, "KO", &start)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls["ko"])

	_, err = p.FetchHistory(ctx, "ko", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls["ko"], "a different start date is a different key")

	p.Flush()
	_, err = p.FetchHistory(ctx, "ko", &start)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls["ko"])
}

func TestCachedProviderDoesNotCacheFailures(t *testing.T) {
	inner := newFakeProvider()
	inner.errs["bad"] = ErrFetchFailed
	p := NewCachedProvider(inner, time.Minute)

	_, err := p.FetchHistory(context.Background(), "bad", nil)
	assert.ErrorIs(t, err, ErrFetchFailed)
	_, err = p.FetchHistory(context.Background(), "bad", nil)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Equal(t, 2, inner.calls["bad"])
}
