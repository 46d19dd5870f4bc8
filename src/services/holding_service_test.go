package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/divtracker/backend/src/database"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/security/validation"
)

func newTestHoldingService(t *testing.T) HoldingService {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "holdings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewHoldingService(db)
}

func TestHoldingServiceAddListRemove(t *testing.T) {
	svc := newTestHoldingService(t)
	ctx := context.Background()

	ko, err := svc.Add(ctx, HoldingInput{Ticker: " ko ", ShareCount: "10", AcquisitionDate: "2024-01-15"})
	require.NoError(t, err)
	assert.NotEmpty(t, ko.ID)
	assert.Equal(t, "KO", ko.Ticker)
	assert.Equal(t, int64(10), ko.ShareCount)
	assert.Equal(t, date.MustParse("2024-01-15"), ko.AcquisitionDate)

	pep, err := svc.Add(ctx, HoldingInput{Ticker: "PEP", ShareCount: "3", AcquisitionDate: "2023-07-01"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ko.ID, list[0].ID)
	assert.Equal(t, pep.ID, list[1].ID)

	require.NoError(t, svc.Remove(ctx, ko.ID))
	assert.ErrorIs(t, svc.Remove(ctx, ko.ID), ErrHoldingNotFound)

	list, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "PEP", list[0].Ticker)

	require.NoError(t, svc.Clear(ctx))
	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHoldingServiceRejectsInvalidInput(t *testing.T) {
	svc := newTestHoldingService(t)
	ctx := context.Background()

	cases := []HoldingInput{
		{Ticker: "", ShareCount: "1", AcquisitionDate: "2024-01-01"},
		{Ticker: "^GSPC", ShareCount: "1", AcquisitionDate: "2024-01-01"},
		{Ticker: "KO", ShareCount: "0", AcquisitionDate: "2024-01-01"},
		{Ticker: "KO", ShareCount: "1.5", AcquisitionDate: "2024-01-01"},
		{Ticker: "KO", ShareCount: "", AcquisitionDate: "2024-01-01"},
		{Ticker: "KO", ShareCount: "1", AcquisitionDate: "01/02/2024"},
		{Ticker: "KO", ShareCount: "1", AcquisitionDate: ""},
	}
	for _, in := range cases {
		_, err := svc.Add(ctx, in)
		assert.ErrorIs(t, err, validation.ErrValidationFailed, "input %+v", in)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHoldingServiceImport(t *testing.T) {
	svc := newTestHoldingService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, HoldingInput{Ticker: "KO", ShareCount: "1", AcquisitionDate: "2024-01-01"})
	require.NoError(t, err)

	res, err := svc.Import(ctx, strings.NewReader("ticker,shares,date\nAAPL,abc,2024-01-01\nAAPL,10,2024-01-01\nmsft,2,2023-03-03\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Added, 2)
	assert.NotEmpty(t, res.Added[0].ID)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"KO", "AAPL", "MSFT"}, []string{list[0].Ticker, list[1].Ticker, list[2].Ticker})
}
