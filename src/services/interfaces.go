// backend/src/services/interfaces.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/models"
	"github.com/username/divtracker/backend/src/processors"
)

// Define common service errors
var (
	ErrProviderStatus  = errors.New("dividend provider returned a non-success status")
	ErrFetchFailed     = errors.New("dividend history fetch failed")
	ErrSessionNotFound = errors.New("session not found")
	ErrEntryNotFound   = errors.New("ledger entry not found")
	ErrHoldingNotFound = errors.New("holding not found")
	ErrValidation      = errors.New("validation failed")
)

// ProviderStatusError carries the status code of a failed provider response.
type ProviderStatusError struct {
	Ticker     string
	StatusCode int
}

func (e *ProviderStatusError) Error() string {
	return fmt.Sprintf("%s: ticker %s, status %d", ErrProviderStatus, e.Ticker, e.StatusCode)
}

func (e *ProviderStatusError) Unwrap() error { return ErrProviderStatus }

// DividendProvider retrieves the dividend payment history of one ticker.
// A nil start means the provider's full history.
type DividendProvider interface {
	FetchHistory(ctx context.Context, ticker string, start *date.Date) (*models.DividendHistoryResponse, error)
}

// FetchResult is the outcome of one fetch batch. Records is keyed by holding ID
// and holds an empty list for every holding whose fetch failed.
type FetchResult struct {
	Records  map[string][]models.DividendRecord
	Failures []models.FetchFailure
}

// DividendFetcher fetches the history of every holding of a portfolio.
type DividendFetcher interface {
	FetchAll(ctx context.Context, holdings []models.Holding) FetchResult
}

// HoldingService manages the persisted holdings list.
type HoldingService interface {
	List(ctx context.Context) ([]models.Holding, error)
	Add(ctx context.Context, input HoldingInput) (models.Holding, error)
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Import(ctx context.Context, r io.Reader) (*ImportResult, error)
}

// ImportResult lists the holdings added by an import and the number of rows skipped.
type ImportResult struct {
	Added   []models.Holding `json:"added"`
	Skipped int              `json:"skipped"`
}

// HoldingInput is an unvalidated holding as entered by the user.
type HoldingInput struct {
	Ticker          string      `json:"ticker"`
	ShareCount      json.Number `json:"share_count"`
	AcquisitionDate string      `json:"acquisition_date"`
}

// ProjectionRequest holds the parameters of an allocation plan.
type ProjectionRequest struct {
	TargetMonthlyIncome decimal.Decimal
	TargetCurrency      string
	HorizonYears        int
}

// DividendService runs the dividend pipeline for submitted portfolios.
type DividendService interface {
	CreateSession(ctx context.Context, holdings []models.Holding) (*models.SessionSummary, error)
	GetSession(ctx context.Context, sessionID string) (*models.SessionSummary, error)
	GetLedger(ctx context.Context, sessionID string, filter processors.LedgerFilter) (*models.LedgerView, error)
	PatchEntry(ctx context.Context, sessionID, entryID string, patch models.LedgerPatch) (models.LedgerEntry, error)
	Statistics(ctx context.Context, sessionID string) ([]models.TickerStatistics, error)
	Projection(ctx context.Context, sessionID string, req ProjectionRequest) (*models.AllocationPlan, error)
}
