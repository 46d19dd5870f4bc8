package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/username/divtracker/backend/src/logger"
	"github.com/username/divtracker/backend/src/model"
	"github.com/username/divtracker/backend/src/models"
	"github.com/username/divtracker/backend/src/parsers/holdings"
	"github.com/username/divtracker/backend/src/security/validation"
)

type holdingServiceImpl struct {
	db     *sql.DB
	parser *holdings.Parser
	mu     sync.Mutex // serialises load-modify-save of the holdings slot
}

// NewHoldingService creates a HoldingService persisting into db.
func NewHoldingService(db *sql.DB) HoldingService {
	return &holdingServiceImpl{db: db, parser: holdings.NewParser()}
}

func (s *holdingServiceImpl) List(ctx context.Context) ([]models.Holding, error) {
	return model.LoadHoldings(ctx, s.db)
}

// ValidateHoldingInput checks a user supplied holding and converts it. All
// returned errors wrap validation.ErrValidationFailed.
func ValidateHoldingInput(input HoldingInput) (models.Holding, error) {
	ticker := validation.SanitizeTicker(input.Ticker)
	if err := validation.ValidateTicker(ticker); err != nil {
		return models.Holding{}, err
	}
	shares, err := validation.ValidateShareCount(input.ShareCount.String())
	if err != nil {
		return models.Holding{}, err
	}
	acquired, err := validation.ValidateISODate(input.AcquisitionDate, "acquisition date")
	if err != nil {
		return models.Holding{}, err
	}
	return models.Holding{
		Ticker:          models.DisplayTicker(ticker),
		ShareCount:      shares,
		AcquisitionDate: acquired,
	}, nil
}

func (s *holdingServiceImpl) Add(ctx context.Context, input HoldingInput) (models.Holding, error) {
	holding, err := ValidateHoldingInput(input)
	if err != nil {
		return models.Holding{}, err
	}
	holding.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := model.LoadHoldings(ctx, s.db)
	if err != nil {
		return models.Holding{}, err
	}
	if err := model.SaveHoldings(ctx, s.db, append(current, holding)); err != nil {
		return models.Holding{}, err
	}
	logger.FromContext(ctx).Info("Holding added", "holdingID", holding.ID, "ticker", holding.Ticker, "shares", holding.ShareCount)
	return holding, nil
}

func (s *holdingServiceImpl) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := model.LoadHoldings(ctx, s.db)
	if err != nil {
		return err
	}
	kept := make([]models.Holding, 0, len(current))
	for _, h := range current {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	if len(kept) == len(current) {
		return fmt.Errorf("%w: %s", ErrHoldingNotFound, id)
	}
	if err := model.SaveHoldings(ctx, s.db, kept); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Holding removed", "holdingID", id)
	return nil
}

func (s *holdingServiceImpl) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.ClearHoldings(ctx, s.db)
}

// Import appends every valid row of r to the stored holdings.
func (s *holdingServiceImpl) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	parsed, err := s.parser.Parse(r)
	if err != nil {
		return nil, err
	}
	for i := range parsed.Holdings {
		parsed.Holdings[i].ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(parsed.Holdings) > 0 {
		current, err := model.LoadHoldings(ctx, s.db)
		if err != nil {
			return nil, err
		}
		if err := model.SaveHoldings(ctx, s.db, append(current, parsed.Holdings...)); err != nil {
			return nil, err
		}
	}
	logger.FromContext(ctx).Info("Holdings imported", "added", len(parsed.Holdings), "skipped", parsed.Skipped)
	return &ImportResult{Added: parsed.Holdings, Skipped: parsed.Skipped}, nil
}
