package model

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/username/divtracker/backend/src/logger"
	"github.com/username/divtracker/backend/src/models"
)

// HoldingsKey is the storage slot holding the user's portfolio.
const HoldingsKey = "portfolio"

// LoadHoldings returns the stored holdings in their saved order. An absent
// slot or a slot holding invalid JSON yields an empty list.
func LoadHoldings(ctx context.Context, db *sql.DB) ([]models.Holding, error) {
	raw, found, err := GetValue(ctx, db, HoldingsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings: %w", err)
	}
	holdings := []models.Holding{}
	if !found {
		return holdings, nil
	}
	if err := json.Unmarshal([]byte(raw), &holdings); err != nil {
		logger.FromContext(ctx).Warn("Stored holdings are not valid JSON, starting from an empty list", "error", err)
		return []models.Holding{}, nil
	}
	return holdings, nil
}

// SaveHoldings replaces the stored holdings.
func SaveHoldings(ctx context.Context, db *sql.DB, holdings []models.Holding) error {
	if holdings == nil {
		holdings = []models.Holding{}
	}
	raw, err := json.Marshal(holdings)
	if err != nil {
		return fmt.Errorf("failed to encode holdings: %w", err)
	}
	if err := PutValue(ctx, db, HoldingsKey, string(raw)); err != nil {
		return fmt.Errorf("failed to write holdings: %w", err)
	}
	return nil
}

// ClearHoldings empties the storage slot. Loading afterwards yields an empty list.
func ClearHoldings(ctx context.Context, db *sql.DB) error {
	if err := DeleteValue(ctx, db, HoldingsKey); err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}
	return nil
}
