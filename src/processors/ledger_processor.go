package processors

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/models"
)

var ErrInvalidPatch = errors.New("invalid ledger patch")

// ledgerBuilderImpl implements the LedgerBuilder interface.
type ledgerBuilderImpl struct {
	newID func() string
}

// NewLedgerBuilder creates a new instance of LedgerBuilder.
func NewLedgerBuilder() LedgerBuilder {
	return &ledgerBuilderImpl{newID: uuid.NewString}
}

// Build maps the records fetched for every holding into ledger entries carrying
// that holding's share count. Holdings sharing a ticker each keep their own
// entries. The result is ordered by payment date, newest first.
func (b *ledgerBuilderImpl) Build(holdings []models.Holding, recordsByHolding map[string][]models.DividendRecord) []models.LedgerEntry {
	var ledger []models.LedgerEntry

	for _, h := range holdings {
		for _, rec := range recordsByHolding[h.ID] {
			ticker := models.DisplayTicker(rec.Ticker)
			if ticker == "" {
				ticker = h.DisplayTicker()
			}
			ledger = append(ledger, models.LedgerEntry{
				ID:               b.newID(),
				HoldingID:        h.ID,
				Ticker:           ticker,
				PaymentDate:      rec.PaymentDate,
				Currency:         rec.Currency,
				DividendPerShare: rec.DividendPerShare,
				PricePerShare:    rec.PricePerShare,
				ShareCount:       h.ShareCount,
				Total:            entryTotal(rec.DividendPerShare, h.ShareCount),
			})
		}
	}

	sort.SliceStable(ledger, func(i, j int) bool {
		return ledger[i].PaymentDate.After(ledger[j].PaymentDate)
	})
	return ledger
}

// ApplyPatch returns a copy of entry with the patch applied and Total recomputed.
func (b *ledgerBuilderImpl) ApplyPatch(entry models.LedgerEntry, patch models.LedgerPatch) (models.LedgerEntry, error) {
	if patch.ShareCount != nil {
		if *patch.ShareCount < 0 {
			return entry, fmt.Errorf("%w: share count must not be negative", ErrInvalidPatch)
		}
		entry.ShareCount = *patch.ShareCount
	}
	if patch.PricePerShare != nil {
		if patch.PricePerShare.IsNegative() {
			return entry, fmt.Errorf("%w: price per share must not be negative", ErrInvalidPatch)
		}
		entry.PricePerShare = *patch.PricePerShare
	}
	if patch.DividendPerShare != nil {
		if patch.DividendPerShare.IsNegative() {
			return entry, fmt.Errorf("%w: dividend per share must not be negative", ErrInvalidPatch)
		}
		entry.DividendPerShare = *patch.DividendPerShare
	}
	entry.Total = entryTotal(entry.DividendPerShare, entry.ShareCount)
	return entry, nil
}

func entryTotal(dividendPerShare decimal.Decimal, shares int64) decimal.Decimal {
	return dividendPerShare.Mul(decimal.NewFromInt(shares))
}
