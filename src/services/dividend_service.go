package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/logger"
	"github.com/username/divtracker/backend/src/models"
	"github.com/username/divtracker/backend/src/processors"
)

const ckSession = "session_%s"

type dividendServiceImpl struct {
	fetcher   DividendFetcher
	builder   processors.LedgerBuilder
	query     processors.LedgerQuery
	estimator processors.StatisticsEstimator
	planner   processors.AllocationPlanner
	converter processors.CurrencyConverter
	sessions  *cache.Cache
	today     func() date.Date
	mu        sync.Mutex // guards get-modify-set of a session
}

// NewDividendService wires the dividend pipeline. converter must reject
// unknown currencies in ConvertStrict so projections can validate their target.
func NewDividendService(
	fetcher DividendFetcher,
	builder processors.LedgerBuilder,
	query processors.LedgerQuery,
	estimator processors.StatisticsEstimator,
	planner processors.AllocationPlanner,
	converter processors.CurrencyConverter,
	sessionExpiration time.Duration,
) DividendService {
	return &dividendServiceImpl{
		fetcher:   fetcher,
		builder:   builder,
		query:     query,
		estimator: estimator,
		planner:   planner,
		converter: converter,
		sessions:  cache.New(sessionExpiration, 2*sessionExpiration),
		today:     date.Today,
	}
}

func (s *dividendServiceImpl) getSession(sessionID string) (*models.Session, error) {
	if cached, found := s.sessions.Get(fmt.Sprintf(ckSession, sessionID)); found {
		return cached.(*models.Session), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
}

func (s *dividendServiceImpl) putSession(session *models.Session) {
	s.sessions.Set(fmt.Sprintf(ckSession, session.ID), session, cache.DefaultExpiration)
}

func validateSubmission(holdings []models.Holding) error {
	if len(holdings) == 0 {
		return fmt.Errorf("%w: add at least one holding", ErrValidation)
	}
	for i, h := range holdings {
		switch {
		case strings.TrimSpace(h.Ticker) == "":
			return fmt.Errorf("%w: holding %d has no ticker", ErrValidation, i+1)
		case h.ShareCount <= 0:
			return fmt.Errorf("%w: holding %d (%s) needs a positive share count", ErrValidation, i+1, h.DisplayTicker())
		case h.AcquisitionDate.IsZero():
			return fmt.Errorf("%w: holding %d (%s) has no acquisition date", ErrValidation, i+1, h.DisplayTicker())
		}
	}
	return nil
}

// CreateSession snapshots holdings, fetches their dividend history and
// builds the ledger. Fetch failures are reported in the summary, not as errors.
func (s *dividendServiceImpl) CreateSession(ctx context.Context, holdings []models.Holding) (*models.SessionSummary, error) {
	if err := validateSubmission(holdings); err != nil {
		return nil, err
	}

	snapshot := make([]models.Holding, len(holdings))
	copy(snapshot, holdings)
	for i := range snapshot {
		if snapshot[i].ID == "" {
			snapshot[i].ID = uuid.NewString()
		}
		snapshot[i].Ticker = snapshot[i].DisplayTicker()
	}

	log := logger.FromContext(ctx)
	log.Info("Fetching dividend history", "holdings", len(snapshot))

	fetched := s.fetcher.FetchAll(ctx, snapshot)
	session := &models.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Holdings:  snapshot,
		Ledger:    s.builder.Build(snapshot, fetched.Records),
		Failures:  fetched.Failures,
	}
	s.putSession(session)

	log.Info("Session created", "sessionID", session.ID, "entries", len(session.Ledger), "failures", len(session.Failures))
	return s.summary(session), nil
}

func (s *dividendServiceImpl) summary(session *models.Session) *models.SessionSummary {
	seen := make(map[string]struct{})
	tickers := []string{}
	for _, h := range session.Holdings {
		if _, ok := seen[h.Ticker]; !ok {
			seen[h.Ticker] = struct{}{}
			tickers = append(tickers, h.Ticker)
		}
	}
	sort.Strings(tickers)

	return &models.SessionSummary{
		ID:         session.ID,
		CreatedAt:  session.CreatedAt,
		Holdings:   len(session.Holdings),
		EntryCount: len(session.Ledger),
		Failures:   session.Failures,
		Tickers:    tickers,
	}
}

func (s *dividendServiceImpl) GetSession(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.summary(session), nil
}

// GetLedger returns the entries of the session matching filter, with their
// totals. The preset is resolved against today's date.
func (s *dividendServiceImpl) GetLedger(ctx context.Context, sessionID string, filter processors.LedgerFilter) (*models.LedgerView, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if filter.Preset == "" {
		filter.Preset = processors.RangeAll
	}

	entries := s.query.Filter(session.Ledger, filter, s.today())
	return &models.LedgerView{
		Entries:          entries,
		TotalsByCurrency: s.query.AggregateByCurrency(entries),
		TotalEarnings:    s.query.Total(entries),
		Tickers:          s.query.Tickers(session.Ledger),
		Range:            string(filter.Preset),
		Ticker:           models.DisplayTicker(filter.Ticker),
	}, nil
}

// PatchEntry corrects one ledger entry and stores a new session holding the
// patched ledger.
func (s *dividendServiceImpl) PatchEntry(ctx context.Context, sessionID, entryID string, patch models.LedgerPatch) (models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return models.LedgerEntry{}, err
	}

	idx := -1
	for i, e := range session.Ledger {
		if e.ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.LedgerEntry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}

	patched, err := s.builder.ApplyPatch(session.Ledger[idx], patch)
	if err != nil {
		return models.LedgerEntry{}, err
	}

	ledger := make([]models.LedgerEntry, len(session.Ledger))
	copy(ledger, session.Ledger)
	ledger[idx] = patched

	next := *session
	next.Ledger = ledger
	s.putSession(&next)

	logger.FromContext(ctx).Info("Ledger entry patched", "sessionID", sessionID, "entryID", entryID, "total", patched.Total.String())
	return patched, nil
}

// Statistics estimates every ticker from the full, unfiltered ledger.
func (s *dividendServiceImpl) Statistics(ctx context.Context, sessionID string) ([]models.TickerStatistics, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.estimator.EstimateAll(session.Ledger), nil
}

// Projection plans the investment needed to reach the requested income. It
// returns a nil plan when the session has no statistics or the target is not
// positive.
func (s *dividendServiceImpl) Projection(ctx context.Context, sessionID string, req ProjectionRequest) (*models.AllocationPlan, error) {
	target := strings.ToUpper(strings.TrimSpace(req.TargetCurrency))
	if _, err := s.converter.ConvertStrict(decimal.NewFromInt(1), processors.ReferenceCurrency, target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	stats, err := s.Statistics(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	plan := s.planner.Plan(stats, req.TargetMonthlyIncome, target, req.HorizonYears)
	if plan == nil {
		logger.FromContext(ctx).Debug("No allocation plan for request", "sessionID", sessionID, "tickers", len(stats), "target", req.TargetMonthlyIncome.String())
	}
	return plan, nil
}
