package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/divtracker/backend/src/database"
	"github.com/username/divtracker/backend/src/handlers"
	"github.com/username/divtracker/backend/src/processors"
	"github.com/username/divtracker/backend/src/services"
	"golang.org/x/time/rate"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "main.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	// Nothing listens on port 1, so every provider call fails fast.
	provider := services.NewBackendProvider("http://127.0.0.1:1", time.Second, 0)
	converter := processors.NewCurrencyConverter(processors.RejectUnknown)
	holdingService := services.NewHoldingService(db)
	dividendService := services.NewDividendService(
		services.NewDividendFetcher(provider, 1),
		processors.NewLedgerBuilder(),
		processors.NewLedgerQuery(),
		processors.NewStatisticsEstimator(),
		processors.NewAllocationPlanner(converter, nil),
		converter,
		time.Minute,
	)

	return newRouter(routerDeps{
		holdingHandler:  handlers.NewHoldingHandler(holdingService, 1<<20),
		dividendHandler: handlers.NewDividendHandler(dividendService, holdingService, "EUR"),
		currencyHandler: handlers.NewCurrencyHandler(converter),
		proxyHandler:    handlers.NewDividendProxyHandler(provider),
		allowedOrigins:  []string{"http://localhost:3000"},
		limiter:         rate.NewLimiter(rate.Inf, 1),
	})
}

func TestRouterHealthAndNotFound(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Not found", body["error"])
}

func TestRouterSessionWithUnreachableProvider(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sessions",
		strings.NewReader(`{"holdings":[{"ticker":"KO","share_count":5,"acquisition_date":"2024-01-01"}]}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var summary struct {
		ID       string `json:"id"`
		Entries  int    `json:"entries"`
		Failures []struct {
			Ticker string `json:"ticker"`
		} `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 0, summary.Entries)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "KO", summary.Failures[0].Ticker)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+summary.ID+"/projection", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"plan":null}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dividends/ko", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
