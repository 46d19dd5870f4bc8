package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/logger"
	"github.com/username/divtracker/backend/src/models"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const yahooUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// yahooEndpoints are the hosts the provider talks to.
type yahooEndpoints struct {
	primeURLs []string // visited once to receive the session cookies
	crumbURL  string
	chartURL  string // chart API base, the ticker is appended
}

var defaultYahooEndpoints = yahooEndpoints{
	primeURLs: []string{"https://fc.yahoo.com", "https://finance.yahoo.com"},
	crumbURL:  "https://query1.finance.yahoo.com/v1/test/getcrumb",
	chartURL:  "https://query1.finance.yahoo.com/v8/finance/chart",
}

// Chart response restricted to the dividend events and daily closes.
type yahooDividendChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
			Events struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// YahooProvider reads dividend events from the Yahoo Finance chart API and
// fills the price of each payment from the close on the payment date.
type YahooProvider struct {
	endpoints     yahooEndpoints
	httpClient    *http.Client
	limiter       *rate.Limiter
	isInitialized bool
	crumb         string
	mu            sync.Mutex
}

// NewYahooProvider creates a Yahoo Finance provider. A ratePerSecond of 0 or
// less disables outbound rate limiting.
func NewYahooProvider(timeout time.Duration, ratePerSecond float64) *YahooProvider {
	return newYahooProvider(defaultYahooEndpoints, timeout, ratePerSecond)
}

func newYahooProvider(endpoints yahooEndpoints, timeout time.Duration, ratePerSecond float64) *YahooProvider {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}
	p := &YahooProvider{
		endpoints:  endpoints,
		httpClient: &http.Client{Jar: jar, Timeout: timeout},
	}
	if ratePerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}
	return p
}

var _ DividendProvider = (*YahooProvider)(nil)

func (p *YahooProvider) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", yahooUserAgent)
	return p.httpClient.Do(req)
}

func (p *YahooProvider) ensureSession(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isInitialized && p.crumb != "" {
		return
	}

	logger.FromContext(ctx).Info("Initializing Yahoo Finance session and fetching Crumb...")
	for _, u := range p.endpoints.primeURLs {
		if resp, err := p.get(ctx, u); err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}

	resp, err := p.get(ctx, p.endpoints.crumbURL)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to fetch crumb", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.FromContext(ctx).Warn("Failed to fetch crumb", "status", resp.Status)
		return
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	p.crumb = strings.TrimSpace(string(body))
	p.isInitialized = p.crumb != ""
	logger.FromContext(ctx).Info("Yahoo session initialized", "ok", p.isInitialized)
}

func (p *YahooProvider) invalidateSession() {
	p.mu.Lock()
	p.isInitialized = false
	p.crumb = ""
	p.mu.Unlock()
}

func (p *YahooProvider) currentCrumb() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.crumb
}

// FetchHistory returns the dividend events of ticker since start, or the
// full history when start is nil.
func (p *YahooProvider) FetchHistory(ctx context.Context, ticker string, start *date.Date) (*models.DividendHistoryResponse, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, ticker, err)
		}
	}
	p.ensureSession(ctx)

	symbol := models.DisplayTicker(ticker)
	var period1 int64
	if start != nil && !start.IsZero() {
		period1 = start.Time().Unix()
	}
	q := url.Values{}
	q.Set("period1", fmt.Sprint(period1))
	q.Set("period2", fmt.Sprint(time.Now().Unix()))
	q.Set("interval", "1d")
	q.Set("events", "div")
	q.Set("crumb", p.currentCrumb())
	chartURL := fmt.Sprintf("%s/%s?%s", p.endpoints.chartURL, url.PathEscape(symbol), q.Encode())

	resp, err := p.get(ctx, chartURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: failed to call Yahoo chart API: %v", ErrFetchFailed, ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		p.invalidateSession()
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderStatusError{Ticker: ticker, StatusCode: resp.StatusCode}
	}

	var data yahooDividendChartResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProviderBody)).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %s: failed to decode Yahoo chart response: %v", ErrFetchFailed, ticker, err)
	}
	if data.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: yahoo chart API returned an error: %v", ErrFetchFailed, ticker, data.Chart.Error)
	}

	history := &models.DividendHistoryResponse{Ticker: symbol, Dividends: []models.ProviderDividend{}}
	if len(data.Chart.Result) == 0 {
		return history, nil
	}
	result := data.Chart.Result[0]
	history.Currency = strings.ToUpper(result.Meta.Currency)

	closes := make(map[date.Date]decimal.Decimal)
	var closeDays []date.Date
	if len(result.Indicators.Quote) > 0 {
		quotes := result.Indicators.Quote[0].Close
		for i, ts := range result.Timestamp {
			if i >= len(quotes) || quotes[i] == nil || *quotes[i] == 0 {
				continue
			}
			day := date.FromTime(time.Unix(ts, 0).UTC())
			closes[day] = decimal.NewFromFloat(*quotes[i])
			closeDays = append(closeDays, day)
		}
	}
	sort.Slice(closeDays, func(i, j int) bool { return closeDays[i].Before(closeDays[j]) })

	for _, div := range result.Events.Dividends {
		if div.Amount <= 0 {
			continue
		}
		day := date.FromTime(time.Unix(div.Date, 0).UTC())
		d := models.ProviderDividend{
			PaymentDate: day,
			Ticker:      symbol,
			Currency:    history.Currency,
			Dividend:    decimal.NewFromFloat(div.Amount),
		}
		if price, ok := closeOnOrBefore(closes, closeDays, day); ok {
			d.PricePerShare = &price
		}
		history.Dividends = append(history.Dividends, d)
	}
	sort.Slice(history.Dividends, func(i, j int) bool {
		return history.Dividends[i].PaymentDate.Before(history.Dividends[j].PaymentDate)
	})
	return history, nil
}

// closeOnOrBefore returns the close of day, or of the last trading day before it.
func closeOnOrBefore(closes map[date.Date]decimal.Decimal, days []date.Date, day date.Date) (decimal.Decimal, bool) {
	if price, ok := closes[day]; ok {
		return price, true
	}
	i := sort.Search(len(days), func(i int) bool { return days[i].After(day) })
	if i == 0 {
		return decimal.Zero, false
	}
	return closes[days[i-1]], true
}
