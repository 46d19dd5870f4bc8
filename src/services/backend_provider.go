package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/models"
	"golang.org/x/time/rate"
)

// maxProviderBody bounds the size of a decoded provider response.
const maxProviderBody = 8 << 20

// BackendProvider reads dividend history from the dividend backend service
// (GET {base}/dividends/{ticker}?start_date=YYYY-MM-DD).
type BackendProvider struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewBackendProvider creates a provider for the backend at baseURL. A
// ratePerSecond of 0 or less disables outbound rate limiting.
func NewBackendProvider(baseURL string, timeout time.Duration, ratePerSecond float64) *BackendProvider {
	p := &BackendProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	if ratePerSecond > 0 {
		burst := int(ratePerSecond)
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return p
}

var _ DividendProvider = (*BackendProvider)(nil)

// HistoryURL builds the upstream URL for ticker, lowercasing it.
func (p *BackendProvider) HistoryURL(ticker string, start *date.Date) string {
	u := fmt.Sprintf("%s/dividends/%s", p.baseURL, url.PathEscape(models.NormalizeTicker(ticker)))
	if start != nil && !start.IsZero() {
		u += "?start_date=" + url.QueryEscape(start.String())
	}
	return u
}

// FetchHistory returns the payment history of ticker. A non-2xx response is
// a *ProviderStatusError and any transport or decoding failure wraps ErrFetchFailed.
func (p *BackendProvider) FetchHistory(ctx context.Context, ticker string, start *date.Date) (*models.DividendHistoryResponse, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, ticker, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.HistoryURL(ticker, start), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, ticker, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxProviderBody))
		return nil, &ProviderStatusError{Ticker: ticker, StatusCode: resp.StatusCode}
	}

	var history models.DividendHistoryResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProviderBody)).Decode(&history); err != nil {
		return nil, fmt.Errorf("%w: %s: failed to decode response: %v", ErrFetchFailed, ticker, err)
	}
	if history.Ticker == "" {
		history.Ticker = ticker
	}
	return &history, nil
}
