package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/logger"
	"github.com/username/divtracker/backend/src/models"
	"github.com/username/divtracker/backend/src/security/validation"
	"github.com/username/divtracker/backend/src/services"
	"github.com/username/divtracker/backend/src/utils"
)

// DividendProxyHandler exposes the raw provider history of one ticker.
type DividendProxyHandler struct {
	provider services.DividendProvider
}

func NewDividendProxyHandler(provider services.DividendProvider) *DividendProxyHandler {
	return &DividendProxyHandler{provider: provider}
}

// HandleGetDividends serves GET /api/dividends/{ticker}?start_date=. A
// provider status error is passed through with its code; any other failure
// is a 502.
func (h *DividendProxyHandler) HandleGetDividends(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	ticker := validation.SanitizeTicker(chi.URLParam(r, "ticker"))
	if err := validation.ValidateTicker(ticker); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var start *date.Date
	if startParam := r.URL.Query().Get("start_date"); startParam != "" {
		d, err := validation.ValidateISODate(startParam, "start_date")
		if err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		start = &d
	}

	history, err := h.provider.FetchHistory(r.Context(), models.NormalizeTicker(ticker), start)
	if err != nil {
		var statusErr *services.ProviderStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode >= http.StatusBadRequest {
			log.Warn("Dividend provider returned an error status", "ticker", ticker, "status", statusErr.StatusCode)
			utils.SendJSONError(w, "Failed to fetch dividends", statusErr.StatusCode)
			return
		}
		log.Error("Dividend provider unreachable", "ticker", ticker, "error", err)
		utils.SendJSONError(w, "Dividend provider unavailable", http.StatusBadGateway)
		return
	}
	out := models.DividendHistoryResponse{Ticker: models.DisplayTicker(ticker)}
	if history != nil {
		out = *history // cached responses are shared
	}
	if out.Dividends == nil {
		out.Dividends = []models.ProviderDividend{}
	}
	utils.WriteJSON(w, http.StatusOK, out)
}
