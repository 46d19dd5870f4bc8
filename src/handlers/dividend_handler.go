package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/logger"
	"github.com/username/divtracker/backend/src/models"
	"github.com/username/divtracker/backend/src/processors"
	"github.com/username/divtracker/backend/src/security/validation"
	"github.com/username/divtracker/backend/src/services"
	"github.com/username/divtracker/backend/src/utils"
)

const (
	defaultTargetMonthlyIncome = "500"
	defaultHorizonYears        = 10
)

type DividendHandler struct {
	dividendService services.DividendService
	holdingService  services.HoldingService
	defaultCurrency string
}

func NewDividendHandler(dividendService services.DividendService, holdingService services.HoldingService, defaultCurrency string) *DividendHandler {
	return &DividendHandler{
		dividendService: dividendService,
		holdingService:  holdingService,
		defaultCurrency: defaultCurrency,
	}
}

type createSessionRequest struct {
	Holdings []services.HoldingInput `json:"holdings"`
}

type projectionResponse struct {
	Plan *models.AllocationPlan `json:"plan"`
}

// HandleCreateSession submits a portfolio. The holdings in the body are used
// when present, otherwise the stored holdings.
func (h *DividendHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req createSessionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var holdings []models.Holding
	if len(req.Holdings) > 0 {
		holdings = make([]models.Holding, 0, len(req.Holdings))
		for i, input := range req.Holdings {
			holding, err := services.ValidateHoldingInput(input)
			if err != nil {
				utils.SendJSONError(w, fmt.Sprintf("holding %d: %v", i+1, err), http.StatusBadRequest)
				return
			}
			holdings = append(holdings, holding)
		}
	} else {
		stored, err := h.holdingService.List(r.Context())
		if err != nil {
			sendServiceError(w, r, err, "loading holdings")
			return
		}
		holdings = stored
	}

	log.Info("Handling CreateSession", "holdings", len(holdings), "fromBody", len(req.Holdings) > 0)
	summary, err := h.dividendService.CreateSession(r.Context(), holdings)
	if err != nil {
		sendServiceError(w, r, err, "creating session")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, summary)
}

func (h *DividendHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dividendService.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		sendServiceError(w, r, err, "retrieving session")
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

// ledgerFilterFromQuery reads ?ticker= and ?range=.
func ledgerFilterFromQuery(r *http.Request) (processors.LedgerFilter, error) {
	query := r.URL.Query()
	preset, err := processors.ParseDateRangePreset(query.Get("range"))
	if err != nil {
		return processors.LedgerFilter{}, err
	}

	ticker := validation.SanitizeTicker(query.Get("ticker"))
	if ticker != "" {
		if err := validation.ValidateTicker(ticker); err != nil {
			return processors.LedgerFilter{}, err
		}
	}
	return processors.LedgerFilter{Ticker: ticker, Preset: preset}, nil
}

func (h *DividendHandler) loadLedger(w http.ResponseWriter, r *http.Request) (*models.LedgerView, bool) {
	filter, err := ledgerFilterFromQuery(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	sessionID := chi.URLParam(r, "id")
	view, err := h.dividendService.GetLedger(r.Context(), sessionID, filter)
	if err != nil {
		sendServiceError(w, r, err, "retrieving ledger")
		return nil, false
	}
	if view.Entries == nil {
		view.Entries = []models.LedgerEntry{}
	}
	return view, true
}

// HandleGetLedger returns the filtered ledger with ETag support.
func (h *DividendHandler) HandleGetLedger(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	view, ok := h.loadLedger(w, r)
	if !ok {
		return
	}

	currentETag, etagErr := utils.GenerateETag(view)
	if etagErr != nil {
		log.Error("Failed to generate ETag for ledger", "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				log.Debug("ETag match for ledger", "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	utils.WriteJSON(w, http.StatusOK, view)
}

var ledgerCSVHeader = []string{"payment_date", "ticker", "currency", "dividend", "price_per_share", "shares", "total"}

// HandleExportLedgerCSV writes the filtered ledger as a CSV attachment.
func (h *DividendHandler) HandleExportLedgerCSV(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadLedger(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="dividends.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write(ledgerCSVHeader)
	for _, e := range view.Entries {
		_ = cw.Write([]string{
			e.PaymentDate.String(),
			validation.SanitizeForFormulaInjection(e.Ticker),
			validation.SanitizeForFormulaInjection(e.Currency),
			e.DividendPerShare.String(),
			e.PricePerShare.String(),
			strconv.FormatInt(e.ShareCount, 10),
			utils.RoundMoney(e.Total, e.Currency).String(),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.FromContext(r.Context()).Error("Error writing ledger CSV", "error", err)
	}
}

// HandlePatchLedgerEntry corrects the shares, price or dividend of one entry.
func (h *DividendHandler) HandlePatchLedgerEntry(w http.ResponseWriter, r *http.Request) {
	var patch models.LedgerPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if patch.IsEmpty() {
		utils.SendJSONError(w, "Nothing to update: set shares, price_per_share or dividend", http.StatusBadRequest)
		return
	}

	entry, err := h.dividendService.PatchEntry(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "entryID"), patch)
	if err != nil {
		sendServiceError(w, r, err, "updating ledger entry")
		return
	}
	utils.WriteJSON(w, http.StatusOK, entry)
}

func (h *DividendHandler) HandleGetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dividendService.Statistics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		sendServiceError(w, r, err, "estimating statistics")
		return
	}
	if stats == nil {
		stats = []models.TickerStatistics{}
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

// projectionRequestFromQuery reads ?target_monthly=&years=&currency=, falling
// back to 500, 10 and the configured currency.
func (h *DividendHandler) projectionRequestFromQuery(r *http.Request) (services.ProjectionRequest, error) {
	query := r.URL.Query()

	target := query.Get("target_monthly")
	if target == "" {
		target = defaultTargetMonthlyIncome
	}
	income, err := validation.ValidateDecimalString(target, "target_monthly", false)
	if err != nil {
		return services.ProjectionRequest{}, err
	}

	years := int64(defaultHorizonYears)
	if raw := query.Get("years"); raw != "" {
		years, err = validation.ValidateIntString(raw, "years", 0, validation.MaxHorizonYears)
		if err != nil {
			return services.ProjectionRequest{}, err
		}
	}

	currency := query.Get("currency")
	if currency == "" {
		currency = h.defaultCurrency
	}
	code, err := validation.ValidateCurrencyCode(currency)
	if err != nil {
		return services.ProjectionRequest{}, err
	}

	return services.ProjectionRequest{
		TargetMonthlyIncome: income,
		TargetCurrency:      code,
		HorizonYears:        int(years),
	}, nil
}

// HandleGetProjection returns the allocation plan for the session. The plan
// is null when no ticker has statistics or the target is zero.
func (h *DividendHandler) HandleGetProjection(w http.ResponseWriter, r *http.Request) {
	req, err := h.projectionRequestFromQuery(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	plan, err := h.dividendService.Projection(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		sendServiceError(w, r, err, "computing projection")
		return
	}
	utils.WriteJSON(w, http.StatusOK, projectionResponse{Plan: plan})
}

// CurrencyHandler serves the currencies the converter knows.
type CurrencyHandler struct {
	converter processors.CurrencyConverter
}

func NewCurrencyHandler(converter processors.CurrencyConverter) *CurrencyHandler {
	return &CurrencyHandler{converter: converter}
}

type currencyRate struct {
	Code string          `json:"code"`
	Rate decimal.Decimal `json:"usd_rate"`
}

// HandleListCurrencies returns every supported code with the value of one
// unit in USD.
func (h *CurrencyHandler) HandleListCurrencies(w http.ResponseWriter, r *http.Request) {
	codes := h.converter.SupportedCurrencies()
	out := make([]currencyRate, 0, len(codes))
	one := decimal.NewFromInt(1)
	for _, code := range codes {
		out = append(out, currencyRate{Code: code, Rate: h.converter.Convert(one, code, processors.ReferenceCurrency)})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}
