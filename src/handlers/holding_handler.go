package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/divtracker/backend/src/logger"
	"github.com/username/divtracker/backend/src/models"
	"github.com/username/divtracker/backend/src/security/validation"
	"github.com/username/divtracker/backend/src/services"
	"github.com/username/divtracker/backend/src/utils"
)

type HoldingHandler struct {
	holdingService     services.HoldingService
	maxUploadSizeBytes int64
}

func NewHoldingHandler(service services.HoldingService, maxUploadSizeBytes int64) *HoldingHandler {
	return &HoldingHandler{
		holdingService:     service,
		maxUploadSizeBytes: maxUploadSizeBytes,
	}
}

func (h *HoldingHandler) HandleListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.holdingService.List(r.Context())
	if err != nil {
		sendServiceError(w, r, err, "retrieving holdings")
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}
	utils.WriteJSON(w, http.StatusOK, holdings)
}

func (h *HoldingHandler) HandleAddHolding(w http.ResponseWriter, r *http.Request) {
	var input services.HoldingInput
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&input); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	holding, err := h.holdingService.Add(r.Context(), input)
	if err != nil {
		sendServiceError(w, r, err, "adding holding")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, holding)
}

func (h *HoldingHandler) HandleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.holdingService.Remove(r.Context(), id); err != nil {
		sendServiceError(w, r, err, "removing holding")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HoldingHandler) HandleClearHoldings(w http.ResponseWriter, r *http.Request) {
	if err := h.holdingService.Clear(r.Context()); err != nil {
		sendServiceError(w, r, err, "clearing holdings")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleImportHoldings appends the rows of an uploaded CSV file
// (ticker,shareCount,acquisitionDate) to the stored holdings.
func (h *HoldingHandler) HandleImportHoldings(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	maxMB := h.maxUploadSizeBytes / (1024 * 1024)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSizeBytes+1024)
	if err := r.ParseMultipartForm(h.maxUploadSizeBytes); err != nil {
		log.Warn("Failed to parse multipart form or request too large", "error", err, "limit", h.maxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to process upload or file too large (max %d MB)", maxMB), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		log.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > h.maxUploadSizeBytes {
		log.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", h.maxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", maxMB), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		log.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Info("Holdings file validated", "filename", fileHeader.Filename, "clientType", clientContentType, "detectedType", detectedContentType)

	result, err := h.holdingService.Import(r.Context(), file)
	if err != nil {
		sendServiceError(w, r, err, "importing holdings")
		return
	}
	if result.Added == nil {
		result.Added = []models.Holding{}
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
