package handlers

import (
	"errors"
	"net/http"

	"github.com/username/divtracker/backend/src/logger"
	"github.com/username/divtracker/backend/src/processors"
	"github.com/username/divtracker/backend/src/security/validation"
	"github.com/username/divtracker/backend/src/services"
	"github.com/username/divtracker/backend/src/utils"
)

// sendServiceError maps service and validation errors to a status code.
// Anything unrecognised is logged and reported as a 500 without details.
func sendServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrEntryNotFound),
		errors.Is(err, services.ErrHoldingNotFound):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, validation.ErrValidationFailed),
		errors.Is(err, processors.ErrInvalidPatch),
		errors.Is(err, processors.ErrUnknownPreset),
		errors.Is(err, processors.ErrUnknownCurrency):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.FromContext(r.Context()).Error("Request failed", "action", action, "error", err)
		utils.SendJSONError(w, "Error "+action, http.StatusInternalServerError)
	}
}
