package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/wallet-analytics/internal/errors"
	"github.com/wallet-analytics/internal/logging"
	"github.com/wallet-analytics/internal/types"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error types.ServiceError `json:"error"`
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: types.ServiceError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}

// respondServiceError renders err through its category. Server-side failures
// are logged with their cause and returned without internals.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	catErr := apperrors.Categorize(err)
	if !apperrors.IsUserError(catErr) {
		logging.FromContext(r.Context()).WithError(err).WithField("category", catErr.Category).Error("Request failed")
	}

	serviceErr := catErr.ToServiceError()
	respondError(w, catErr.StatusCode, serviceErr.Code, serviceErr.Message, serviceErr.Details)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
