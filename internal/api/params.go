package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	apperrors "github.com/wallet-analytics/internal/errors"
	"github.com/wallet-analytics/internal/types"
)

// pathID parses a positive integer path variable
func pathID(r *http.Request, name, resource string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewInvalidInputError(name, "Invalid "+resource+" ID: "+raw)
	}
	return id, nil
}

// parseWalletIDs parses a comma-separated list of positive wallet ids
func parseWalletIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperrors.NewInvalidInputError("wallet_ids", "Invalid wallet ID: "+part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, apperrors.NewInvalidInputError("wallet_ids", "At least one wallet ID is required")
	}
	return ids, nil
}

// parseDays reads the days query parameter, capped at max
func parseDays(r *http.Request, def, max int) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, apperrors.NewInvalidInputError("days", "days must be a non-negative integer")
	}
	if days > max {
		days = max
	}
	return days, nil
}

// parsePeriod reads the period query parameter. Unsupported values map to
// PeriodAll the same way the services treat them.
func parsePeriod(r *http.Request, def types.Period) types.Period {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return def
	}
	period, _ := types.ParsePeriod(raw)
	return period
}

func parseBoolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.NewInvalidInputError(name, name+" must be a boolean")
	}
	return v, nil
}

func parseOptionalID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperrors.NewInvalidInputError(name, "Invalid "+name+": "+raw)
	}
	return &id, nil
}
