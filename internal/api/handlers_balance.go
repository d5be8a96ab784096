package api

import (
	"net/http"
)

// handleTrackBalance handles POST /api/wallets/{id}/balance-history
func (s *Server) handleTrackBalance(w http.ResponseWriter, r *http.Request) {
	walletID, err := pathID(r, "id", "wallet")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	snapshot, err := s.services.History.Track(r.Context(), walletID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, snapshot)
}

// handleGetBalanceHistory handles GET /api/wallets/{id}/balance-history?days=N
func (s *Server) handleGetBalanceHistory(w http.ResponseWriter, r *http.Request) {
	walletID, err := pathID(r, "id", "wallet")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	days, err := parseDays(r, s.config.DefaultHistoryDays, s.config.MaxHistoryDays)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	history, err := s.services.History.History(r.Context(), walletID, days)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"wallet_id": walletID,
		"days":      days,
		"history":   history,
	})
}
