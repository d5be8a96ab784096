package api

import (
	"net/http"

	"github.com/wallet-analytics/internal/types"
)

// handleGetProfitLoss handles GET /api/wallets/{id}/profit-loss?period=24h|7d|30d|all
func (s *Server) handleGetProfitLoss(w http.ResponseWriter, r *http.Request) {
	walletID, err := pathID(r, "id", "wallet")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	pl, err := s.services.ProfitLoss.ProfitLoss(r.Context(), walletID, parsePeriod(r, types.PeriodAll))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, pl)
}

// handleGetRiskAssessment handles GET /api/wallets/{id}/risk
func (s *Server) handleGetRiskAssessment(w http.ResponseWriter, r *http.Request) {
	walletID, err := pathID(r, "id", "wallet")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	report, err := s.services.Risk.Assess(r.Context(), walletID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// handleGetTokenPerformance handles GET /api/wallets/{id}/token-performance?period=7d
func (s *Server) handleGetTokenPerformance(w http.ResponseWriter, r *http.Request) {
	walletID, err := pathID(r, "id", "wallet")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	report, err := s.services.TokenAnalytics.TokenPerformance(r.Context(), walletID, parsePeriod(r, types.PeriodAll))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// handleGetTokenMetrics handles GET /api/tokens/{id}/metrics
func (s *Server) handleGetTokenMetrics(w http.ResponseWriter, r *http.Request) {
	tokenID, err := pathID(r, "id", "token")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	metrics, err := s.services.TokenAnalytics.TokenMetrics(r.Context(), tokenID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}
