package api

import (
	"net/http"
)

// handleGetComposition handles GET /api/portfolio/composition?wallet_ids=1,2&include_zero=true
func (s *Server) handleGetComposition(w http.ResponseWriter, r *http.Request) {
	walletIDs, err := parseWalletIDs(r.URL.Query().Get("wallet_ids"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	includeZero, err := parseBoolParam(r, "include_zero")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	portfolio, err := s.services.Composition.Composition(r.Context(), walletIDs, includeZero)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, portfolio)
}

// handleCompareWallets handles GET /api/wallets/compare?wallet_ids=1,2&period=30d
func (s *Server) handleCompareWallets(w http.ResponseWriter, r *http.Request) {
	walletIDs, err := parseWalletIDs(r.URL.Query().Get("wallet_ids"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	comparison, err := s.services.ProfitLoss.Compare(r.Context(), walletIDs, parsePeriod(r, s.config.ComparePeriod))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, comparison)
}

// handleGetCrossChainValue handles GET /api/cross-chain?user_id=N
func (s *Server) handleGetCrossChainValue(w http.ResponseWriter, r *http.Request) {
	userID, err := parseOptionalID(r, "user_id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	aggregate, err := s.services.Composition.CrossChainValue(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, aggregate)
}
