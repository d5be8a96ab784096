// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/wallet-analytics/internal/logging"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

// Service interfaces for dependency injection and testing

// BalanceHistoryServiceInterface defines balance snapshot operations
type BalanceHistoryServiceInterface interface {
	Track(ctx context.Context, walletID int64) (*models.BalanceSnapshot, error)
	History(ctx context.Context, walletID int64, days int) ([]*models.BalanceSnapshot, error)
}

// CompositionServiceInterface defines portfolio aggregation operations
type CompositionServiceInterface interface {
	Composition(ctx context.Context, walletIDs []int64, includeZero bool) (*models.Portfolio, error)
	CrossChainValue(ctx context.Context, userID *int64) (*models.CrossChainAggregate, error)
}

// ProfitLossServiceInterface defines profit/loss and comparison operations
type ProfitLossServiceInterface interface {
	ProfitLoss(ctx context.Context, walletID int64, period types.Period) (*models.ProfitLoss, error)
	Compare(ctx context.Context, walletIDs []int64, period types.Period) (*models.Comparison, error)
}

// RiskServiceInterface defines risk assessment operations
type RiskServiceInterface interface {
	Assess(ctx context.Context, walletID int64) (*models.RiskReport, error)
}

// TokenAnalyticsServiceInterface defines token statistics operations
type TokenAnalyticsServiceInterface interface {
	TokenMetrics(ctx context.Context, tokenID int64) (*models.TokenMetrics, error)
	TokenPerformance(ctx context.Context, walletID int64, period types.Period) (*models.TokenPerformanceReport, error)
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the analytics services the server routes to
type Services struct {
	History        BalanceHistoryServiceInterface
	Composition    CompositionServiceInterface
	ProfitLoss     ProfitLossServiceInterface
	Risk           RiskServiceInterface
	TokenAnalytics TokenAnalyticsServiceInterface
}

// Server represents the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	services   Services
	checks     map[string]Pinger
	config     *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host               string
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RequestsPerSecond  int
	Burst              int
	DefaultHistoryDays int
	MaxHistoryDays     int
	ComparePeriod      types.Period
}

// NewServer creates a new API server instance. checks are pinged by /health.
func NewServer(config *ServerConfig, services Services, checks map[string]Pinger) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		services: services,
		checks:   checks,
		config:   config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RequestsPerSecond, s.config.Burst)

	// Order matters: the request logger must be in place before anything logs
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Wallet endpoints. /wallets/compare must be registered before /wallets/{id}.
	api.HandleFunc("/wallets/compare", s.handleCompareWallets).Methods("GET")
	api.HandleFunc("/wallets/{id}/balance-history", s.handleTrackBalance).Methods("POST")
	api.HandleFunc("/wallets/{id}/balance-history", s.handleGetBalanceHistory).Methods("GET")
	api.HandleFunc("/wallets/{id}/profit-loss", s.handleGetProfitLoss).Methods("GET")
	api.HandleFunc("/wallets/{id}/risk", s.handleGetRiskAssessment).Methods("GET")
	api.HandleFunc("/wallets/{id}/token-performance", s.handleGetTokenPerformance).Methods("GET")

	// Portfolio endpoints
	api.HandleFunc("/portfolio/composition", s.handleGetComposition).Methods("GET")
	api.HandleFunc("/cross-chain", s.handleGetCrossChainValue).Methods("GET")

	// Token endpoints
	api.HandleFunc("/tokens/{id}/metrics", s.handleGetTokenMetrics).Methods("GET")

	// Preflight requests are answered by CORSMiddleware
	s.router.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check.Ping(ctx); err != nil {
			logging.FromContext(ctx).WithField("component", name).WithError(err).Warn("Health check failed")
			components[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	health := "healthy"
	if status != http.StatusOK {
		health = "degraded"
	}
	respondJSON(w, status, map[string]interface{}{
		"status":     health,
		"service":    "wallet-analytics",
		"components": components,
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.GetGlobalLogger().Infof("Starting API server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.GetGlobalLogger().Info("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}
