package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/elys-network/yield-optimizer/internal/advisor"
	"github.com/elys-network/yield-optimizer/internal/analyzer"
	"github.com/elys-network/yield-optimizer/internal/logger"
	"github.com/elys-network/yield-optimizer/internal/planner"
	"github.com/elys-network/yield-optimizer/internal/state"
	"github.com/elys-network/yield-optimizer/internal/types"
	"github.com/gorilla/mux"
)

var webLogger = logger.GetForComponent("web_server")

const maxRequestBodyBytes = 1 << 20

// Service is what the HTTP API needs from the advisor. *advisor.Advisor satisfies it.
type Service interface {
	Analyze(ctx context.Context, req advisor.AnalyzeRequest) (advisor.AnalyzeResponse, error)
	Protocols(ctx context.Context) ([]types.DeFiProtocol, error)
	Positions(ctx context.Context, walletAddress string) ([]types.DeFiProtocol, error)
	Insights(ctx context.Context, balanceAPT float64) ([]types.InsightRecommendation, error)
	PlanTransfer(ctx context.Context, rec types.TransactionRecommendation, walletAddress string) (types.TransferPlan, error)
	RecentRuns(ctx context.Context, limit int) ([]types.AnalysisRun, error)
	Run(ctx context.Context, runID string) (types.AnalysisRun, error)
	Analytics(ctx context.Context) (*state.AnalyticsSummary, error)
	Parameters() types.EngineParameters
}

// WebServer serves the optimizer HTTP API
type WebServer struct {
	router      *mux.Router
	port        string
	service     Service
	healthCheck func() error
	server      *http.Server
	startedAt   time.Time
}

// NewWebServer creates a new web server instance. healthCheck reports database health and
// may be nil when persistence is disabled.
func NewWebServer(port string, service Service, healthCheck func() error) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:      mux.NewRouter(),
		port:        port,
		service:     service,
		healthCheck: healthCheck,
		startedAt:   time.Now(),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/ai/analyze", ws.handleAnalyze).Methods("POST", "OPTIONS")
	api.HandleFunc("/protocols", ws.handleGetProtocols).Methods("GET")
	api.HandleFunc("/positions/{wallet}", ws.handleGetPositions).Methods("GET")
	api.HandleFunc("/insights", ws.handleInsights).Methods("POST", "OPTIONS")
	api.HandleFunc("/transfers/plan", ws.handlePlanTransfer).Methods("POST", "OPTIONS")
	api.HandleFunc("/analyses", ws.handleGetAnalyses).Methods("GET")
	api.HandleFunc("/analyses/{id}", ws.handleGetAnalysis).Methods("GET")
	api.HandleFunc("/analytics", ws.handleGetAnalytics).Methods("GET")
	api.HandleFunc("/engine-parameters", ws.handleGetEngineParameters).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Handler exposes the router, mainly for tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// Start starts the web server and blocks until it stops. http.ErrServerClosed is not an error.
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	ws.server = &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the web server.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	if ws.server == nil {
		return nil
	}
	webLogger.Info().Msg("Shutting down web server")
	return ws.server.Shutdown(ctx)
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbStatus := "disabled"
	hasErrors := false
	if ws.healthCheck != nil {
		dbStatus = "healthy"
		if err := ws.healthCheck(); err != nil {
			webLogger.Warn().Err(err).Msg("Database health check failed")
			dbStatus = "unhealthy"
			hasErrors = true
		}
	}

	overallStatus := "OK"
	if hasErrors {
		overallStatus = "DEGRADED"
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
			"uptime_seconds":   int64(time.Since(ws.startedAt).Seconds()),
		},
		"component": map[string]interface{}{
			"name":    "defi-yield-optimizer",
			"version": "1.0.0",
		},
		"database": dbStatus,
	}

	statusCode := http.StatusOK
	if hasErrors {
		statusCode = http.StatusServiceUnavailable
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleAnalyze runs the recommendation engine over the posted positions
func (ws *WebServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req advisor.AnalyzeRequest
	if err := ws.decodeJSON(w, r, &req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := ws.service.Analyze(r.Context(), req)
	switch {
	case err == nil:
		ws.writeJSONResponse(w, http.StatusOK, resp)
	case errors.Is(err, advisor.ErrMissingParameters):
		ws.writeErrorResponse(w, http.StatusBadRequest, "Missing required parameters")
	case errors.Is(err, analyzer.ErrUnknownRiskPreference):
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid risk preference")
	case errors.Is(err, advisor.ErrInvalidPosition):
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid position")
	default:
		webLogger.Error().Err(err).Msg("Failed to analyze positions")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to analyze positions")
	}
}

// handleGetProtocols returns the candidate catalog
func (ws *WebServer) handleGetProtocols(w http.ResponseWriter, r *http.Request) {
	protocols, err := ws.service.Protocols(r.Context())
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get protocols")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve protocols")
		return
	}

	response := map[string]interface{}{
		"protocols": protocols,
		"count":     len(protocols),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPositions returns a wallet's positions
func (ws *WebServer) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	wallet := mux.Vars(r)["wallet"]

	positions, err := ws.service.Positions(r.Context(), wallet)
	if err != nil {
		if errors.Is(err, advisor.ErrMissingParameters) {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Missing wallet address")
			return
		}
		webLogger.Error().Err(err).Str("wallet", wallet).Msg("Failed to get positions")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve positions")
		return
	}

	response := map[string]interface{}{
		"walletAddress": wallet,
		"positions":     positions,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

type insightsRequest struct {
	Balance *float64 `json:"balance"`
}

// handleInsights returns generative protocol suggestions for an APT balance
func (ws *WebServer) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req insightsRequest
	if err := ws.decodeJSON(w, r, &req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Balance == nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	recs, err := ws.service.Insights(r.Context(), *req.Balance)
	if err != nil {
		if errors.Is(err, advisor.ErrInvalidBalance) {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid balance")
			return
		}
		webLogger.Error().Err(err).Msg("Failed to get insights")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve insights")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"recommendations": recs})
}

type planRequest struct {
	WalletAddress  string                          `json:"walletAddress"`
	Recommendation types.TransactionRecommendation `json:"recommendation"`
}

// handlePlanTransfer prepares the transactions for one recommendation
func (ws *WebServer) handlePlanTransfer(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := ws.decodeJSON(w, r, &req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	plan, err := ws.service.PlanTransfer(r.Context(), req.Recommendation, req.WalletAddress)
	switch {
	case err == nil:
		ws.writeJSONResponse(w, http.StatusOK, plan)
	case errors.Is(err, planner.ErrAdapterNotFound):
		ws.writeErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, planner.ErrMissingSource),
		errors.Is(err, planner.ErrMissingWallet),
		errors.Is(err, planner.ErrInvalidAmount),
		errors.Is(err, planner.ErrSameProtocol):
		ws.writeErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		webLogger.Error().Err(err).Msg("Failed to plan transfer")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to prepare transfer")
	}
}

// handleGetAnalyses returns recent analysis runs
func (ws *WebServer) handleGetAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	runs, err := ws.service.RecentRuns(r.Context(), limit)
	if err != nil {
		ws.writeStoreError(w, err, "Failed to retrieve analyses")
		return
	}

	response := map[string]interface{}{
		"analyses": runs,
		"count":    len(runs),
		"limit":    limit,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetAnalysis returns one analysis run by ID
func (ws *WebServer) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := ws.service.Run(r.Context(), id)
	if err != nil {
		if errors.Is(err, state.ErrRunNotFound) {
			ws.writeErrorResponse(w, http.StatusNotFound, "Analysis not found")
			return
		}
		ws.writeStoreError(w, err, "Failed to retrieve analysis")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, run)
}

// handleGetAnalytics returns aggregate statistics over stored analyses
func (ws *WebServer) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := ws.service.Analytics(r.Context())
	if err != nil {
		ws.writeStoreError(w, err, "Failed to retrieve analytics")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, summary)
}

// handleGetEngineParameters returns the engine parameters in use
func (ws *WebServer) handleGetEngineParameters(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"parameters": ws.service.Parameters(),
		"timestamp":  time.Now().UTC(),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

func (ws *WebServer) writeStoreError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, advisor.ErrStoreDisabled) {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "Analysis history is not enabled")
		return
	}
	webLogger.Error().Err(err).Msg(message)
	ws.writeErrorResponse(w, http.StatusInternalServerError, message)
}

func (ws *WebServer) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
