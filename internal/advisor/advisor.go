package advisor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/elys-network/yield-optimizer/internal/analyzer"
	"github.com/elys-network/yield-optimizer/internal/insights"
	"github.com/elys-network/yield-optimizer/internal/logger"
	"github.com/elys-network/yield-optimizer/internal/planner"
	"github.com/elys-network/yield-optimizer/internal/state"
	"github.com/elys-network/yield-optimizer/internal/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Engine parameters are stored and looked up under this name and version.
	DefaultParamsConfigName    = "default_yield_strategy"
	DefaultParamsConfigVersion = 1
)

var (
	ErrMissingParameters = errors.New("missing required parameters")
	ErrInvalidPosition   = errors.New("invalid position")
	ErrStoreDisabled     = errors.New("analysis history is not enabled")
	ErrInvalidBalance    = errors.New("balance must be non-negative and finite")
)

// Catalog supplies candidate protocols and the user's current positions.
type Catalog interface {
	AvailableProtocols(ctx context.Context) ([]types.DeFiProtocol, error)
	UserPositions(ctx context.Context, walletAddress string) ([]types.DeFiProtocol, error)
}

// RunStore persists analysis runs. *state.PostgresStore satisfies it.
type RunStore interface {
	SaveAnalysisRun(ctx context.Context, run types.AnalysisRun) error
	GetRecentAnalysisRuns(ctx context.Context, limit int) ([]types.AnalysisRun, error)
	GetAnalysisRunByID(ctx context.Context, runID string) (types.AnalysisRun, error)
	GetAnalyticsSummary(ctx context.Context) (*state.AnalyticsSummary, error)
}

// InsightsProvider returns generative protocol suggestions. *insights.GeminiClient satisfies it.
type InsightsProvider interface {
	GetDefiInsights(ctx context.Context, balanceAPT float64) []types.InsightRecommendation
}

// Advisor is the service behind the HTTP API. It wires the catalog, the recommendation engine,
// transfer planning and analysis history together.
type Advisor struct {
	logger   zerolog.Logger
	catalog  Catalog
	registry planner.AdapterLookup
	store    RunStore
	insights InsightsProvider
	params   types.EngineParameters
	now      func() time.Time
}

// Config holds the dependencies for creating a new Advisor. Store and Insights are optional.
type Config struct {
	Catalog  Catalog
	Registry planner.AdapterLookup
	Store    RunStore
	Insights InsightsProvider
	Params   *types.EngineParameters
}

// AnalyzeRequest is the input of one analysis.
type AnalyzeRequest struct {
	WalletAddress  string               `json:"walletAddress"`
	Positions      []types.DeFiProtocol `json:"positions"`
	RiskPreference types.RiskPreference `json:"riskPreference"`
}

// AnalyzeResponse is the engine result plus the ID it was stored under.
type AnalyzeResponse struct {
	RunID string `json:"runId"`
	types.AnalysisResult
}

// NewAdvisor creates a new Advisor with dependency injection
func NewAdvisor(cfg Config) (*Advisor, error) {
	if err := validateAdvisorConfig(cfg); err != nil {
		return nil, fmt.Errorf("advisor configuration validation failed: %w", err)
	}

	a := &Advisor{
		logger:   logger.GetForComponent("advisor"),
		catalog:  cfg.Catalog,
		registry: cfg.Registry,
		store:    cfg.Store,
		insights: cfg.Insights,
		params:   copyEngineParameters(*cfg.Params),
		now:      time.Now,
	}

	a.logger.Info().
		Bool("historyEnabled", a.store != nil).
		Bool("insightsEnabled", a.insights != nil).
		Msg("Advisor created successfully with dependency injection")

	return a, nil
}

// validateAdvisorConfig validates the advisor configuration
func validateAdvisorConfig(cfg Config) error {
	if cfg.Catalog == nil {
		return fmt.Errorf("catalog cannot be nil")
	}
	if cfg.Registry == nil {
		return fmt.Errorf("protocol registry cannot be nil")
	}
	if cfg.Params == nil {
		return fmt.Errorf("engine parameters cannot be nil")
	}
	if err := analyzer.ValidateEngineParameters(*cfg.Params); err != nil {
		return errors.Join(analyzer.ErrInvalidEngineParameters, err)
	}
	return nil
}

// Analyze runs the engine over the request's positions and the current catalog, then records
// the run. A failure to record is logged and does not fail the analysis.
func (a *Advisor) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error) {
	if strings.TrimSpace(req.WalletAddress) == "" || req.Positions == nil || req.RiskPreference == "" {
		return AnalyzeResponse{}, ErrMissingParameters
	}
	if err := analyzer.ValidatePreference(req.RiskPreference); err != nil {
		return AnalyzeResponse{}, err
	}
	if err := validatePositions(req.Positions); err != nil {
		return AnalyzeResponse{}, err
	}

	runID := uuid.New().String()
	runLogger := a.logger.With().Str("run_id", runID).Str("wallet", req.WalletAddress).Logger()

	catalog, err := a.catalog.AvailableProtocols(ctx)
	if err != nil {
		runLogger.Error().Err(err).Msg("Analysis aborted: Failed to load protocol catalog.")
		return AnalyzeResponse{}, fmt.Errorf("failed to load protocol catalog: %w", err)
	}

	result, err := analyzer.AnalyzePositions(req.Positions, catalog, req.RiskPreference, a.params)
	if err != nil {
		runLogger.Error().Err(err).Msg("Analysis aborted: Engine rejected the request.")
		return AnalyzeResponse{}, err
	}

	runLogger.Info().
		Int("positions", len(req.Positions)).
		Int("catalog", len(catalog)).
		Int("recommendations", len(result.Recommendations)).
		Float64("totalCurrentYieldUSD", result.TotalCurrentYieldUSD).
		Float64("totalOptimizedYieldUSD", result.TotalOptimizedYieldUSD).
		Msg("Analysis completed")

	if a.store != nil {
		run := types.AnalysisRun{
			ID:             runID,
			WalletAddress:  req.WalletAddress,
			RiskPreference: req.RiskPreference,
			Positions:      req.Positions,
			Result:         result,
			CreatedAt:      a.now().UTC(),
		}
		if err := a.store.SaveAnalysisRun(ctx, run); err != nil {
			runLogger.Error().Err(err).Msg("Failed to save analysis run")
		}
	}

	return AnalyzeResponse{RunID: runID, AnalysisResult: result}, nil
}

// validatePositions checks the shape the engine assumes of every position.
func validatePositions(positions []types.DeFiProtocol) error {
	for i, position := range positions {
		switch {
		case strings.TrimSpace(position.Name) == "":
			return fmt.Errorf("%w: position %d has no name", ErrInvalidPosition, i)
		case !position.RiskLevel.IsValid():
			return fmt.Errorf("%w: %s has unknown risk level %q", ErrInvalidPosition, position.Name, position.RiskLevel)
		case math.IsNaN(position.APY) || math.IsInf(position.APY, 0):
			return fmt.Errorf("%w: %s has a non-finite APY", ErrInvalidPosition, position.Name)
		case math.IsNaN(position.BalanceUSD) || math.IsInf(position.BalanceUSD, 0) || position.BalanceUSD < 0:
			return fmt.Errorf("%w: %s balance must be non-negative and finite", ErrInvalidPosition, position.Name)
		}
	}
	return nil
}

// Positions returns the wallet's current positions.
func (a *Advisor) Positions(ctx context.Context, walletAddress string) ([]types.DeFiProtocol, error) {
	if strings.TrimSpace(walletAddress) == "" {
		return nil, ErrMissingParameters
	}
	return a.catalog.UserPositions(ctx, walletAddress)
}

// Protocols returns the current candidate catalog.
func (a *Advisor) Protocols(ctx context.Context) ([]types.DeFiProtocol, error) {
	return a.catalog.AvailableProtocols(ctx)
}

// Insights returns generative suggestions for a wallet holding balanceAPT. Without a
// configured provider the fallback list is returned.
func (a *Advisor) Insights(ctx context.Context, balanceAPT float64) ([]types.InsightRecommendation, error) {
	if math.IsNaN(balanceAPT) || math.IsInf(balanceAPT, 0) || balanceAPT < 0 {
		return nil, fmt.Errorf("%w: %f", ErrInvalidBalance, balanceAPT)
	}
	if a.insights == nil {
		return insights.FallbackRecommendations(), nil
	}
	return a.insights.GetDefiInsights(ctx, balanceAPT), nil
}

// PlanTransfer prepares the transactions that carry out one recommendation.
func (a *Advisor) PlanTransfer(ctx context.Context, rec types.TransactionRecommendation, walletAddress string) (types.TransferPlan, error) {
	return planner.BuildTransferPlan(ctx, a.registry, rec, walletAddress)
}

// RecentRuns returns the newest stored analysis runs.
func (a *Advisor) RecentRuns(ctx context.Context, limit int) ([]types.AnalysisRun, error) {
	if a.store == nil {
		return nil, ErrStoreDisabled
	}
	return a.store.GetRecentAnalysisRuns(ctx, limit)
}

// Run returns one stored analysis run.
func (a *Advisor) Run(ctx context.Context, runID string) (types.AnalysisRun, error) {
	if a.store == nil {
		return types.AnalysisRun{}, ErrStoreDisabled
	}
	return a.store.GetAnalysisRunByID(ctx, runID)
}

// Analytics returns aggregate statistics over stored analysis runs.
func (a *Advisor) Analytics(ctx context.Context) (*state.AnalyticsSummary, error) {
	if a.store == nil {
		return nil, ErrStoreDisabled
	}
	return a.store.GetAnalyticsSummary(ctx)
}

// Parameters returns a copy of the engine parameters in use.
func (a *Advisor) Parameters() types.EngineParameters {
	return copyEngineParameters(a.params)
}

func copyEngineParameters(params types.EngineParameters) types.EngineParameters {
	profiles := make(map[types.RiskPreference]types.RiskProfile, len(params.RiskProfiles))
	for pref, profile := range params.RiskProfiles {
		profiles[pref] = profile
	}
	params.RiskProfiles = profiles
	return params
}
