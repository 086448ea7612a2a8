// ./internal/state/analysis_store.go
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elys-network/yield-optimizer/internal/types"
	"github.com/lib/pq" // PostgreSQL driver for array support
	"github.com/rs/zerolog/log"
)

var (
	ErrDBNotInitialized = errors.New("database not initialized")
	ErrRunNotFound      = errors.New("analysis run not found")
)

const (
	defaultRunLimit = 10
	maxRunLimit     = 100
)

// PostgresStore persists analysis runs and engine parameters.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open connection pool, typically the global DB.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ready() error {
	if s == nil || s.db == nil {
		return ErrDBNotInitialized
	}
	return nil
}

// SaveAnalysisRun writes a complete analysis run.
func (s *PostgresStore) SaveAnalysisRun(ctx context.Context, run types.AnalysisRun) error {
	if err := s.ready(); err != nil {
		return err
	}

	positionsJSON, err := json.Marshal(run.Positions)
	if err != nil {
		return fmt.Errorf("failed to marshal positions: %w", err)
	}

	recommendations := run.Result.Recommendations
	if recommendations == nil {
		recommendations = []types.TransactionRecommendation{}
	}
	recommendationsJSON, err := json.Marshal(recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	destinations := make([]string, 0, len(recommendations))
	for _, rec := range recommendations {
		destinations = append(destinations, rec.ToProtocol.Name)
	}

	query := `
		INSERT INTO analysis_runs (
			run_id, created_at, wallet_address, risk_preference,
			positions, recommendations, recommended_destinations,
			total_current_yield_usd, total_optimized_yield_usd, risk_assessment
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`

	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.CreatedAt, run.WalletAddress, string(run.RiskPreference),
		positionsJSON, recommendationsJSON, pq.Array(destinations),
		run.Result.TotalCurrentYieldUSD, run.Result.TotalOptimizedYieldUSD, run.Result.RiskAssessment,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}

	log.Info().
		Str("run_id", run.ID).
		Str("wallet", run.WalletAddress).
		Int("recommendations", len(recommendations)).
		Msg("Analysis run saved to database")

	return nil
}

const selectRunColumns = `
	SELECT
		run_id, created_at, wallet_address, risk_preference,
		positions, recommendations,
		total_current_yield_usd, total_optimized_yield_usd, risk_assessment
	FROM analysis_runs
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (types.AnalysisRun, error) {
	var run types.AnalysisRun
	var preference string
	var positionsJSON, recommendationsJSON []byte

	err := row.Scan(
		&run.ID, &run.CreatedAt, &run.WalletAddress, &preference,
		&positionsJSON, &recommendationsJSON,
		&run.Result.TotalCurrentYieldUSD, &run.Result.TotalOptimizedYieldUSD, &run.Result.RiskAssessment,
	)
	if err != nil {
		return types.AnalysisRun{}, err
	}
	run.RiskPreference = types.RiskPreference(preference)

	if len(positionsJSON) > 0 {
		if err := json.Unmarshal(positionsJSON, &run.Positions); err != nil {
			return types.AnalysisRun{}, fmt.Errorf("failed to unmarshal positions: %w", err)
		}
	}
	if len(recommendationsJSON) > 0 {
		if err := json.Unmarshal(recommendationsJSON, &run.Result.Recommendations); err != nil {
			return types.AnalysisRun{}, fmt.Errorf("failed to unmarshal recommendations: %w", err)
		}
	}
	return run, nil
}

// GetRecentAnalysisRuns returns the newest runs first. Limits outside 1..100 fall back to 10.
func (s *PostgresStore) GetRecentAnalysisRuns(ctx context.Context, limit int) ([]types.AnalysisRun, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxRunLimit {
		limit = defaultRunLimit
	}

	rows, err := s.db.QueryContext(ctx, selectRunColumns+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query recent analysis runs")
		return nil, fmt.Errorf("failed to query recent analysis runs: %w", err)
	}
	defer rows.Close()

	runs := make([]types.AnalysisRun, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan analysis run row")
			continue // Skip this row and continue with others
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	log.Debug().Int("count", len(runs)).Int("limit", limit).Msg("Retrieved recent analysis runs")
	return runs, nil
}

// GetAnalysisRunByID returns one run or ErrRunNotFound.
func (s *PostgresStore) GetAnalysisRunByID(ctx context.Context, runID string) (types.AnalysisRun, error) {
	if err := s.ready(); err != nil {
		return types.AnalysisRun{}, err
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, selectRunColumns+` WHERE run_id = $1`, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.AnalysisRun{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		log.Error().Err(err).Str("run_id", runID).Msg("Failed to query analysis run by ID")
		return types.AnalysisRun{}, fmt.Errorf("failed to query analysis run by ID: %w", err)
	}
	return run, nil
}
