package state

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// AnalyticsSummary aggregates every stored analysis run.
type AnalyticsSummary struct {
	TotalRuns               int                  `json:"total_runs"`
	RunsWithRecommendations int                  `json:"runs_with_recommendations"`
	TotalCurrentYieldUSD    float64              `json:"total_current_yield_usd"`
	TotalOptimizedYieldUSD  float64              `json:"total_optimized_yield_usd"`
	TopDestinations         []DestinationSummary `json:"top_destinations"`
	LastRunAt               string               `json:"last_run_at,omitempty"`
}

// DestinationSummary counts how often a protocol was recommended as a destination.
type DestinationSummary struct {
	Protocol string `json:"protocol"`
	Count    int    `json:"count"`
}

const topDestinationLimit = 5

// GetAnalyticsSummary retrieves aggregate statistics over all analysis runs.
func (s *PostgresStore) GetAnalyticsSummary(ctx context.Context) (*AnalyticsSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	summary := &AnalyticsSummary{TopDestinations: []DestinationSummary{}}

	query := `
		SELECT
			COUNT(*) AS total_runs,
			COUNT(CASE WHEN cardinality(recommended_destinations) > 0 THEN 1 END) AS runs_with_recommendations,
			COALESCE(SUM(total_current_yield_usd), 0) AS total_current_yield,
			COALESCE(SUM(total_optimized_yield_usd), 0) AS total_optimized_yield,
			COALESCE(to_char(MAX(created_at), 'YYYY-MM-DD"T"HH24:MI:SSOF'), '') AS last_run_at
		FROM analysis_runs
	`
	err := s.db.QueryRowContext(ctx, query).Scan(
		&summary.TotalRuns,
		&summary.RunsWithRecommendations,
		&summary.TotalCurrentYieldUSD,
		&summary.TotalOptimizedYieldUSD,
		&summary.LastRunAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics summary: %w", err)
	}

	destinationsQuery := `
		SELECT destination, COUNT(*) AS recommended
		FROM analysis_runs, unnest(recommended_destinations) AS destination
		GROUP BY destination
		ORDER BY recommended DESC, destination ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, destinationsQuery, topDestinationLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top destinations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var destination DestinationSummary
		if err := rows.Scan(&destination.Protocol, &destination.Count); err != nil {
			return nil, fmt.Errorf("failed to scan destination row: %w", err)
		}
		summary.TopDestinations = append(summary.TopDestinations, destination)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	log.Info().
		Int("totalRuns", summary.TotalRuns).
		Int("destinations", len(summary.TopDestinations)).
		Msg("Retrieved analytics summary")

	return summary, nil
}
