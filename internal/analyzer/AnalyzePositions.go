/*

This file contains the entry point of the recommendation engine.

The engine is a pure function of its arguments: it holds no state between calls, performs
no I/O and may be called concurrently.

*/

package analyzer

import (
	"errors"
	"fmt"

	"github.com/elys-network/yield-optimizer/internal/types"
)

// AnalyzePositions evaluates every position against the catalog and returns the accepted
// moves, in position order, with portfolio totals and a narrative assessment.
// An error is only returned when the preference or the parameters are invalid.
func AnalyzePositions(
	positions []types.DeFiProtocol,
	catalog []types.DeFiProtocol,
	pref types.RiskPreference,
	params types.EngineParameters,
) (types.AnalysisResult, error) {
	if len(positions) == 0 {
		return types.AnalysisResult{
			Recommendations:        []types.TransactionRecommendation{},
			TotalCurrentYieldUSD:   0,
			TotalOptimizedYieldUSD: 0,
			RiskAssessment:         NoPositionsAssessment,
		}, nil
	}

	if err := ValidateEngineParameters(params); err != nil {
		return types.AnalysisResult{}, errors.Join(ErrInvalidEngineParameters, err)
	}

	profile, err := RiskPreferenceProfile(pref, params)
	if err != nil {
		return types.AnalysisResult{}, err
	}

	eligible := FilterEligibleProtocols(catalog, profile)

	engineLogger.Debug().
		Int("positions", len(positions)).
		Int("catalog", len(catalog)).
		Int("eligible", len(eligible)).
		Str("riskPreference", string(pref)).
		Msg("Analyzing positions")

	recommendations := make([]types.TransactionRecommendation, 0, len(positions))
	for _, position := range positions {
		if rec, ok := EvaluatePosition(position, eligible, profile, params); ok {
			recommendations = append(recommendations, rec)
		}
	}

	summary := AggregatePortfolio(positions, recommendations)

	result := types.AnalysisResult{
		Recommendations:        recommendations,
		TotalCurrentYieldUSD:   summary.TotalCurrentYieldUSD,
		TotalOptimizedYieldUSD: summary.TotalOptimizedYieldUSD,
		RiskAssessment:         GenerateRiskAssessment(summary, pref, len(recommendations)),
	}

	engineLogger.Debug().
		Int("recommendations", len(recommendations)).
		Float64("totalCurrentYieldUSD", result.TotalCurrentYieldUSD).
		Float64("totalOptimizedYieldUSD", result.TotalOptimizedYieldUSD).
		Msg("Analysis complete")

	return result, nil
}

// ValidatePreference rejects anything but conservative, balanced or aggressive.
func ValidatePreference(pref types.RiskPreference) error {
	if !pref.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownRiskPreference, pref)
	}
	return nil
}
