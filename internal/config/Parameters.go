/*

This file contains the default parameters for the recommendation engine.

Each risk profile bounds the tiers a preference may move into and the share of a position
it moves in one step. Moves are charged a static gas estimate and must pay it back within
MaxBreakEvenDays.

*/

package config

import (
	"github.com/elys-network/yield-optimizer/internal/types"
)

// DefaultEngineParameters provides the baseline parameters for the recommendation engine.
var DefaultEngineParameters = types.EngineParameters{
	RiskProfiles: map[types.RiskPreference]types.RiskProfile{
		types.RiskPreferenceConservative: {
			MaxRiskScore: 1.5, // Low-tier protocols only.
			YieldWeight:  0.3,
			RiskWeight:   0.7,
			MoveFraction: 0.3, // Move at most 30% of a position in one step.
		},
		types.RiskPreferenceBalanced: {
			MaxRiskScore: 2.5, // Low and medium tiers.
			YieldWeight:  0.5,
			RiskWeight:   0.5,
			MoveFraction: 0.5,
		},
		types.RiskPreferenceAggressive: {
			MaxRiskScore: 3.5, // Every tier.
			YieldWeight:  0.7,
			RiskWeight:   0.3,
			MoveFraction: 0.8,
		},
	},

	MinPositionBalanceUSD: 10, // Positions under $10 are never worth the gas.

	BaseGasFeeUSD: 0.5, // Static same-chain estimate, not a live quote.

	CrossChainGasMultiplier: 3, // Bridging costs roughly three same-chain transfers.

	MaxBreakEvenDays: 30, // A move has to pay back its gas within a month.
}

// NewEngineParameters returns a deep copy of the defaults, safe for callers to modify.
func NewEngineParameters() types.EngineParameters {
	params := DefaultEngineParameters
	params.RiskProfiles = make(map[types.RiskPreference]types.RiskProfile, len(DefaultEngineParameters.RiskProfiles))
	for pref, profile := range DefaultEngineParameters.RiskProfiles {
		params.RiskProfiles[pref] = profile
	}
	return params
}
