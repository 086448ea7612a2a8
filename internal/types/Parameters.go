/*

This file contains the tunable parameters of the recommendation engine.

*/

package types

// RiskProfile binds a risk preference to its tolerance, its score weights and the
// share of a position it is willing to move in one recommendation.
type RiskProfile struct {
	MaxRiskScore float64 `json:"max_risk_score"` // Highest acceptable tier score (low=1, medium=2, high=3)
	YieldWeight  float64 `json:"yield_weight"`   // Weight of APY in the risk-adjusted score
	RiskWeight   float64 `json:"risk_weight"`    // Weight of inverted risk in the risk-adjusted score
	MoveFraction float64 `json:"move_fraction"`  // Share of the position balance to move (0.0 to 1.0)
}

// EngineParameters holds every constant the engine uses for filtering, sizing and gating moves.
type EngineParameters struct {
	RiskProfiles map[RiskPreference]RiskProfile `json:"risk_profiles"`

	MinPositionBalanceUSD   float64 `json:"min_position_balance_usd"`   // Positions below this balance are skipped
	BaseGasFeeUSD           float64 `json:"base_gas_fee_usd"`           // Static same-chain transfer cost
	CrossChainGasMultiplier float64 `json:"cross_chain_gas_multiplier"` // Applied when source and destination chains differ
	MaxBreakEvenDays        float64 `json:"max_break_even_days"`        // Moves must pay back their gas strictly faster than this
}
