/*

This file contains the per-position evaluator: pick the best eligible destination for a
position, size the move, and accept it only if it pays back its transfer cost fast enough.

*/

package analyzer

import (
	"sort"

	"github.com/elys-network/yield-optimizer/internal/types"
)

const daysPerYear = 365.0

// EstimateGasFee returns the static transfer cost of a move. Moves across chains cost a
// multiple of the base fee.
func EstimateGasFee(from, to types.DeFiProtocol, params types.EngineParameters) float64 {
	if from.Chain != to.Chain {
		return params.BaseGasFeeUSD * params.CrossChainGasMultiplier
	}
	return params.BaseGasFeeUSD
}

// CalculateYearlyGain is the extra yield per year of moving amountUSD from one protocol to another.
func CalculateYearlyGain(from, to types.DeFiProtocol, amountUSD float64) float64 {
	return amountUSD * (to.APY - from.APY) / 100
}

// CalculateBreakEvenDays is how many days of extra yield it takes to recover gasFeeUSD.
// ok is false when the move does not gain anything, in which case it never breaks even.
func CalculateBreakEvenDays(yearlyGain, gasFeeUSD float64) (days float64, ok bool) {
	if yearlyGain <= 0 {
		return 0, false
	}
	return gasFeeUSD / (yearlyGain / daysPerYear), true
}

// PassesBreakEvenGate reports whether a move recovers its gas fee in strictly fewer than
// MaxBreakEvenDays, along with the break-even day count.
func PassesBreakEvenGate(yearlyGain, gasFeeUSD float64, params types.EngineParameters) (days float64, ok bool) {
	days, gains := CalculateBreakEvenDays(yearlyGain, gasFeeUSD)
	return days, gains && days < params.MaxBreakEvenDays
}

// RankCandidates returns the destinations that beat the position's APY, best first by
// risk-adjusted score. The sort is stable, so on equal scores the first one in the catalog wins.
func RankCandidates(position types.DeFiProtocol, eligible []types.DeFiProtocol, profile types.RiskProfile) []types.DeFiProtocol {
	type scoredOption struct {
		protocol types.DeFiProtocol
		score    float64
	}

	betterOptions := make([]scoredOption, 0, len(eligible))
	for _, candidate := range eligible {
		if candidate.Name != position.Name && candidate.APY > position.APY {
			betterOptions = append(betterOptions, scoredOption{
				protocol: candidate,
				score:    CalculateRiskAdjustedScore(candidate, profile),
			})
		}
	}

	sort.SliceStable(betterOptions, func(i, j int) bool {
		return betterOptions[i].score > betterOptions[j].score
	})

	ranked := make([]types.DeFiProtocol, len(betterOptions))
	for i, option := range betterOptions {
		ranked[i] = option.protocol
	}
	return ranked
}

// EvaluatePosition returns the recommendation for one position, or false when the position
// is too small, has no better destination, or the best move does not break even in time.
func EvaluatePosition(
	position types.DeFiProtocol,
	eligible []types.DeFiProtocol,
	profile types.RiskProfile,
	params types.EngineParameters,
) (types.TransactionRecommendation, bool) {
	if position.BalanceUSD < params.MinPositionBalanceUSD {
		engineLogger.Debug().
			Str("position", position.Name).
			Float64("balanceUSD", position.BalanceUSD).
			Msg("Position below minimum balance, skipping")
		return types.TransactionRecommendation{}, false
	}

	ranked := RankCandidates(position, eligible, profile)
	if len(ranked) == 0 {
		engineLogger.Debug().Str("position", position.Name).Msg("No better eligible protocol")
		return types.TransactionRecommendation{}, false
	}
	best := ranked[0]

	moveAmount := position.BalanceUSD * profile.MoveFraction
	gasFee := EstimateGasFee(position, best, params)
	yearlyGain := CalculateYearlyGain(position, best, moveAmount)

	breakEvenDays, ok := PassesBreakEvenGate(yearlyGain, gasFee, params)
	if !ok {
		engineLogger.Debug().
			Str("position", position.Name).
			Str("candidate", best.Name).
			Float64("yearlyGain", yearlyGain).
			Float64("gasFee", gasFee).
			Float64("breakEvenDays", breakEvenDays).
			Msg("Move rejected by break-even gate")
		return types.TransactionRecommendation{}, false
	}

	riskChange := CompareRiskLevels(position.RiskLevel, best.RiskLevel)
	source := position

	recommendation := types.TransactionRecommendation{
		FromProtocol:        &source,
		ToProtocol:          best,
		AmountUSD:           moveAmount,
		ExpectedAPYIncrease: yearlyGain,
		GasFeeUSD:           gasFee,
		BreakEvenDays:       breakEvenDays,
		RiskChange:          riskChange,
		Reasoning:           GenerateReasoning(position, best, moveAmount, gasFee, riskChange),
	}

	engineLogger.Debug().
		Str("position", position.Name).
		Str("candidate", best.Name).
		Float64("amountUSD", moveAmount).
		Float64("yearlyGain", yearlyGain).
		Float64("breakEvenDays", breakEvenDays).
		Str("riskChange", string(riskChange)).
		Msg("Move accepted")

	return recommendation, true
}
