/*

This file contains the risk model: the numeric scale behind risk tiers, the per-preference
profiles, and the risk-adjusted score used to rank candidate protocols.

*/

package analyzer

import (
	"errors"
	"fmt"
	"math"

	"github.com/elys-network/yield-optimizer/internal/logger"
	"github.com/elys-network/yield-optimizer/internal/types"
)

var engineLogger = logger.GetForComponent("yield_engine")

var ErrUnknownRiskPreference = errors.New("unknown risk preference")
var ErrInvalidEngineParameters = errors.New("invalid engine parameters")

// maxTierScore is the score of the riskiest tier. Inverting against maxTierScore+1 turns
// "lower risk is better" into a term that grows like APY does.
const maxTierScore = 3

var riskScores = map[types.RiskLevel]int{
	types.RiskLevelLow:    1,
	types.RiskLevelMedium: 2,
	types.RiskLevelHigh:   maxTierScore,
}

// RiskScore maps a tier onto the ordered scale low=1 < medium=2 < high=3.
// Callers guarantee a valid tier; anything else scores as the riskiest tier so it can
// never slip through a tolerance check.
func RiskScore(level types.RiskLevel) int {
	if score, ok := riskScores[level]; ok {
		return score
	}
	return maxTierScore
}

// RiskPreferenceProfile returns the profile bound to a preference.
func RiskPreferenceProfile(pref types.RiskPreference, params types.EngineParameters) (types.RiskProfile, error) {
	profile, ok := params.RiskProfiles[pref]
	if !ok {
		return types.RiskProfile{}, fmt.Errorf("%w: %q", ErrUnknownRiskPreference, pref)
	}
	return profile, nil
}

// CalculateRiskAdjustedScore weighs APY against inverted risk. The APY is used as-is,
// without normalizing across protocols, so scores are only comparable under one profile.
func CalculateRiskAdjustedScore(protocol types.DeFiProtocol, profile types.RiskProfile) float64 {
	inverseRiskScore := float64(maxTierScore + 1 - RiskScore(protocol.RiskLevel))
	return profile.YieldWeight*protocol.APY + profile.RiskWeight*inverseRiskScore
}

// CompareRiskLevels labels the direction of a move on the tier scale.
func CompareRiskLevels(from, to types.RiskLevel) types.RiskChange {
	fromScore := RiskScore(from)
	toScore := RiskScore(to)

	if toScore < fromScore {
		return types.RiskChangeLower
	}
	if toScore > fromScore {
		return types.RiskChangeHigher
	}
	return types.RiskChangeSame
}

// ValidateEngineParameters checks that every parameter is finite and within range.
func ValidateEngineParameters(params types.EngineParameters) error {
	if len(params.RiskProfiles) == 0 {
		return errors.New("at least one risk profile is required")
	}

	for pref, profile := range params.RiskProfiles {
		values := []struct {
			value float64
			name  string
		}{
			{profile.MaxRiskScore, "MaxRiskScore"},
			{profile.YieldWeight, "YieldWeight"},
			{profile.RiskWeight, "RiskWeight"},
			{profile.MoveFraction, "MoveFraction"},
		}
		for _, v := range values {
			if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
				return fmt.Errorf("%s profile: %s must be finite", pref, v.name)
			}
			if v.value < 0 {
				return fmt.Errorf("%s profile: %s cannot be negative", pref, v.name)
			}
		}
		if profile.MoveFraction <= 0 || profile.MoveFraction > 1 {
			return fmt.Errorf("%s profile: MoveFraction must be in (0, 1], got %f", pref, profile.MoveFraction)
		}
	}

	thresholds := []struct {
		value float64
		name  string
	}{
		{params.MinPositionBalanceUSD, "MinPositionBalanceUSD"},
		{params.BaseGasFeeUSD, "BaseGasFeeUSD"},
		{params.CrossChainGasMultiplier, "CrossChainGasMultiplier"},
		{params.MaxBreakEvenDays, "MaxBreakEvenDays"},
	}
	for _, t := range thresholds {
		if math.IsNaN(t.value) || math.IsInf(t.value, 0) {
			return errors.New(t.name + " must be finite")
		}
		if t.value < 0 {
			return errors.New(t.name + " cannot be negative")
		}
	}

	if params.MaxBreakEvenDays == 0 {
		return errors.New("MaxBreakEvenDays must be positive")
	}

	return nil
}
