package analyzer

import (
	"math"
	"testing"

	"github.com/elys-network/yield-optimizer/internal/config"
	"github.com/elys-network/yield-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskScore_Ordering(t *testing.T) {
	assert.Equal(t, 1, RiskScore(types.RiskLevelLow))
	assert.Equal(t, 2, RiskScore(types.RiskLevelMedium))
	assert.Equal(t, 3, RiskScore(types.RiskLevelHigh))
	assert.Less(t, RiskScore(types.RiskLevelLow), RiskScore(types.RiskLevelMedium))
	assert.Less(t, RiskScore(types.RiskLevelMedium), RiskScore(types.RiskLevelHigh))
}

func TestRiskPreferenceProfile_ReferenceValues(t *testing.T) {
	tests := []struct {
		pref     types.RiskPreference
		expected types.RiskProfile
	}{
		{types.RiskPreferenceConservative, types.RiskProfile{MaxRiskScore: 1.5, YieldWeight: 0.3, RiskWeight: 0.7, MoveFraction: 0.3}},
		{types.RiskPreferenceBalanced, types.RiskProfile{MaxRiskScore: 2.5, YieldWeight: 0.5, RiskWeight: 0.5, MoveFraction: 0.5}},
		{types.RiskPreferenceAggressive, types.RiskProfile{MaxRiskScore: 3.5, YieldWeight: 0.7, RiskWeight: 0.3, MoveFraction: 0.8}},
	}

	for _, tt := range tests {
		t.Run(string(tt.pref), func(t *testing.T) {
			profile, err := RiskPreferenceProfile(tt.pref, config.NewEngineParameters())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, profile)
		})
	}

	_, err := RiskPreferenceProfile("yolo", config.NewEngineParameters())
	assert.ErrorIs(t, err, ErrUnknownRiskPreference)
}

func TestCalculateRiskAdjustedScore(t *testing.T) {
	params := config.NewEngineParameters()
	balanced := params.RiskProfiles[types.RiskPreferenceBalanced]
	conservative := params.RiskProfiles[types.RiskPreferenceConservative]

	// 0.5*10 + 0.5*(4-1)
	assert.InDelta(t, 6.5, CalculateRiskAdjustedScore(types.DeFiProtocol{APY: 10, RiskLevel: types.RiskLevelLow}, balanced), 1e-9)
	// 0.3*10 + 0.7*(4-3)
	assert.InDelta(t, 3.7, CalculateRiskAdjustedScore(types.DeFiProtocol{APY: 10, RiskLevel: types.RiskLevelHigh}, conservative), 1e-9)
}

func TestCalculateRiskAdjustedScore_MonotonicInAPY(t *testing.T) {
	params := config.NewEngineParameters()
	for pref, profile := range params.RiskProfiles {
		for _, level := range []types.RiskLevel{types.RiskLevelLow, types.RiskLevelMedium, types.RiskLevelHigh} {
			previous := math.Inf(-1)
			for apy := 0.0; apy <= 50; apy += 0.5 {
				score := CalculateRiskAdjustedScore(types.DeFiProtocol{APY: apy, RiskLevel: level}, profile)
				assert.GreaterOrEqual(t, score, previous, "pref %s level %s apy %.1f", pref, level, apy)
				previous = score
			}
		}
	}
}

func TestCompareRiskLevels(t *testing.T) {
	tests := []struct {
		from, to types.RiskLevel
		expected types.RiskChange
	}{
		{types.RiskLevelLow, types.RiskLevelLow, types.RiskChangeSame},
		{types.RiskLevelLow, types.RiskLevelHigh, types.RiskChangeHigher},
		{types.RiskLevelHigh, types.RiskLevelMedium, types.RiskChangeLower},
		{types.RiskLevelMedium, types.RiskLevelHigh, types.RiskChangeHigher},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CompareRiskLevels(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestValidateEngineParameters(t *testing.T) {
	require.NoError(t, ValidateEngineParameters(config.NewEngineParameters()))

	params := config.NewEngineParameters()
	params.BaseGasFeeUSD = math.NaN()
	assert.Error(t, ValidateEngineParameters(params))

	params = config.NewEngineParameters()
	params.MaxBreakEvenDays = 0
	assert.Error(t, ValidateEngineParameters(params))

	params = config.NewEngineParameters()
	params.RiskProfiles = nil
	assert.Error(t, ValidateEngineParameters(params))
}

func TestNewEngineParameters_IsACopy(t *testing.T) {
	params := config.NewEngineParameters()
	params.RiskProfiles[types.RiskPreferenceBalanced] = types.RiskProfile{}

	assert.Equal(t, 0.5, config.DefaultEngineParameters.RiskProfiles[types.RiskPreferenceBalanced].MoveFraction)
}
