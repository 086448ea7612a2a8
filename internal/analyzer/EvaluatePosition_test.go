package analyzer

import (
	"testing"

	"github.com/elys-network/yield-optimizer/internal/config"
	"github.com/elys-network/yield-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateGasFee(t *testing.T) {
	params := config.NewEngineParameters()
	from := types.DeFiProtocol{Name: "A", Chain: "X", APY: 5}

	assert.Equal(t, 0.5, EstimateGasFee(from, types.DeFiProtocol{Chain: "X"}, params))
	assert.Equal(t, 1.5, EstimateGasFee(from, types.DeFiProtocol{Chain: "Y"}, params))
}

func TestBreakEvenGate(t *testing.T) {
	params := config.NewEngineParameters()

	_, ok := CalculateBreakEvenDays(0, 0.5)
	assert.False(t, ok)
	_, ok = CalculateBreakEvenDays(-3, 0.5)
	assert.False(t, ok)

	tests := []struct {
		name       string
		yearlyGain float64
		gasFee     float64
		wantDays   float64
		wantOK     bool
	}{
		{"no gain", 0, 0.5, 0, false},
		{"loss", -10, 0.5, 0, false},
		{"fast payback", 27.5, 0.5, 0.5 * 365 / 27.5, true},
		{"just under the limit", 0.5 * 365 / 29.9, 0.5, 29.9, true},
		{"exactly the limit", 0.5 * 365 / 30, 0.5, 30, false},
		{"over the limit", 5, 1.5, 109.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, ok := PassesBreakEvenGate(tt.yearlyGain, tt.gasFee, params)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.wantDays, days, 1e-9)
		})
	}
}

func TestEvaluatePosition_BalanceFloorIsInclusive(t *testing.T) {
	params := config.NewEngineParameters()
	profile := params.RiskProfiles[types.RiskPreferenceAggressive]
	// $8 moved at +500 points gains $40/year and pays back 0.5 in ~4.6 days.
	eligible := []types.DeFiProtocol{{Name: "B", Chain: "X", APY: 501, RiskLevel: types.RiskLevelLow}}

	rec, ok := EvaluatePosition(types.DeFiProtocol{Name: "A", Chain: "X", APY: 1, BalanceUSD: 10, RiskLevel: types.RiskLevelLow}, eligible, profile, params)
	require.True(t, ok)
	assert.InDelta(t, 8.0, rec.AmountUSD, 1e-9)
	assert.InDelta(t, 40.0, rec.ExpectedAPYIncrease, 1e-9)

	_, ok = EvaluatePosition(types.DeFiProtocol{Name: "A", Chain: "X", APY: 1, BalanceUSD: 9.99, RiskLevel: types.RiskLevelLow}, eligible, profile, params)
	assert.False(t, ok)
}

func TestEvaluatePosition_RejectsSlowPayback(t *testing.T) {
	params := config.NewEngineParameters()
	profile := params.RiskProfiles[types.RiskPreferenceBalanced]
	position := types.DeFiProtocol{Name: "A", Chain: "X", APY: 5, BalanceUSD: 100, RiskLevel: types.RiskLevelLow}

	// $50 at +2 points gains $1/year: 182.5 days to recover 0.5.
	_, ok := EvaluatePosition(position, []types.DeFiProtocol{{Name: "B", Chain: "X", APY: 7, RiskLevel: types.RiskLevelLow}}, profile, params)
	assert.False(t, ok)
}
