package analyzer

import (
	"testing"

	"github.com/elys-network/yield-optimizer/internal/config"
	"github.com/elys-network/yield-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestFilterEligibleProtocols(t *testing.T) {
	catalog := []types.DeFiProtocol{
		{Name: "H", RiskLevel: types.RiskLevelHigh},
		{Name: "L", RiskLevel: types.RiskLevelLow},
		{Name: "M", RiskLevel: types.RiskLevelMedium},
		{Name: "L", RiskLevel: types.RiskLevelLow},
	}
	params := config.NewEngineParameters()

	names := func(protocols []types.DeFiProtocol) []string {
		out := make([]string, 0, len(protocols))
		for _, p := range protocols {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, []string{"L", "L"}, names(FilterEligibleProtocols(catalog, params.RiskProfiles[types.RiskPreferenceConservative])))
	assert.Equal(t, []string{"L", "M", "L"}, names(FilterEligibleProtocols(catalog, params.RiskProfiles[types.RiskPreferenceBalanced])))
	assert.Equal(t, []string{"H", "L", "M", "L"}, names(FilterEligibleProtocols(catalog, params.RiskProfiles[types.RiskPreferenceAggressive])))
	assert.Empty(t, FilterEligibleProtocols(nil, params.RiskProfiles[types.RiskPreferenceAggressive]))
}
