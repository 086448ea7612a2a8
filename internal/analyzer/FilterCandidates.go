package analyzer

import (
	"github.com/elys-network/yield-optimizer/internal/types"
)

// FilterEligibleProtocols keeps the catalog entries whose tier is within the profile's
// tolerance. Order is preserved and entries sharing a name stay distinct candidates.
func FilterEligibleProtocols(catalog []types.DeFiProtocol, profile types.RiskProfile) []types.DeFiProtocol {
	eligible := make([]types.DeFiProtocol, 0, len(catalog))
	for _, protocol := range catalog {
		if float64(RiskScore(protocol.RiskLevel)) <= profile.MaxRiskScore {
			eligible = append(eligible, protocol)
		}
	}
	return eligible
}
