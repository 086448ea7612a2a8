/*

This file contains the risk tier assigned to each known protocol.

Adapters only report balances and APYs, the tier comes from here. A protocol that has no
entry is treated as medium risk.

*/

package config

import "github.com/elys-network/yield-optimizer/internal/types"

var (
	ProtocolRiskLevels = map[string]types.RiskLevel{
		"Aries Markets":   types.RiskLevelLow,
		"Liquidswap":      types.RiskLevelMedium,
		"Tortuga Finance": types.RiskLevelHigh,
		"Ditto Finance":   types.RiskLevelMedium,
		"Abel Finance":    types.RiskLevelMedium,
	}
)

// RiskLevelForProtocol returns the configured tier for a protocol, medium when unknown.
func RiskLevelForProtocol(name string) types.RiskLevel {
	if level, ok := ProtocolRiskLevels[name]; ok {
		return level
	}
	return types.RiskLevelMedium
}
