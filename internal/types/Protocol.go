/*

This file contains the normalized protocol record shared by positions and candidate protocols.

*/

package types

// RiskLevel is the qualitative risk tier of a protocol.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// IsValid reports whether the tier is one of low, medium or high.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	}
	return false
}

// RiskPreference is the user's appetite for risk.
type RiskPreference string

const (
	RiskPreferenceConservative RiskPreference = "conservative"
	RiskPreferenceBalanced     RiskPreference = "balanced"
	RiskPreferenceAggressive   RiskPreference = "aggressive"
)

// IsValid reports whether the preference is one of conservative, balanced or aggressive.
func (r RiskPreference) IsValid() bool {
	switch r {
	case RiskPreferenceConservative, RiskPreferenceBalanced, RiskPreferenceAggressive:
		return true
	}
	return false
}

// DeFiProtocol is a user's stake in a protocol (a position) or, with a zero balance,
// a destination the user could move capital into (a candidate).
type DeFiProtocol struct {
	Name        string    `json:"name"`        // e.g., "Aries Markets"
	Chain       string    `json:"chain"`       // e.g., "Aptos"
	APY         float64   `json:"apy"`         // Percentage points, 4.5 means 4.5%/year
	BalanceUSD  float64   `json:"balanceUSD"`  // USD-equivalent balance, zero for candidates
	TokenSymbol string    `json:"tokenSymbol"` // e.g., "APT"
	RiskLevel   RiskLevel `json:"riskLevel"`
}

// AnnualYieldUSD is the yearly yield of the balance at the protocol's APY.
func (p DeFiProtocol) AnnualYieldUSD() float64 {
	return p.BalanceUSD * p.APY / 100
}
