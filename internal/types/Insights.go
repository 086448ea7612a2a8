/*

This file contains the types for the generative insights path, which is an alternative
source of candidate protocols and never feeds the deterministic engine directly.

*/

package types

// ProtocolData is one protocol suggestion as returned by the language model.
type ProtocolData struct {
	Name        string  `json:"name"`
	APY         float64 `json:"apy"`       // Fraction, 0.05 means 5%
	TVL         float64 `json:"tvl"`       // Optional
	RiskScore   float64 `json:"riskScore"` // 0 to 1
	Address     string  `json:"address,omitempty"`
	Description string  `json:"description,omitempty"`
}

// InsightRecommendation is a deposit suggestion derived from ProtocolData.
type InsightRecommendation struct {
	Protocol       string  `json:"protocol"`
	Action         string  `json:"action"`
	ExpectedReturn float64 `json:"expectedReturn"`
	NetBenefit     float64 `json:"netBenefit"`
	RiskLevel      float64 `json:"riskLevel"`
	Address        string  `json:"address"`
	Description    string  `json:"description"`
}
