/*

This file contains the output types of the recommendation engine.

*/

package types

import "time"

// RiskChange describes how a move shifts the user's risk tier.
type RiskChange string

const (
	RiskChangeLower  RiskChange = "lower"
	RiskChangeSame   RiskChange = "same"
	RiskChangeHigher RiskChange = "higher"
)

// TransactionRecommendation is a single accepted move from a position into a candidate protocol.
type TransactionRecommendation struct {
	FromProtocol        *DeFiProtocol `json:"fromProtocol,omitempty"`
	ToProtocol          DeFiProtocol  `json:"toProtocol"`
	AmountUSD           float64       `json:"amountUSD"`           // Never exceeds FromProtocol.BalanceUSD
	ExpectedAPYIncrease float64       `json:"expectedAPYIncrease"` // Incremental yearly yield in USD
	GasFeeUSD           float64       `json:"gasFeeUSD"`           // One-time transfer cost estimate
	BreakEvenDays       float64       `json:"breakEvenDays"`
	RiskChange          RiskChange    `json:"riskChange"`
	Reasoning           string        `json:"reasoning"`
}

// AnalysisResult is the full output of one engine invocation.
type AnalysisResult struct {
	Recommendations        []TransactionRecommendation `json:"recommendations"`
	TotalCurrentYieldUSD   float64                     `json:"totalCurrentYieldUSD"`
	TotalOptimizedYieldUSD float64                     `json:"totalOptimizedYieldUSD"`
	RiskAssessment         string                      `json:"riskAssessment"`
}

// AnalysisRun is the persisted audit record of an analysis request.
type AnalysisRun struct {
	ID             string         `json:"id"`
	WalletAddress  string         `json:"wallet_address"`
	RiskPreference RiskPreference `json:"risk_preference"`
	Positions      []DeFiProtocol `json:"positions"`
	Result         AnalysisResult `json:"result"`
	CreatedAt      time.Time      `json:"created_at"`
}
