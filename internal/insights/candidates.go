package insights

import (
	"math"

	"github.com/elys-network/yield-optimizer/internal/types"
)

const (
	insightChain       = "Aptos"
	insightTokenSymbol = "APT"
)

// ToCandidates converts insight recommendations into zero-balance Aptos candidates.
// Expected returns are fractions and become percentage points. Entries with a non-finite
// return or risk score are dropped.
func ToCandidates(recs []types.InsightRecommendation) []types.DeFiProtocol {
	candidates := make([]types.DeFiProtocol, 0, len(recs))
	for _, rec := range recs {
		if rec.Protocol == "" || !isFinite(rec.ExpectedReturn) || !isFinite(rec.RiskLevel) {
			continue
		}
		candidates = append(candidates, types.DeFiProtocol{
			Name:        rec.Protocol,
			Chain:       insightChain,
			APY:         rec.ExpectedReturn * 100,
			BalanceUSD:  0,
			TokenSymbol: insightTokenSymbol,
			RiskLevel:   RiskLevelFromScore(rec.RiskLevel),
		})
	}
	return candidates
}

// RiskLevelFromScore buckets a 0 to 1 risk score into a tier.
func RiskLevelFromScore(score float64) types.RiskLevel {
	switch {
	case score < 0.34:
		return types.RiskLevelLow
	case score < 0.67:
		return types.RiskLevelMedium
	default:
		return types.RiskLevelHigh
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
