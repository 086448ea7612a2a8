package insights

import "github.com/elys-network/yield-optimizer/internal/types"

// FallbackRecommendations is served whenever the model path fails.
func FallbackRecommendations() []types.InsightRecommendation {
	return []types.InsightRecommendation{
		{
			Protocol:       "Aries Markets",
			Action:         "deposit",
			ExpectedReturn: 0.045,
			NetBenefit:     0.04,
			RiskLevel:      0.2,
			Address:        "0x12345...",
			Description:    "Aries Markets offers stable lending returns with lower risk.",
		},
		{
			Protocol:       "Tsunami Finance",
			Action:         "deposit",
			ExpectedReturn: 0.08,
			NetBenefit:     0.065,
			RiskLevel:      0.4,
			Address:        "0x23456...",
			Description:    "Tsunami provides higher yields through optimized lending strategies.",
		},
		{
			Protocol:       "Ditto Staking",
			Action:         "deposit",
			ExpectedReturn: 0.03,
			NetBenefit:     0.028,
			RiskLevel:      0.1,
			Address:        "0x34567...",
			Description:    "Ditto offers the safest staking experience with consistent returns.",
		},
	}
}
