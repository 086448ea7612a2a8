package analyzer

import (
	"fmt"

	"github.com/elys-network/yield-optimizer/internal/types"
)

// NoPositionsAssessment is the assessment returned when there is nothing to analyze.
const NoPositionsAssessment = "No positions to analyze."

// PortfolioSummary holds the portfolio-level totals of an analysis.
type PortfolioSummary struct {
	TotalValueUSD          float64
	TotalCurrentYieldUSD   float64
	TotalOptimizedYieldUSD float64
}

// AggregatePortfolio sums current yield over every position and adds the gain of every
// accepted recommendation on top.
func AggregatePortfolio(positions []types.DeFiProtocol, recommendations []types.TransactionRecommendation) PortfolioSummary {
	var summary PortfolioSummary
	for _, position := range positions {
		summary.TotalValueUSD += position.BalanceUSD
		summary.TotalCurrentYieldUSD += position.AnnualYieldUSD()
	}

	summary.TotalOptimizedYieldUSD = summary.TotalCurrentYieldUSD
	for _, rec := range recommendations {
		summary.TotalOptimizedYieldUSD += rec.ExpectedAPYIncrease
	}
	return summary
}

// CalculateImprovementPercent is the relative yield improvement in percent. ok is false
// when there is no current yield to compare against.
func CalculateImprovementPercent(summary PortfolioSummary) (percent float64, ok bool) {
	if summary.TotalCurrentYieldUSD == 0 {
		return 0, false
	}
	return (summary.TotalOptimizedYieldUSD - summary.TotalCurrentYieldUSD) / summary.TotalCurrentYieldUSD * 100, true
}

// GenerateRiskAssessment writes the narrative summary of a portfolio analysis.
func GenerateRiskAssessment(summary PortfolioSummary, pref types.RiskPreference, recommendationCount int) string {
	assessment := fmt.Sprintf("Your portfolio of $%.2f has a %s risk profile with a current estimated yield of $%.2f per year.",
		summary.TotalValueUSD, pref, summary.TotalCurrentYieldUSD)

	if recommendationCount == 0 {
		return assessment + " Our analysis indicates your portfolio is already well-optimized for your risk preference."
	}

	percent, ok := CalculateImprovementPercent(summary)
	if !ok {
		return assessment + fmt.Sprintf(" Our analysis suggests optimizations that could raise your yield to $%.2f per year; there is no prior yield to compare against.",
			summary.TotalOptimizedYieldUSD)
	}
	return assessment + fmt.Sprintf(" Our analysis suggests optimizations that could increase your yield by %.1f%% to $%.2f per year.",
		percent, summary.TotalOptimizedYieldUSD)
}
