package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/elys-network/yield-optimizer/internal/types"
)

// GenerateReasoning explains a move in three sentences, always in this order: the yearly
// gain, the direction of the risk change, and the approximate break-even time.
func GenerateReasoning(
	from types.DeFiProtocol,
	to types.DeFiProtocol,
	amountUSD float64,
	gasFeeUSD float64,
	riskChange types.RiskChange,
) string {
	yearlyGain := CalculateYearlyGain(from, to, amountUSD)

	var b strings.Builder
	b.WriteString(GainStatement(from, to, amountUSD, yearlyGain))
	b.WriteString(" ")
	b.WriteString(RiskStatement(from.RiskLevel, to.RiskLevel, riskChange))
	b.WriteString(" ")
	b.WriteString(BreakEvenStatement(yearlyGain, gasFeeUSD))
	return b.String()
}

// GainStatement is the first reasoning fragment.
func GainStatement(from, to types.DeFiProtocol, amountUSD, yearlyGain float64) string {
	return fmt.Sprintf("Moving $%.2f from %s (%.1f%% APY) to %s (%.1f%% APY) will increase your annual yield by $%.2f.",
		amountUSD, from.Name, from.APY, to.Name, to.APY, yearlyGain)
}

// RiskStatement is the second reasoning fragment.
func RiskStatement(from, to types.RiskLevel, riskChange types.RiskChange) string {
	switch riskChange {
	case types.RiskChangeHigher:
		return fmt.Sprintf("This increases your risk level from %s to %s.", from, to)
	case types.RiskChangeLower:
		return fmt.Sprintf("This decreases your risk level from %s to %s.", from, to)
	default:
		return "This maintains your current risk level."
	}
}

// BreakEvenStatement is the third reasoning fragment, with the day count rounded to a whole day.
func BreakEvenStatement(yearlyGain, gasFeeUSD float64) string {
	days, ok := CalculateBreakEvenDays(yearlyGain, gasFeeUSD)
	if !ok {
		return "This move does not recover its gas fees."
	}
	return fmt.Sprintf("You'll break even on gas fees in approximately %d days.", int64(math.Round(days)))
}
