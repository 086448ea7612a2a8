package datafetcher

import "github.com/elys-network/yield-optimizer/internal/types"

// DefaultPositions is the sample portfolio served when no adapter reports a balance.
func DefaultPositions() []types.DeFiProtocol {
	return []types.DeFiProtocol{
		{Name: "Aries Markets", Chain: "Aptos", APY: 4.5, BalanceUSD: 1000, TokenSymbol: "APT", RiskLevel: types.RiskLevelLow},
		{Name: "Liquidswap", Chain: "Aptos", APY: 8.2, BalanceUSD: 500, TokenSymbol: "USDC", RiskLevel: types.RiskLevelMedium},
		{Name: "Tortuga Finance", Chain: "Aptos", APY: 12.7, BalanceUSD: 250, TokenSymbol: "APT", RiskLevel: types.RiskLevelHigh},
	}
}

// DefaultCatalog is the Aptos protocol catalog served when no live source returns anything.
func DefaultCatalog() []types.DeFiProtocol {
	return []types.DeFiProtocol{
		{Name: "Aries Markets", Chain: "Aptos", APY: 4.5, TokenSymbol: "APT", RiskLevel: types.RiskLevelLow},
		{Name: "Liquidswap", Chain: "Aptos", APY: 8.2, TokenSymbol: "USDC", RiskLevel: types.RiskLevelMedium},
		{Name: "Tortuga Finance", Chain: "Aptos", APY: 12.7, TokenSymbol: "APT", RiskLevel: types.RiskLevelHigh},
		{Name: "Ditto Finance", Chain: "Aptos", APY: 6.8, TokenSymbol: "USDT", RiskLevel: types.RiskLevelMedium},
		{Name: "Abel Finance", Chain: "Aptos", APY: 9.3, TokenSymbol: "USDC", RiskLevel: types.RiskLevelMedium},
	}
}
