package adapters

import (
	"context"
	"fmt"
	"math"

	"github.com/elys-network/yield-optimizer/internal/types"
	"github.com/elys-network/yield-optimizer/internal/utils"
)

const (
	AriesMarketsName   = "Aries Markets"
	AriesMarketsChain  = "Aptos"
	ariesTokenSymbol   = "APT"
	ariesTokenDecimals = 8
	ariesTxProtocol    = "AriesMarkets"
)

// AriesQuote is the balance and lending APY reported for every wallet until on-chain reads are wired.
var AriesQuote = types.Balance{
	BalanceUSD:  1000,
	TokenSymbol: ariesTokenSymbol,
	APY:         4.5,
}

// AriesMarketsAdapter prepares APT deposits and withdrawals on Aries Markets.
// USD amounts are converted to octas at the configured APT price.
type AriesMarketsAdapter struct {
	aptPriceUSD float64
	quote       types.Balance
}

// NewAriesMarketsAdapter creates an adapter that prices APT at aptPriceUSD.
func NewAriesMarketsAdapter(aptPriceUSD float64) (*AriesMarketsAdapter, error) {
	if aptPriceUSD <= 0 || math.IsNaN(aptPriceUSD) || math.IsInf(aptPriceUSD, 0) {
		return nil, fmt.Errorf("invalid APT price: %f", aptPriceUSD)
	}
	return &AriesMarketsAdapter{aptPriceUSD: aptPriceUSD, quote: AriesQuote}, nil
}

func (a *AriesMarketsAdapter) Name() string        { return AriesMarketsName }
func (a *AriesMarketsAdapter) Chain() string       { return AriesMarketsChain }
func (a *AriesMarketsAdapter) TokenSymbol() string { return ariesTokenSymbol }

func (a *AriesMarketsAdapter) CurrentAPY(ctx context.Context) (float64, error) {
	return a.quote.APY, nil
}

func (a *AriesMarketsAdapter) FetchUserBalance(ctx context.Context, walletAddress string) (types.Balance, error) {
	if walletAddress == "" {
		return types.Balance{}, ErrEmptyWallet
	}
	return a.quote, nil
}

func (a *AriesMarketsAdapter) PrepareDepositTransaction(ctx context.Context, amountUSD float64, walletAddress string) (types.ProtocolTransaction, error) {
	return a.prepare(types.TransactionMethodDeposit, amountUSD, walletAddress)
}

func (a *AriesMarketsAdapter) PrepareWithdrawTransaction(ctx context.Context, amountUSD float64, walletAddress string) (types.ProtocolTransaction, error) {
	return a.prepare(types.TransactionMethodWithdraw, amountUSD, walletAddress)
}

func (a *AriesMarketsAdapter) prepare(method types.TransactionMethod, amountUSD float64, walletAddress string) (types.ProtocolTransaction, error) {
	if walletAddress == "" {
		return types.ProtocolTransaction{}, ErrEmptyWallet
	}
	if amountUSD <= 0 || math.IsNaN(amountUSD) || math.IsInf(amountUSD, 0) {
		return types.ProtocolTransaction{}, fmt.Errorf("%w: %f", ErrInvalidAmount, amountUSD)
	}

	octas, err := utils.ToBaseUnits(amountUSD/a.aptPriceUSD, ariesTokenDecimals)
	if err != nil {
		return types.ProtocolTransaction{}, fmt.Errorf("failed to convert %f USD to octas: %w", amountUSD, err)
	}

	return types.ProtocolTransaction{
		Protocol: ariesTxProtocol,
		Method:   method,
		Args:     []string{octas.String(), ariesTokenSymbol},
	}, nil
}
