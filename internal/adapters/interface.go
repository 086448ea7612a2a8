package adapters

import (
	"context"
	"errors"

	"github.com/elys-network/yield-optimizer/internal/types"
)

var (
	ErrInvalidAmount = errors.New("transaction amount must be positive and finite")
	ErrEmptyWallet   = errors.New("wallet address cannot be empty")
)

// ProtocolAdapter defines the interface for reading from and preparing transactions against
// a single protocol. Each implementation normalizes its protocol into the records the
// recommendation engine consumes.
type ProtocolAdapter interface {
	// Name is the protocol name used as the registry key and in recommendations.
	Name() string

	// Chain is the chain the protocol is deployed on.
	Chain() string

	// TokenSymbol is the token the protocol accepts deposits in.
	TokenSymbol() string

	// CurrentAPY returns the protocol's current APY in percentage points.
	CurrentAPY(ctx context.Context) (float64, error)

	// FetchUserBalance returns the wallet's balance, token and APY in the protocol.
	FetchUserBalance(ctx context.Context, walletAddress string) (types.Balance, error)

	// PrepareDepositTransaction builds an unsigned deposit of amountUSD.
	PrepareDepositTransaction(ctx context.Context, amountUSD float64, walletAddress string) (types.ProtocolTransaction, error)

	// PrepareWithdrawTransaction builds an unsigned withdrawal of amountUSD.
	PrepareWithdrawTransaction(ctx context.Context, amountUSD float64, walletAddress string) (types.ProtocolTransaction, error)
}
