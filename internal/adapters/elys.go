package adapters

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"
	masterchef "github.com/elys-network/elys/v6/x/masterchef/types"
	"github.com/elys-network/yield-optimizer/internal/types"
	"github.com/elys-network/yield-optimizer/internal/utils"
)

const (
	ElysChain        = "Elys"
	elysTokenSymbol  = "USDC"
	elysUSDCDenom    = "uusdc"
	elysUSDCDecimals = 6
	elysTxProtocol   = "ElysAMM"
)

var ErrPoolAprNotFound = errors.New("pool APR not found")

// ElysPoolName is the protocol name used for an Elys AMM pool, both as a catalog candidate and
// as the registry key of its adapter.
func ElysPoolName(poolID uint64) string {
	return fmt.Sprintf("Elys AMM Pool %d", poolID)
}

// ElysPoolAdapter prepares USDC joins and exits for a single Elys AMM pool. APYs are read from
// the masterchef module. LP balances are not tracked, so the pool only ever acts as a destination.
type ElysPoolAdapter struct {
	poolID uint64
	client masterchef.QueryClient
}

func NewElysPoolAdapter(poolID uint64, client masterchef.QueryClient) (*ElysPoolAdapter, error) {
	if poolID == 0 {
		return nil, errors.New("pool ID cannot be zero")
	}
	if client == nil {
		return nil, errors.New("masterchef query client cannot be nil")
	}
	return &ElysPoolAdapter{poolID: poolID, client: client}, nil
}

func (e *ElysPoolAdapter) Name() string        { return ElysPoolName(e.poolID) }
func (e *ElysPoolAdapter) Chain() string       { return ElysChain }
func (e *ElysPoolAdapter) TokenSymbol() string { return elysTokenSymbol }

// CurrentAPY is the pool's EDEN reward APR plus its USDC dex APR, in percentage points.
func (e *ElysPoolAdapter) CurrentAPY(ctx context.Context) (float64, error) {
	resp, err := e.client.PoolAprs(ctx, &masterchef.QueryPoolAprsRequest{})
	if err != nil {
		return 0, fmt.Errorf("masterchef pool APR query failed: %w", err)
	}
	if resp == nil {
		return 0, errors.New("nil response from masterchef module")
	}

	for _, apr := range resp.Data {
		if apr.PoolId != e.poolID {
			continue
		}
		apy, err := utils.SumDecToPercent(apr.EdenApr, apr.UsdcDexApr)
		if err != nil {
			return 0, fmt.Errorf("invalid APR for pool %d: %w", e.poolID, err)
		}
		return apy, nil
	}
	return 0, fmt.Errorf("%w: pool %d", ErrPoolAprNotFound, e.poolID)
}

func (e *ElysPoolAdapter) FetchUserBalance(ctx context.Context, walletAddress string) (types.Balance, error) {
	if walletAddress == "" {
		return types.Balance{}, ErrEmptyWallet
	}
	apy, err := e.CurrentAPY(ctx)
	if err != nil {
		return types.Balance{}, err
	}
	return types.Balance{BalanceUSD: 0, TokenSymbol: elysTokenSymbol, APY: apy}, nil
}

func (e *ElysPoolAdapter) PrepareDepositTransaction(ctx context.Context, amountUSD float64, walletAddress string) (types.ProtocolTransaction, error) {
	return e.prepare(types.TransactionMethodDeposit, amountUSD, walletAddress)
}

func (e *ElysPoolAdapter) PrepareWithdrawTransaction(ctx context.Context, amountUSD float64, walletAddress string) (types.ProtocolTransaction, error) {
	return e.prepare(types.TransactionMethodWithdraw, amountUSD, walletAddress)
}

// prepare assumes USDC trades at par, so the USD amount is the USDC amount.
func (e *ElysPoolAdapter) prepare(method types.TransactionMethod, amountUSD float64, walletAddress string) (types.ProtocolTransaction, error) {
	if walletAddress == "" {
		return types.ProtocolTransaction{}, ErrEmptyWallet
	}
	if amountUSD <= 0 || math.IsNaN(amountUSD) || math.IsInf(amountUSD, 0) {
		return types.ProtocolTransaction{}, fmt.Errorf("%w: %f", ErrInvalidAmount, amountUSD)
	}

	units, err := utils.ToBaseUnits(amountUSD, elysUSDCDecimals)
	if err != nil {
		return types.ProtocolTransaction{}, fmt.Errorf("failed to convert %f USD to %s: %w", amountUSD, elysUSDCDenom, err)
	}
	coin := sdk.NewCoin(elysUSDCDenom, units)

	return types.ProtocolTransaction{
		Protocol: elysTxProtocol,
		Method:   method,
		Args:     []string{strconv.FormatUint(e.poolID, 10), coin.String()},
		Value:    coin.String(),
	}, nil
}
