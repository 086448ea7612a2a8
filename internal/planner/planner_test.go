package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/elys-network/yield-optimizer/internal/adapters"
	"github.com/elys-network/yield-optimizer/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAdapter struct {
	name       string
	depositErr error
	calls      []string
}

func (r *recordingAdapter) Name() string        { return r.name }
func (r *recordingAdapter) Chain() string       { return "Aptos" }
func (r *recordingAdapter) TokenSymbol() string { return "APT" }
func (r *recordingAdapter) CurrentAPY(ctx context.Context) (float64, error) {
	return 0, nil
}
func (r *recordingAdapter) FetchUserBalance(ctx context.Context, walletAddress string) (types.Balance, error) {
	return types.Balance{}, nil
}
func (r *recordingAdapter) PrepareDepositTransaction(ctx context.Context, amountUSD float64, walletAddress string) (types.ProtocolTransaction, error) {
	r.calls = append(r.calls, "deposit")
	if r.depositErr != nil {
		return types.ProtocolTransaction{}, r.depositErr
	}
	return types.ProtocolTransaction{Protocol: r.name, Method: types.TransactionMethodDeposit, Args: []string{walletAddress}}, nil
}
func (r *recordingAdapter) PrepareWithdrawTransaction(ctx context.Context, amountUSD float64, walletAddress string) (types.ProtocolTransaction, error) {
	r.calls = append(r.calls, "withdraw")
	return types.ProtocolTransaction{Protocol: r.name, Method: types.TransactionMethodWithdraw, Args: []string{walletAddress}}, nil
}

func recommendation(from, to string, amount float64) types.TransactionRecommendation {
	return types.TransactionRecommendation{
		FromProtocol: &types.DeFiProtocol{Name: from, Chain: "Aptos", APY: 4.5, BalanceUSD: 1000, RiskLevel: types.RiskLevelLow},
		ToProtocol:   types.DeFiProtocol{Name: to, Chain: "Aptos", APY: 10, RiskLevel: types.RiskLevelMedium},
		AmountUSD:    amount,
	}
}

func newRegistry(adapterList ...adapters.ProtocolAdapter) *adapters.Registry {
	registry := adapters.NewRegistry(nil)
	for _, adapter := range adapterList {
		registry.Register(adapter)
	}
	return registry
}

func TestBuildTransferPlan(t *testing.T) {
	source := &recordingAdapter{name: "Aries Markets"}
	destination := &recordingAdapter{name: "Abel Finance"}
	registry := newRegistry(source, destination)

	rec := recommendation("Aries Markets", "Abel Finance", 300)
	plan, err := BuildTransferPlan(context.Background(), registry, rec, "0xwallet")
	require.NoError(t, err)

	_, err = uuid.Parse(plan.ID)
	assert.NoError(t, err)
	assert.Equal(t, "0xwallet", plan.WalletAddress)
	assert.Equal(t, "Aries Markets", plan.Withdraw.Protocol)
	assert.Equal(t, types.TransactionMethodWithdraw, plan.Withdraw.Method)
	assert.Equal(t, "Abel Finance", plan.Deposit.Protocol)
	assert.Equal(t, types.TransactionMethodDeposit, plan.Deposit.Method)
	assert.Equal(t, rec, plan.Recommendation)
	assert.Equal(t, []string{"withdraw"}, source.calls)
	assert.Equal(t, []string{"deposit"}, destination.calls)
}

func TestBuildTransferPlanErrors(t *testing.T) {
	registry := newRegistry(&recordingAdapter{name: "Aries Markets"}, &recordingAdapter{name: "Abel Finance"})
	ctx := context.Background()

	missingSource := recommendation("Aries Markets", "Abel Finance", 300)
	missingSource.FromProtocol = nil

	tests := []struct {
		name     string
		rec      types.TransactionRecommendation
		wallet   string
		expected error
	}{
		{"missing source", missingSource, "0xwallet", ErrMissingSource},
		{"missing wallet", recommendation("Aries Markets", "Abel Finance", 300), " ", ErrMissingWallet},
		{"zero amount", recommendation("Aries Markets", "Abel Finance", 0), "0xwallet", ErrInvalidAmount},
		{"same protocol", recommendation("Abel Finance", "Abel Finance", 10), "0xwallet", ErrSameProtocol},
		{"unknown source", recommendation("Liquidswap", "Abel Finance", 10), "0xwallet", ErrAdapterNotFound},
		{"unknown destination", recommendation("Aries Markets", "Ditto Finance", 10), "0xwallet", ErrAdapterNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildTransferPlan(ctx, registry, tt.rec, tt.wallet)
			assert.ErrorIs(t, err, tt.expected)
		})
	}

	_, err := BuildTransferPlan(ctx, nil, recommendation("Aries Markets", "Abel Finance", 10), "0xwallet")
	assert.ErrorIs(t, err, ErrAdapterNotFound)
}

func TestBuildTransferPlanWrapsAdapterFailures(t *testing.T) {
	registry := newRegistry(&recordingAdapter{name: "Aries Markets"}, &recordingAdapter{name: "Abel Finance", depositErr: errors.New("paused")})

	_, err := BuildTransferPlan(context.Background(), registry, recommendation("Aries Markets", "Abel Finance", 10), "0xwallet")
	assert.ErrorIs(t, err, ErrPreparationError)
	assert.ErrorContains(t, err, "paused")
}

func TestBuildTransferPlans(t *testing.T) {
	registry := newRegistry(&recordingAdapter{name: "A"}, &recordingAdapter{name: "B"}, &recordingAdapter{name: "C"})
	recs := []types.TransactionRecommendation{recommendation("A", "C", 10), recommendation("B", "C", 20)}

	plans, err := BuildTransferPlans(context.Background(), registry, recs, "0xwallet")
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.NotEqual(t, plans[0].ID, plans[1].ID)
	assert.Equal(t, 20.0, plans[1].Recommendation.AmountUSD)

	recs = append(recs, recommendation("A", "Z", 5))
	_, err = BuildTransferPlans(context.Background(), registry, recs, "0xwallet")
	assert.ErrorIs(t, err, ErrAdapterNotFound)
}
