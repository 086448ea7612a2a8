package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/elys-network/yield-optimizer/internal/adapters"
	"github.com/elys-network/yield-optimizer/internal/logger"
	"github.com/elys-network/yield-optimizer/internal/types"
	"github.com/google/uuid"
)

// Error definitions for zero-tolerance error handling
var (
	ErrMissingSource    = errors.New("recommendation has no source protocol")
	ErrMissingWallet    = errors.New("wallet address is required")
	ErrAdapterNotFound  = errors.New("no adapter registered for protocol")
	ErrInvalidAmount    = errors.New("transfer amount must be positive and finite")
	ErrSameProtocol     = errors.New("source and destination are the same protocol")
	ErrPreparationError = errors.New("failed to prepare protocol transaction")
)

var planLogger = logger.GetForComponent("transfer_planner")

// AdapterLookup resolves protocol names to adapters. *adapters.Registry satisfies it.
type AdapterLookup interface {
	Get(name string) (adapters.ProtocolAdapter, bool)
}

// BuildTransferPlan prepares the withdrawal from the recommendation's source protocol and the
// deposit into its destination. Nothing is signed or broadcast.
func BuildTransferPlan(ctx context.Context, lookup AdapterLookup, rec types.TransactionRecommendation, walletAddress string) (types.TransferPlan, error) {
	if err := validateInputs(rec, walletAddress); err != nil {
		planLogger.Error().Err(err).Msg("Input validation failed")
		return types.TransferPlan{}, err
	}

	source, err := resolve(lookup, rec.FromProtocol.Name)
	if err != nil {
		return types.TransferPlan{}, err
	}
	destination, err := resolve(lookup, rec.ToProtocol.Name)
	if err != nil {
		return types.TransferPlan{}, err
	}

	withdraw, err := source.PrepareWithdrawTransaction(ctx, rec.AmountUSD, walletAddress)
	if err != nil {
		return types.TransferPlan{}, fmt.Errorf("%w: withdraw from %s: %w", ErrPreparationError, source.Name(), err)
	}
	deposit, err := destination.PrepareDepositTransaction(ctx, rec.AmountUSD, walletAddress)
	if err != nil {
		return types.TransferPlan{}, fmt.Errorf("%w: deposit to %s: %w", ErrPreparationError, destination.Name(), err)
	}

	plan := types.TransferPlan{
		ID:             uuid.NewString(),
		WalletAddress:  walletAddress,
		Withdraw:       withdraw,
		Deposit:        deposit,
		Recommendation: rec,
	}

	planLogger.Info().
		Str("planID", plan.ID).
		Str("from", rec.FromProtocol.Name).
		Str("to", rec.ToProtocol.Name).
		Float64("amountUSD", rec.AmountUSD).
		Msg("Prepared transfer plan")

	return plan, nil
}

// BuildTransferPlans prepares one plan per recommendation, in order. The first failure aborts.
func BuildTransferPlans(ctx context.Context, lookup AdapterLookup, recs []types.TransactionRecommendation, walletAddress string) ([]types.TransferPlan, error) {
	plans := make([]types.TransferPlan, 0, len(recs))
	for i, rec := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		plan, err := BuildTransferPlan(ctx, lookup, rec, walletAddress)
		if err != nil {
			return nil, fmt.Errorf("recommendation %d: %w", i, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func validateInputs(rec types.TransactionRecommendation, walletAddress string) error {
	var errs []error

	if strings.TrimSpace(walletAddress) == "" {
		errs = append(errs, ErrMissingWallet)
	}
	if rec.FromProtocol == nil {
		errs = append(errs, ErrMissingSource)
	} else if rec.FromProtocol.Name == rec.ToProtocol.Name {
		errs = append(errs, fmt.Errorf("%w: %s", ErrSameProtocol, rec.ToProtocol.Name))
	}
	if math.IsNaN(rec.AmountUSD) || math.IsInf(rec.AmountUSD, 0) || rec.AmountUSD <= 0 {
		errs = append(errs, fmt.Errorf("%w: %f", ErrInvalidAmount, rec.AmountUSD))
	}

	return errors.Join(errs...)
}

func resolve(lookup AdapterLookup, name string) (adapters.ProtocolAdapter, error) {
	if lookup == nil {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, name)
	}
	adapter, ok := lookup.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, name)
	}
	return adapter, nil
}
