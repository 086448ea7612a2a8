/*

This file contains the protocol registry: the set of adapters the service knows about, keyed
by protocol name. The registry is constructed once in main and passed to whoever needs it.

*/

package adapters

import (
	"context"
	"sync"

	"github.com/elys-network/yield-optimizer/internal/logger"
	"github.com/elys-network/yield-optimizer/internal/types"
)

var registryLogger = logger.GetForComponent("protocol_registry")

// RiskLevelFunc assigns a risk tier to a protocol by name.
type RiskLevelFunc func(protocolName string) types.RiskLevel

// Registry holds protocol adapters in registration order.
type Registry struct {
	mu        sync.RWMutex
	adapters  map[string]ProtocolAdapter
	order     []string
	riskLevel RiskLevelFunc
}

// NewRegistry creates an empty registry. riskLevel may be nil, in which case every protocol is medium risk.
func NewRegistry(riskLevel RiskLevelFunc) *Registry {
	if riskLevel == nil {
		riskLevel = func(string) types.RiskLevel { return types.RiskLevelMedium }
	}
	return &Registry{
		adapters:  make(map[string]ProtocolAdapter),
		riskLevel: riskLevel,
	}
}

// Register adds an adapter, replacing any adapter already registered under the same name.
func (r *Registry) Register(adapter ProtocolAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := adapter.Name()
	if _, exists := r.adapters[name]; !exists {
		r.order = append(r.order, name)
	}
	r.adapters[name] = adapter

	registryLogger.Debug().Str("protocol", name).Str("chain", adapter.Chain()).Msg("Registered protocol adapter")
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (ProtocolAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[name]
	return adapter, ok
}

// All returns every adapter in registration order.
func (r *Registry) All() []ProtocolAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]ProtocolAdapter, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.adapters[name])
	}
	return all
}

// Len is the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// FetchAllUserPositions asks every adapter for the wallet's balance and returns the non-zero
// ones as positions. An adapter that fails is logged and skipped.
func (r *Registry) FetchAllUserPositions(ctx context.Context, walletAddress string) ([]types.DeFiProtocol, error) {
	if walletAddress == "" {
		return nil, ErrEmptyWallet
	}

	positions := make([]types.DeFiProtocol, 0)
	for _, adapter := range r.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		balance, err := adapter.FetchUserBalance(ctx, walletAddress)
		if err != nil {
			registryLogger.Error().Err(err).Str("protocol", adapter.Name()).Msg("Error fetching balance")
			continue
		}
		if balance.BalanceUSD <= 0 {
			continue
		}

		positions = append(positions, types.DeFiProtocol{
			Name:        adapter.Name(),
			Chain:       adapter.Chain(),
			APY:         balance.APY,
			BalanceUSD:  balance.BalanceUSD,
			TokenSymbol: balance.TokenSymbol,
			RiskLevel:   r.riskLevel(adapter.Name()),
		})
	}

	registryLogger.Info().
		Str("wallet", walletAddress).
		Int("adapters", r.Len()).
		Int("positions", len(positions)).
		Msg("Fetched user positions")

	return positions, nil
}

// ProtocolDescriptors returns every registered protocol as a zero-balance candidate with
// its current APY. An adapter whose APY cannot be read is logged and left out, since a
// candidate without a yield can never be recommended.
func (r *Registry) ProtocolDescriptors(ctx context.Context) ([]types.DeFiProtocol, error) {
	descriptors := make([]types.DeFiProtocol, 0, r.Len())
	for _, adapter := range r.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		apy, err := adapter.CurrentAPY(ctx)
		if err != nil {
			registryLogger.Warn().Err(err).Str("protocol", adapter.Name()).Msg("Skipping protocol without a current APY")
			continue
		}

		descriptors = append(descriptors, types.DeFiProtocol{
			Name:        adapter.Name(),
			Chain:       adapter.Chain(),
			APY:         apy,
			BalanceUSD:  0,
			TokenSymbol: adapter.TokenSymbol(),
			RiskLevel:   r.riskLevel(adapter.Name()),
		})
	}
	return descriptors, nil
}
