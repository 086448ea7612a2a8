/*
This file turns Elys AMM pool APRs from the masterchef module into candidate protocols.

A pool's APY is its EDEN reward APR plus its USDC dex APR. Entries that fail validation are
dropped individually so a single bad pool does not remove the whole source from the catalog.
*/

package datafetcher

import (
	"context"
	"errors"
	"fmt"
	"math"

	masterchef "github.com/elys-network/elys/v6/x/masterchef/types"
	"github.com/elys-network/yield-optimizer/internal/adapters"
	"github.com/elys-network/yield-optimizer/internal/logger"
	"github.com/elys-network/yield-optimizer/internal/types"
	"github.com/elys-network/yield-optimizer/internal/utils"
)

var poolLogger = logger.GetForComponent("elys_pool_source")

var ErrInvalidPoolData = errors.New("invalid pool data")

const elysPoolTokenSymbol = "USDC"

// FetchElysPoolCandidates queries masterchef pool APRs and returns one zero-balance candidate per pool.
func FetchElysPoolCandidates(ctx context.Context, client masterchef.QueryClient) ([]types.DeFiProtocol, error) {
	if client == nil {
		return nil, errors.New("masterchef query client cannot be nil")
	}

	poolLogger.Debug().Msg("Fetching pool APRs from masterchef module")

	resp, err := client.PoolAprs(ctx, &masterchef.QueryPoolAprsRequest{})
	if err != nil {
		poolLogger.Error().Err(err).Msg("Failed to fetch pool APRs from masterchef module")
		return nil, fmt.Errorf("masterchef pool APR query failed: %w", err)
	}
	if resp == nil {
		return nil, errors.New("nil response from masterchef module")
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no pool APRs available from masterchef module")
	}

	seen := make(map[uint64]bool, len(resp.Data))
	candidates := make([]types.DeFiProtocol, 0, len(resp.Data))
	for _, apr := range resp.Data {
		apy, err := validatePoolAPR(apr)
		if err != nil {
			poolLogger.Warn().Err(err).Uint64("poolID", apr.PoolId).Msg("Skipping pool with invalid APR")
			continue
		}
		if seen[apr.PoolId] {
			poolLogger.Warn().Uint64("poolID", apr.PoolId).Msg("Skipping duplicate APR entry")
			continue
		}
		seen[apr.PoolId] = true

		candidates = append(candidates, types.DeFiProtocol{
			Name:        adapters.ElysPoolName(apr.PoolId),
			Chain:       adapters.ElysChain,
			APY:         apy,
			BalanceUSD:  0,
			TokenSymbol: elysPoolTokenSymbol,
			RiskLevel:   types.RiskLevelMedium,
		})

		poolLogger.Debug().
			Uint64("poolID", apr.PoolId).
			Str("edenAPR", apr.EdenApr.String()).
			Str("usdcDexAPR", apr.UsdcDexApr.String()).
			Float64("apy", apy).
			Msg("Pool APR data retrieved")
	}

	if len(candidates) == 0 {
		return nil, errors.New("no valid pool APRs available")
	}

	poolLogger.Info().
		Int("totalAPRs", len(resp.Data)).
		Int("candidates", len(candidates)).
		Msg("Retrieved Elys pool candidates")

	return candidates, nil
}

// validatePoolAPR checks one masterchef entry and returns its combined APY in percentage points.
func validatePoolAPR(apr masterchef.PoolApr) (float64, error) {
	if apr.PoolId == 0 {
		return 0, fmt.Errorf("%w: zero pool ID", ErrInvalidPoolData)
	}

	apy, err := utils.SumDecToPercent(apr.EdenApr, apr.UsdcDexApr)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPoolData, err)
	}
	if math.IsNaN(apy) || math.IsInf(apy, 0) {
		return 0, fmt.Errorf("%w: APY is not finite", ErrInvalidPoolData)
	}
	if apy < 0 {
		return 0, fmt.Errorf("%w: negative APY %f", ErrInvalidPoolData, apy)
	}
	return apy, nil
}
