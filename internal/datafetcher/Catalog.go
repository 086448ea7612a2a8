/*
This file assembles the candidate catalog and the user's positions from the configured
sources. Every source is optional. A failing source is logged and skipped, and the built-in
Aptos lists are served when nothing else is available.
*/

package datafetcher

import (
	"context"

	masterchef "github.com/elys-network/elys/v6/x/masterchef/types"
	"github.com/elys-network/yield-optimizer/internal/adapters"
	"github.com/elys-network/yield-optimizer/internal/insights"
	"github.com/elys-network/yield-optimizer/internal/logger"
	"github.com/elys-network/yield-optimizer/internal/types"
)

var catalogLogger = logger.GetForComponent("catalog")

// InsightsSource suggests deposit targets for an APT balance. It never fails; a broken model
// answers with its fallback list.
type InsightsSource interface {
	GetDefiInsights(ctx context.Context, balanceAPT float64) []types.InsightRecommendation
}

// CatalogConfig wires the catalog sources. Nil sources are disabled.
type CatalogConfig struct {
	Registry       *adapters.Registry
	Masterchef     masterchef.QueryClient
	DefiLlama      *DefiLlamaClient
	DefiLlamaChain string

	// Insights adds model suggestions as candidates, asked for InsightsBalanceAPT.
	Insights           InsightsSource
	InsightsBalanceAPT float64

	// IncludeDefaults appends the built-in Aptos catalog after the live sources.
	IncludeDefaults bool
}

type CatalogService struct {
	config CatalogConfig
}

func NewCatalogService(config CatalogConfig) *CatalogService {
	return &CatalogService{config: config}
}

type catalogSource struct {
	name  string
	fetch func(ctx context.Context) ([]types.DeFiProtocol, error)
}

func (c *CatalogService) sources() []catalogSource {
	var sources []catalogSource
	if c.config.Registry != nil {
		sources = append(sources, catalogSource{"registry", c.config.Registry.ProtocolDescriptors})
	}
	if c.config.Masterchef != nil {
		sources = append(sources, catalogSource{"elys", func(ctx context.Context) ([]types.DeFiProtocol, error) {
			return FetchElysPoolCandidates(ctx, c.config.Masterchef)
		}})
	}
	if c.config.DefiLlama != nil {
		sources = append(sources, catalogSource{"defillama", func(ctx context.Context) ([]types.DeFiProtocol, error) {
			return c.config.DefiLlama.FetchCandidates(ctx, c.config.DefiLlamaChain)
		}})
	}
	if c.config.Insights != nil {
		sources = append(sources, catalogSource{"insights", func(ctx context.Context) ([]types.DeFiProtocol, error) {
			return insights.ToCandidates(c.config.Insights.GetDefiInsights(ctx, c.config.InsightsBalanceAPT)), nil
		}})
	}
	return sources
}

// AvailableProtocols returns every candidate the configured sources know about. Names are
// unique; when two sources report the same protocol the earlier source wins.
func (c *CatalogService) AvailableProtocols(ctx context.Context) ([]types.DeFiProtocol, error) {
	seen := make(map[string]bool)
	catalog := make([]types.DeFiProtocol, 0)
	add := func(protocols []types.DeFiProtocol) {
		for _, protocol := range protocols {
			if seen[protocol.Name] {
				continue
			}
			seen[protocol.Name] = true
			catalog = append(catalog, protocol)
		}
	}

	for _, source := range c.sources() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		protocols, err := source.fetch(ctx)
		if err != nil {
			catalogLogger.Warn().Err(err).Str("source", source.name).Msg("Catalog source failed, skipping")
			continue
		}
		catalogLogger.Debug().Str("source", source.name).Int("protocols", len(protocols)).Msg("Catalog source loaded")
		add(protocols)
	}

	if c.config.IncludeDefaults || len(catalog) == 0 {
		if len(catalog) == 0 {
			catalogLogger.Info().Msg("No live catalog sources available, using default catalog")
		}
		add(DefaultCatalog())
	}

	return catalog, nil
}

// UserPositions returns the wallet's positions from the registry, or the default portfolio when
// the registry has nothing to report.
func (c *CatalogService) UserPositions(ctx context.Context, walletAddress string) ([]types.DeFiProtocol, error) {
	if c.config.Registry == nil {
		return DefaultPositions(), nil
	}

	positions, err := c.config.Registry.FetchAllUserPositions(ctx, walletAddress)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		catalogLogger.Error().Err(err).Str("wallet", walletAddress).Msg("Error fetching user positions, using default positions")
		return DefaultPositions(), nil
	}
	if len(positions) == 0 {
		return DefaultPositions(), nil
	}
	return positions, nil
}
