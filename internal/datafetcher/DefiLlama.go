/*
This file fetches yield pools from the DefiLlama Yields API and turns the pools of one chain
into candidate protocols.
*/

package datafetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/elys-network/yield-optimizer/internal/logger"
	"github.com/elys-network/yield-optimizer/internal/types"
)

var llamaLogger = logger.GetForComponent("defillama_source")

var ErrNoPoolsForChain = errors.New("no pools found for chain")

const (
	DefaultDefiLlamaURL = "https://yields.llama.fi/pools"
	llamaMaxRetries     = 3
	llamaTimeout        = 15 * time.Second

	// Pools above this APY are treated as high risk.
	llamaHighRiskAPY = 20.0
)

// DefiLlamaClient fetches yield data from the DefiLlama Yields API.
type DefiLlamaClient struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
}

// NewDefiLlamaClient creates a client for baseURL. An empty baseURL uses the public endpoint.
func NewDefiLlamaClient(baseURL string) *DefiLlamaClient {
	if baseURL == "" {
		baseURL = DefaultDefiLlamaURL
	}
	return &DefiLlamaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: llamaTimeout,
		},
		retryDelay: time.Second,
	}
}

type defiLlamaResponse struct {
	Status string          `json:"status"`
	Data   []defiLlamaPool `json:"data"`
}

type defiLlamaPool struct {
	Pool       string  `json:"pool"`
	Chain      string  `json:"chain"`
	Project    string  `json:"project"`
	Symbol     string  `json:"symbol"`
	TVLUsd     float64 `json:"tvlUsd"`
	APY        float64 `json:"apy"`
	APYBase    float64 `json:"apyBase"`
	APYReward  float64 `json:"apyReward"`
	StableCoin bool    `json:"stablecoin"`
}

// FetchCandidates returns the chain's pools as zero-balance candidates. Pools with a missing or
// non-finite APY are skipped.
func (c *DefiLlamaClient) FetchCandidates(ctx context.Context, chain string) ([]types.DeFiProtocol, error) {
	chain = strings.TrimSpace(chain)
	if chain == "" {
		return nil, errors.New("chain cannot be empty")
	}

	pools, err := c.fetchPools(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]types.DeFiProtocol, 0)
	for _, pool := range pools {
		if !strings.EqualFold(pool.Chain, chain) {
			continue
		}
		if math.IsNaN(pool.APY) || math.IsInf(pool.APY, 0) || pool.APY <= 0 {
			continue
		}

		candidates = append(candidates, types.DeFiProtocol{
			Name:        fmt.Sprintf("%s %s", pool.Project, pool.Symbol),
			Chain:       chain,
			APY:         pool.APY,
			BalanceUSD:  0,
			TokenSymbol: pool.Symbol,
			RiskLevel:   llamaRiskLevel(pool),
		})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPoolsForChain, chain)
	}

	llamaLogger.Info().
		Str("chain", chain).
		Int("totalPools", len(pools)).
		Int("candidates", len(candidates)).
		Msg("Retrieved DefiLlama candidates")

	return candidates, nil
}

func llamaRiskLevel(pool defiLlamaPool) types.RiskLevel {
	switch {
	case pool.StableCoin:
		return types.RiskLevelLow
	case pool.APY > llamaHighRiskAPY:
		return types.RiskLevelHigh
	default:
		return types.RiskLevelMedium
	}
}

func (c *DefiLlamaClient) fetchPools(ctx context.Context) ([]defiLlamaPool, error) {
	var lastErr error
	for attempt := 1; attempt <= llamaMaxRetries; attempt++ {
		llamaLogger.Debug().
			Int("attempt", attempt).
			Int("maxRetries", llamaMaxRetries).
			Msg("Making API request")

		pools, err := c.requestPools(ctx)
		if err == nil {
			return pools, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		llamaLogger.Warn().
			Err(err).
			Int("attempt", attempt).
			Msg("DefiLlama request failed, will retry if attempts remain")

		if attempt < llamaMaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
		}
	}

	llamaLogger.Error().Err(lastErr).Int("maxRetries", llamaMaxRetries).Msg("All retry attempts failed")
	return nil, fmt.Errorf("failed to fetch DefiLlama pools after %d attempts: %w", llamaMaxRetries, lastErr)
}

func (c *DefiLlamaClient) requestPools(ctx context.Context) ([]defiLlamaPool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch yields: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned non-200 status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) == 0 {
		return nil, errors.New("empty response body")
	}

	var result defiLlamaResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return result.Data, nil
}
