package datafetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	masterchef "github.com/elys-network/elys/v6/x/masterchef/types"
	"github.com/elys-network/yield-optimizer/internal/adapters"
	"github.com/elys-network/yield-optimizer/internal/insights"
	"github.com/elys-network/yield-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

type fakeMasterchef struct {
	masterchef.QueryClient
	aprs []masterchef.PoolApr
	err  error
}

func (f *fakeMasterchef) PoolAprs(ctx context.Context, in *masterchef.QueryPoolAprsRequest, opts ...grpc.CallOption) (*masterchef.QueryPoolAprsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &masterchef.QueryPoolAprsResponse{Data: f.aprs}, nil
}

func poolApr(id uint64, eden, usdc string) masterchef.PoolApr {
	return masterchef.PoolApr{
		PoolId:     id,
		EdenApr:    sdkmath.LegacyMustNewDecFromStr(eden),
		UsdcDexApr: sdkmath.LegacyMustNewDecFromStr(usdc),
	}
}

const llamaBody = `{"status":"success","data":[
 {"pool":"a","chain":"Aptos","project":"aries-markets","symbol":"USDC","tvlUsd":1000000,"apy":5.1,"stablecoin":true},
 {"pool":"b","chain":"Aptos","project":"thala","symbol":"APT-THL","tvlUsd":500000,"apy":31.4,"stablecoin":false},
 {"pool":"c","chain":"Aptos","project":"amnis","symbol":"APT","tvlUsd":800000,"apy":7.2,"stablecoin":false},
 {"pool":"d","chain":"Ethereum","project":"aave-v3","symbol":"USDC","tvlUsd":9000000,"apy":4.0,"stablecoin":true},
 {"pool":"e","chain":"Aptos","project":"dead","symbol":"XYZ","tvlUsd":10,"apy":0,"stablecoin":false}
]}`

func newLlamaServer(t *testing.T, failures int32) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= failures {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(llamaBody))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestFetchElysPoolCandidates(t *testing.T) {
	client := &fakeMasterchef{aprs: []masterchef.PoolApr{
		poolApr(1, "0.10", "0.02"),
		poolApr(0, "0.10", "0.02"),
		poolApr(2, "-0.50", "0.01"),
		poolApr(1, "0.30", "0.02"),
		{PoolId: 3, EdenApr: sdkmath.LegacyMustNewDecFromStr("0.01")},
	}}

	candidates, err := FetchElysPoolCandidates(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, "Elys AMM Pool 1", candidates[0].Name)
	assert.Equal(t, "Elys", candidates[0].Chain)
	assert.Equal(t, "USDC", candidates[0].TokenSymbol)
	assert.Equal(t, types.RiskLevelMedium, candidates[0].RiskLevel)
	assert.InDelta(t, 12.0, candidates[0].APY, 1e-9)
	assert.Zero(t, candidates[0].BalanceUSD)
}

func TestFetchElysPoolCandidatesErrors(t *testing.T) {
	_, err := FetchElysPoolCandidates(context.Background(), nil)
	assert.Error(t, err)

	_, err = FetchElysPoolCandidates(context.Background(), &fakeMasterchef{err: errors.New("unavailable")})
	assert.Error(t, err)

	_, err = FetchElysPoolCandidates(context.Background(), &fakeMasterchef{})
	assert.Error(t, err)

	_, err = FetchElysPoolCandidates(context.Background(), &fakeMasterchef{aprs: []masterchef.PoolApr{poolApr(0, "0.1", "0")}})
	assert.Error(t, err)
}

func TestDefiLlamaFetchCandidates(t *testing.T) {
	server, _ := newLlamaServer(t, 0)
	client := NewDefiLlamaClient(server.URL)

	candidates, err := client.FetchCandidates(context.Background(), "aptos")
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Equal(t, "aries-markets USDC", candidates[0].Name)
	assert.Equal(t, types.RiskLevelLow, candidates[0].RiskLevel)
	assert.Equal(t, "aptos", candidates[0].Chain)
	assert.Equal(t, types.RiskLevelHigh, candidates[1].RiskLevel)
	assert.Equal(t, types.RiskLevelMedium, candidates[2].RiskLevel)
	assert.InDelta(t, 7.2, candidates[2].APY, 1e-9)

	_, err = client.FetchCandidates(context.Background(), "Solana")
	assert.ErrorIs(t, err, ErrNoPoolsForChain)

	_, err = client.FetchCandidates(context.Background(), " ")
	assert.Error(t, err)
}

func TestDefiLlamaRetries(t *testing.T) {
	server, calls := newLlamaServer(t, 2)
	client := NewDefiLlamaClient(server.URL)
	client.retryDelay = time.Millisecond

	candidates, err := client.FetchCandidates(context.Background(), "Aptos")
	require.NoError(t, err)
	assert.Len(t, candidates, 3)
	assert.EqualValues(t, 3, atomic.LoadInt32(calls))

	failing, failingCalls := newLlamaServer(t, 100)
	client = NewDefiLlamaClient(failing.URL)
	client.retryDelay = time.Millisecond

	_, err = client.FetchCandidates(context.Background(), "Aptos")
	assert.Error(t, err)
	assert.EqualValues(t, llamaMaxRetries, atomic.LoadInt32(failingCalls))
}

type stubAdapter struct {
	name    string
	balance types.Balance
	err     error
}

func (s *stubAdapter) Name() string        { return s.name }
func (s *stubAdapter) Chain() string       { return "Aptos" }
func (s *stubAdapter) TokenSymbol() string { return s.balance.TokenSymbol }
func (s *stubAdapter) CurrentAPY(ctx context.Context) (float64, error) {
	return s.balance.APY, s.err
}
func (s *stubAdapter) FetchUserBalance(ctx context.Context, walletAddress string) (types.Balance, error) {
	return s.balance, s.err
}
func (s *stubAdapter) PrepareDepositTransaction(ctx context.Context, amountUSD float64, walletAddress string) (types.ProtocolTransaction, error) {
	return types.ProtocolTransaction{}, nil
}
func (s *stubAdapter) PrepareWithdrawTransaction(ctx context.Context, amountUSD float64, walletAddress string) (types.ProtocolTransaction, error) {
	return types.ProtocolTransaction{}, nil
}

func TestAvailableProtocolsFallsBackToDefaults(t *testing.T) {
	catalog, err := NewCatalogService(CatalogConfig{}).AvailableProtocols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), catalog)

	broken := NewCatalogService(CatalogConfig{Masterchef: &fakeMasterchef{err: errors.New("unavailable")}})
	catalog, err = broken.AvailableProtocols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), catalog)
}

func TestAvailableProtocolsMergesSources(t *testing.T) {
	registry := adapters.NewRegistry(nil)
	registry.Register(&stubAdapter{name: "Aries Markets", balance: types.Balance{TokenSymbol: "APT", APY: 5}})

	server, _ := newLlamaServer(t, 0)
	service := NewCatalogService(CatalogConfig{
		Registry:        registry,
		Masterchef:      &fakeMasterchef{aprs: []masterchef.PoolApr{poolApr(4, "0.08", "0.01")}},
		DefiLlama:       NewDefiLlamaClient(server.URL),
		DefiLlamaChain:  "Aptos",
		IncludeDefaults: true,
	})

	catalog, err := service.AvailableProtocols(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(catalog))
	for _, protocol := range catalog {
		names = append(names, protocol.Name)
	}
	assert.Equal(t, []string{
		"Aries Markets",
		"Elys AMM Pool 4",
		"aries-markets USDC", "thala APT-THL", "amnis APT",
		"Liquidswap", "Tortuga Finance", "Ditto Finance", "Abel Finance",
	}, names)
	assert.Equal(t, 5.0, catalog[0].APY, "the registry quote wins over the default entry")
}

type stubInsights struct {
	balanceAPT float64
	recs       []types.InsightRecommendation
}

func (s *stubInsights) GetDefiInsights(ctx context.Context, balanceAPT float64) []types.InsightRecommendation {
	s.balanceAPT = balanceAPT
	return s.recs
}

func TestAvailableProtocolsIncludesInsights(t *testing.T) {
	source := &stubInsights{recs: []types.InsightRecommendation{
		{Protocol: "Aries Markets", ExpectedReturn: 0.2, RiskLevel: 0.1},
		{Protocol: "Tsunami Finance", ExpectedReturn: 0.08, RiskLevel: 0.4},
		{Protocol: "Moonshot", ExpectedReturn: 0.9, RiskLevel: 0.95},
	}}
	registry := adapters.NewRegistry(nil)
	registry.Register(&stubAdapter{name: "Aries Markets", balance: types.Balance{TokenSymbol: "APT", APY: 5}})

	service := NewCatalogService(CatalogConfig{
		Registry:           registry,
		Insights:           source,
		InsightsBalanceAPT: 250,
	})

	catalog, err := service.AvailableProtocols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 250.0, source.balanceAPT)

	require.Len(t, catalog, 3)
	assert.Equal(t, "Aries Markets", catalog[0].Name)
	assert.Equal(t, 5.0, catalog[0].APY, "live sources win over model suggestions")

	assert.Equal(t, "Tsunami Finance", catalog[1].Name)
	assert.Equal(t, "Aptos", catalog[1].Chain)
	assert.InDelta(t, 8.0, catalog[1].APY, 1e-9)
	assert.Equal(t, types.RiskLevelMedium, catalog[1].RiskLevel)
	assert.Zero(t, catalog[1].BalanceUSD)

	assert.Equal(t, "Moonshot", catalog[2].Name)
	assert.Equal(t, types.RiskLevelHigh, catalog[2].RiskLevel)
}

func TestAvailableProtocolsInsightsFallback(t *testing.T) {
	// A client without a key serves the fallback suggestions.
	service := NewCatalogService(CatalogConfig{
		Insights:           insights.NewGeminiClient("http://127.0.0.1:0", ""),
		InsightsBalanceAPT: 10,
	})

	catalog, err := service.AvailableProtocols(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(catalog))
	for _, protocol := range catalog {
		names = append(names, protocol.Name)
	}
	assert.Equal(t, []string{"Aries Markets", "Tsunami Finance", "Ditto Staking"}, names)
	assert.Equal(t, types.RiskLevelLow, catalog[0].RiskLevel)
}

func TestUserPositions(t *testing.T) {
	ctx := context.Background()

	positions, err := NewCatalogService(CatalogConfig{}).UserPositions(ctx, "0x1")
	require.NoError(t, err)
	assert.Equal(t, DefaultPositions(), positions)

	registry := adapters.NewRegistry(nil)
	registry.Register(&stubAdapter{name: "Lend", balance: types.Balance{BalanceUSD: 300, TokenSymbol: "APT", APY: 3}})
	positions, err = NewCatalogService(CatalogConfig{Registry: registry}).UserPositions(ctx, "0x1")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "Lend", positions[0].Name)

	positions, err = NewCatalogService(CatalogConfig{Registry: registry}).UserPositions(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPositions(), positions)

	empty := adapters.NewRegistry(nil)
	empty.Register(&stubAdapter{name: "Idle", balance: types.Balance{TokenSymbol: "APT"}})
	positions, err = NewCatalogService(CatalogConfig{Registry: empty}).UserPositions(ctx, "0x1")
	require.NoError(t, err)
	assert.Equal(t, DefaultPositions(), positions)
}
