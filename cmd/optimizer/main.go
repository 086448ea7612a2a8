package main

import (
	"context"
	"crypto/tls"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	masterchef "github.com/elys-network/elys/v6/x/masterchef/types"
	"github.com/elys-network/yield-optimizer/internal/adapters"
	"github.com/elys-network/yield-optimizer/internal/advisor"
	"github.com/elys-network/yield-optimizer/internal/config"
	"github.com/elys-network/yield-optimizer/internal/datafetcher"
	"github.com/elys-network/yield-optimizer/internal/insights"
	"github.com/elys-network/yield-optimizer/internal/logger"
	"github.com/elys-network/yield-optimizer/internal/state"
	"github.com/elys-network/yield-optimizer/internal/types"
	"github.com/elys-network/yield-optimizer/internal/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	SHUTDOWN_TIMEOUT = 15 * time.Second
	PRICE_TIMEOUT    = 10 * time.Second
)

// main is the entry point for the yield optimizer service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if config.LogFile != "" {
		fileWriter, err := logger.FileWriter(config.LogFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", config.LogFile).Msg("Failed to open log file")
		}
		logger.Initialize(config.LogLevel, fileWriter)
	} else {
		logger.Initialize(config.LogLevel)
	}
	log.Info().Msg("Yield Optimizer Starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- 2. Persistence (optional) ---
	params := config.NewEngineParameters()
	var store advisor.RunStore
	var healthCheck func() error

	if config.DBEnabled {
		dbCfg := state.DBConfig{
			Host: config.DBHost, Port: config.DBPort,
			User: config.DBUser, Password: config.DBPassword,
			DBName: config.DBName, SSLMode: config.DBSSLMode,
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}

		pgStore := state.NewPostgresStore(state.DB)
		params = loadEngineParameters(ctx, pgStore, params)
		store = pgStore
		healthCheck = state.TestDBConnection
	} else {
		log.Info().Msg("Database disabled, analysis history will not be recorded.")
	}

	// --- 3. Protocol Registry ---
	registry := adapters.NewRegistry(config.RiskLevelForProtocol)

	aries, err := adapters.NewAriesMarketsAdapter(resolveAPTPrice(ctx))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Aries Markets adapter")
	}
	registry.Register(aries)

	// --- 4. Elys Node (optional) ---
	var masterchefClient masterchef.QueryClient
	if config.ElysGRPC != "" {
		var creds grpc.DialOption
		if strings.Contains(config.ElysGRPC, ":443") {
			creds = grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{}))
		} else {
			creds = grpc.WithTransportCredentials(insecure.NewCredentials())
		}
		grpcClient, err := grpc.Dial(config.ElysGRPC, creds)
		if err != nil {
			log.Fatal().Err(err).Msg("gRPC connection error")
		}
		defer grpcClient.Close()
		log.Info().Str("endpoint", config.ElysGRPC).Msg("gRPC connected")

		masterchefClient = masterchef.NewQueryClient(grpcClient)
		for _, poolID := range config.ElysPoolIDs {
			pool, err := adapters.NewElysPoolAdapter(poolID, masterchefClient)
			if err != nil {
				log.Fatal().Err(err).Uint64("poolID", poolID).Msg("Failed to create Elys pool adapter")
			}
			registry.Register(pool)
		}
	} else if len(config.ElysPoolIDs) > 0 {
		log.Warn().Msg("ELYS_POOL_IDS is set but ELYS_GRPC is not, Elys pools will not be registered.")
	}

	// --- 5. Catalog Sources ---
	catalogCfg := datafetcher.CatalogConfig{
		Registry:        registry,
		Masterchef:      masterchefClient,
		DefiLlamaChain:  config.DefiLlamaChain,
		IncludeDefaults: config.CatalogIncludeDefaults,
	}
	if config.DefiLlamaEnabled {
		catalogCfg.DefiLlama = datafetcher.NewDefiLlamaClient(config.DefiLlamaURL)
	}

	var insightsProvider advisor.InsightsProvider
	if config.GeminiAPIKey != "" {
		insightsProvider = insights.NewGeminiClient(config.GeminiEndpoint, config.GeminiAPIKey)
	}
	if config.InsightsCatalogEnabled {
		// A client without a key answers with the fallback suggestions.
		catalogCfg.Insights = insights.NewGeminiClient(config.GeminiEndpoint, config.GeminiAPIKey)
		catalogCfg.InsightsBalanceAPT = config.InsightsBalanceAPT
	}
	catalog := datafetcher.NewCatalogService(catalogCfg)

	// --- 6. Create Advisor with Dependency Injection ---
	adv, err := advisor.NewAdvisor(advisor.Config{
		Catalog:  catalog,
		Registry: registry,
		Store:    store,
		Insights: insightsProvider,
		Params:   &params,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create advisor")
	}

	// --- 7. Start Web Server ---
	webServer := web.NewWebServer(config.WebPort, adv, healthCheck)
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting optimizer API")
		serverErr <- webServer.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("Web server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Web server shutdown failed")
	}
	log.Info().Msg("Yield Optimizer stopped")
}

// loadEngineParameters returns the active stored parameters, seeding the store with the
// defaults on first run.
func loadEngineParameters(ctx context.Context, store *state.PostgresStore, defaults types.EngineParameters) types.EngineParameters {
	params, version, err := store.GetActiveEngineParameters(ctx, advisor.DefaultParamsConfigName)
	if err == nil {
		log.Info().Int("version", version).Msg("Engine parameters loaded from database.")
		return params
	}

	if !errors.Is(err, state.ErrNoActiveParameters) {
		log.Warn().Err(err).Msg("Failed to load active engine parameters, using defaults.")
		return defaults
	}

	log.Warn().Msg("No active engine parameters stored, saving defaults.")
	if _, err := store.SaveEngineParameters(ctx, defaults, advisor.DefaultParamsConfigName, advisor.DefaultParamsConfigVersion, true); err != nil {
		log.Fatal().Err(err).Msg("Failed to save initial default engine parameters.")
	}
	return defaults
}

// resolveAPTPrice fetches a live APT price when CryptoCompare is configured and falls back to APT_PRICE_USD.
func resolveAPTPrice(ctx context.Context) float64 {
	if config.CryptoCompareAPIKey == "" {
		return config.APTPriceUSD
	}

	priceCtx, cancel := context.WithTimeout(ctx, PRICE_TIMEOUT)
	defer cancel()

	price, err := datafetcher.NewPriceClient(config.CryptoCompareURL, config.CryptoCompareAPIKey).FetchUSDPrice(priceCtx, "APT")
	if err != nil {
		log.Warn().Err(err).Float64("fallbackPrice", config.APTPriceUSD).Msg("Failed to fetch APT price, using configured price")
		return config.APTPriceUSD
	}
	log.Info().Float64("priceUSD", price).Msg("Fetched APT price")
	return price
}
