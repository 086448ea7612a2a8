package config

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Endpoint configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// ElysGRPC is the gRPC endpoint of an Elys node. Empty disables the Elys pool catalog.
	ElysGRPC string
	// ElysPoolIDs are the AMM pools registered as protocol adapters (ELYS_POOL_IDS, comma separated).
	ElysPoolIDs []uint64
	// DefiLlamaEnabled turns on the DefiLlama yields catalog source.
	DefiLlamaEnabled bool
	// DefiLlamaURL is the DefiLlama yields endpoint.
	DefiLlamaURL string
	// DefiLlamaChain restricts DefiLlama pools to one chain (e.g., "Aptos").
	DefiLlamaChain string
	// CryptoCompareAPIKey enables live APT pricing. Empty means APTPriceUSD is used.
	CryptoCompareAPIKey string
	// CryptoCompareURL is the CryptoCompare spot price endpoint.
	CryptoCompareURL string
	// APTPriceUSD prices APT when no live price is available.
	APTPriceUSD float64
	// CatalogIncludeDefaults appends the built-in Aptos catalog to the live sources.
	CatalogIncludeDefaults bool
	// GeminiAPIKey authenticates the insights client. Empty means fallback insights only.
	GeminiAPIKey string
	// GeminiEndpoint is the generateContent URL of the insights model.
	GeminiEndpoint string
	// InsightsCatalogEnabled adds the insights suggestions to the catalog. Without a Gemini key
	// the fallback suggestions are used.
	InsightsCatalogEnabled bool
	// InsightsBalanceAPT is the balance the insights catalog source asks suggestions for.
	InsightsBalanceAPT float64
)

const (
	defaultDefiLlamaURL   = "https://yields.llama.fi/pools"
	defaultCryptoCompare  = "https://min-api.cryptocompare.com/data/price"
	defaultAPTPriceUSD    = 8.0
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent"
	defaultInsightsAPT    = 100.0
)

// loadEndpointConfig loads endpoint configuration from environment variables.
// This function is called by LoadConfig() in General.go.
func loadEndpointConfig() error {
	log.Info().Msg("Loading endpoint configuration from environment variables...")

	var err error

	ElysGRPC = getEnvOrDefault("ELYS_GRPC", "")
	if ElysPoolIDs, err = getEnvAsUint64List("ELYS_POOL_IDS"); err != nil {
		return err
	}

	DefiLlamaEnabled, err = getEnvAsBool("DEFILLAMA_ENABLED", false)
	if err != nil {
		return err
	}
	DefiLlamaURL = getEnvOrDefault("DEFILLAMA_URL", defaultDefiLlamaURL)
	DefiLlamaChain = getEnvOrDefault("DEFILLAMA_CHAIN", "Aptos")

	CryptoCompareAPIKey = getEnvOrDefault("CRYPTOCOMPARE_API", "")
	CryptoCompareURL = getEnvOrDefault("CRYPTOCOMPARE_URL", defaultCryptoCompare)
	if APTPriceUSD, err = getEnvAsFloat64OrDefault("APT_PRICE_USD", defaultAPTPriceUSD); err != nil {
		return err
	}
	if APTPriceUSD <= 0 {
		return errors.New("environment variable APT_PRICE_USD must be positive")
	}
	if CatalogIncludeDefaults, err = getEnvAsBool("CATALOG_INCLUDE_DEFAULTS", true); err != nil {
		return err
	}

	GeminiAPIKey = getEnvOrDefault("GEMINI_API_KEY", "")
	GeminiEndpoint = getEnvOrDefault("GEMINI_ENDPOINT", defaultGeminiEndpoint)
	if InsightsCatalogEnabled, err = getEnvAsBool("INSIGHTS_CATALOG_ENABLED", false); err != nil {
		return err
	}
	if InsightsBalanceAPT, err = getEnvAsFloat64OrDefault("INSIGHTS_BALANCE_APT", defaultInsightsAPT); err != nil {
		return err
	}
	if InsightsBalanceAPT < 0 {
		return errors.New("environment variable INSIGHTS_BALANCE_APT must not be negative")
	}

	log.Debug().
		Str("ElysGRPC", ElysGRPC).
		Int("ElysPools", len(ElysPoolIDs)).
		Bool("DefiLlamaEnabled", DefiLlamaEnabled).
		Str("DefiLlamaChain", DefiLlamaChain).
		Bool("LivePricing", CryptoCompareAPIKey != "").
		Bool("CatalogIncludeDefaults", CatalogIncludeDefaults).
		Bool("GeminiConfigured", GeminiAPIKey != "").
		Bool("InsightsCatalogEnabled", InsightsCatalogEnabled).
		Msg("Endpoint configuration loaded successfully.")

	return nil
}

// getEnvAsUint64List parses a comma separated list of unsigned integers. Unset means an empty list.
func getEnvAsUint64List(key string) ([]uint64, error) {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return nil, nil
	}

	var values []uint64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, errors.New("environment variable " + key + " must be a comma separated list of integers, got: " + raw)
		}
		values = append(values, value)
	}
	return values, nil
}
