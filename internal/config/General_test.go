package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("WEB_PORT", "")
	t.Setenv("DB_ENABLED", "")
	t.Setenv("ELYS_POOL_IDS", "")
	t.Setenv("APT_PRICE_USD", "")
	t.Setenv("CATALOG_INCLUDE_DEFAULTS", "")
	t.Setenv("DEFILLAMA_ENABLED", "")
	t.Setenv("DEFILLAMA_CHAIN", "")
	t.Setenv("INSIGHTS_CATALOG_ENABLED", "")
	t.Setenv("INSIGHTS_BALANCE_APT", "")

	require.NoError(t, LoadConfig())

	assert.Equal(t, "8080", WebPort)
	assert.False(t, DBEnabled)
	assert.Empty(t, ElysPoolIDs)
	assert.Equal(t, 8.0, APTPriceUSD)
	assert.True(t, CatalogIncludeDefaults)
	assert.False(t, DefiLlamaEnabled)
	assert.Equal(t, "Aptos", DefiLlamaChain)
	assert.Equal(t, "https://yields.llama.fi/pools", DefiLlamaURL)
	assert.False(t, InsightsCatalogEnabled)
	assert.Equal(t, 100.0, InsightsBalanceAPT)
}

func TestLoadConfigDatabaseRequiresSettings(t *testing.T) {
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("DB_USER", "optimizer")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "optimizer")

	assert.Error(t, LoadConfig())

	t.Setenv("DB_PORT", "5432")
	require.NoError(t, LoadConfig())
	assert.True(t, DBEnabled)
	assert.Equal(t, 5432, DBPort)
	assert.Equal(t, "disable", DBSSLMode)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bool", "DEFILLAMA_ENABLED", "maybe"},
		{"pool ids", "ELYS_POOL_IDS", "1,two"},
		{"price not a number", "APT_PRICE_USD", "cheap"},
		{"price not positive", "APT_PRICE_USD", "-3"},
		{"insights flag", "INSIGHTS_CATALOG_ENABLED", "sometimes"},
		{"insights balance negative", "INSIGHTS_BALANCE_APT", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_ENABLED", "false")
			t.Setenv(tt.key, tt.value)
			assert.Error(t, LoadConfig())
		})
	}
}

func TestGetEnvAsUint64List(t *testing.T) {
	t.Setenv("POOLS", " 1, 32 ,,7")
	ids, err := getEnvAsUint64List("POOLS")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 32, 7}, ids)
}

func TestRiskLevelForProtocol(t *testing.T) {
	assert.Equal(t, "low", string(RiskLevelForProtocol("Aries Markets")))
	assert.Equal(t, "high", string(RiskLevelForProtocol("Tortuga Finance")))
	assert.Equal(t, "medium", string(RiskLevelForProtocol("Somewhere New")))
}
