/*
This file fetches a spot USD price from the CryptoCompare API. It is used to price the APT
amounts in prepared Aries Markets transactions.
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
	"net/url"
	"strings"
	"time"

	"github.com/elys-network/yield-optimizer/internal/logger"
)

var priceLogger = logger.GetForComponent("price_retriever")

var (
	ErrInvalidPriceData = errors.New("invalid price data received")
	ErrAPIConfiguration = errors.New("API configuration error")
)

const (
	DefaultCryptoCompareURL = "https://min-api.cryptocompare.com/data/price"
	priceTimeout            = 10 * time.Second
)

type PriceClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPriceClient creates a CryptoCompare client. An empty baseURL uses the public endpoint.
func NewPriceClient(baseURL, apiKey string) *PriceClient {
	if baseURL == "" {
		baseURL = DefaultCryptoCompareURL
	}
	return &PriceClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: priceTimeout},
	}
}

// FetchUSDPrice returns the current USD price of symbol.
func (c *PriceClient) FetchUSDPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	if symbol == "" {
		return 0, errors.New("symbol cannot be empty")
	}
	if c.apiKey == "" {
		return 0, fmt.Errorf("%w: CRYPTOCOMPARE_API is not set", ErrAPIConfiguration)
	}

	query := url.Values{}
	query.Set("fsym", symbol)
	query.Set("tsyms", "USD")
	query.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		priceLogger.Error().Str("coin", symbol).Int("statusCode", resp.StatusCode).Msg("API returned non-200 status")
		return 0, fmt.Errorf("API returned status %d for %s", resp.StatusCode, symbol)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body for %s: %w", symbol, err)
	}

	var prices map[string]float64
	if err := json.Unmarshal(body, &prices); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidPriceData, symbol, err)
	}

	price, ok := prices["USD"]
	if !ok {
		return 0, fmt.Errorf("%w: no USD price for %s", ErrInvalidPriceData, symbol)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, fmt.Errorf("%w: price for %s must be positive and finite: %f", ErrInvalidPriceData, symbol, price)
	}

	priceLogger.Debug().Str("coin", symbol).Float64("priceUSD", price).Msg("Fetched spot price")
	return price, nil
}
