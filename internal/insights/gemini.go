/*
This file asks a generative language model for Aptos protocol suggestions and turns them into
insight recommendations. Any failure along the way returns the fixed fallback list instead.
*/

package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/elys-network/yield-optimizer/internal/logger"
	"github.com/elys-network/yield-optimizer/internal/types"
)

var insightsLogger = logger.GetForComponent("insights")

var (
	ErrMissingAPIKey  = errors.New("gemini API key is not configured")
	ErrNoJSONInReply  = errors.New("no valid JSON found in model response")
	ErrEmptyReply     = errors.New("model response has no candidates")
	ErrInvalidBalance = errors.New("balance must be non-negative and finite")
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent"
	requestTimeout  = 30 * time.Second

	defaultAddress    = "0x1"
	riskPenaltyFactor = 0.02
)

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

const promptTemplate = `
I need DeFi investment recommendations for Aptos blockchain.
My current APT balance is %s APT.
Please suggest 3 different DeFi protocols on Aptos with their APY rates,
risk levels (as a decimal between 0-1), and expected returns.
Format the response as a JSON array of objects with these fields:
name, apy (decimal), riskScore (decimal), address (contract address),
description (1-2 sentences about why this is recommended).
`

type GeminiClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewGeminiClient creates a client for endpoint. An empty endpoint uses the public gemini-pro URL.
func NewGeminiClient(endpoint, apiKey string) *GeminiClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &GeminiClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GetDefiInsights returns the model's suggestions for a wallet holding balanceAPT, or the
// fallback list when the model cannot be reached or its reply cannot be parsed.
func (c *GeminiClient) GetDefiInsights(ctx context.Context, balanceAPT float64) []types.InsightRecommendation {
	recs, err := c.FetchInsights(ctx, balanceAPT)
	if err != nil {
		insightsLogger.Error().Err(err).Float64("balanceAPT", balanceAPT).Msg("Error getting DeFi insights, using fallback recommendations")
		return FallbackRecommendations()
	}
	return recs
}

// FetchInsights is GetDefiInsights without the fallback.
func (c *GeminiClient) FetchInsights(ctx context.Context, balanceAPT float64) ([]types.InsightRecommendation, error) {
	if math.IsNaN(balanceAPT) || math.IsInf(balanceAPT, 0) || balanceAPT < 0 {
		return nil, fmt.Errorf("%w: %f", ErrInvalidBalance, balanceAPT)
	}
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	prompt := fmt.Sprintf(promptTemplate, formatBalance(balanceAPT))
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	protocols, err := parseProtocols(text)
	if err != nil {
		return nil, err
	}

	recs := make([]types.InsightRecommendation, 0, len(protocols))
	for _, protocol := range protocols {
		recs = append(recs, toRecommendation(protocol))
	}

	insightsLogger.Info().Int("recommendations", len(recs)).Msg("Received DeFi insights from model")
	return recs, nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model returned status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyReply
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

// parseProtocols extracts the outermost JSON array from free-form model text.
func parseProtocols(text string) ([]types.ProtocolData, error) {
	match := jsonArrayPattern.FindString(text)
	if match == "" {
		return nil, ErrNoJSONInReply
	}

	var protocols []types.ProtocolData
	if err := json.Unmarshal([]byte(match), &protocols); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoJSONInReply, err)
	}
	return protocols, nil
}

func toRecommendation(protocol types.ProtocolData) types.InsightRecommendation {
	address := protocol.Address
	if strings.TrimSpace(address) == "" {
		address = defaultAddress
	}
	return types.InsightRecommendation{
		Protocol:       protocol.Name,
		Action:         "deposit",
		ExpectedReturn: protocol.APY,
		NetBenefit:     protocol.APY - protocol.RiskScore*riskPenaltyFactor,
		RiskLevel:      protocol.RiskScore,
		Address:        address,
		Description:    protocol.Description,
	}
}

func formatBalance(balance float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.8f", balance), "0"), ".")
}
