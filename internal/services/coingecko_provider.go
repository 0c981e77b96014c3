package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const coinGeckoBaseURL = "https://api.coingecko.com"

// CoinGecko-based implementation (no API key required for the simple price endpoint)
type CoinGeckoProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewCoinGeckoProvider(timeout time.Duration) PriceProvider {
	return &CoinGeckoProvider{
		baseURL:    coinGeckoBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *CoinGeckoProvider) FetchBatch(ctx context.Context, coins []string) (map[string]RawQuote, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(coins, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_market_cap", "true")
	params.Set("include_24hr_change", "true")
	endpoint := fmt.Sprintf("%s/api/v3/simple/price?%s", p.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko status %d", resp.StatusCode)
	}

	var payload map[string]RawQuote
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode coingecko response: %w", err)
	}
	return payload, nil
}
