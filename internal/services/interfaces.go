package services

import (
	"context"
	"encoding/json"
)

// RawQuote holds one coin's price fields exactly as returned upstream.
// Fields stay undecoded so a malformed value for one coin can be rejected
// without discarding the rest of the batch.
type RawQuote map[string]json.RawMessage

// PriceProvider defines the interface for the external price source.
type PriceProvider interface {
	// FetchBatch returns one snapshot per requested coin. A coin the source
	// does not know is simply absent from the result; a network, status or
	// body-level failure is an error for the whole batch.
	FetchBatch(ctx context.Context, coins []string) (map[string]RawQuote, error)
}

// IngestionService runs one ingestion cycle over the configured catalog.
type IngestionService interface {
	RunOnce(ctx context.Context) error
}

// QueryService serves the two read queries against the price time series.
type QueryService interface {
	GetStats(ctx context.Context, coin string) (*CoinStats, error)
	GetDeviation(ctx context.Context, coin string, window int) (*CoinDeviation, error)
}
