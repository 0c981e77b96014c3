package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/tropicaldog17/coinwatch/internal/errors"
	"github.com/tropicaldog17/coinwatch/internal/models"
	"github.com/tropicaldog17/coinwatch/internal/repositories"
)

// Field names of the upstream simple-price payload.
const (
	fieldPrice     = "usd"
	fieldMarketCap = "usd_market_cap"
	fieldChange24h = "usd_24h_change"
)

type ingestionService struct {
	provider PriceProvider
	repo     repositories.PriceRepository
	catalog  models.Catalog
	logger   *zap.Logger
	now      func() time.Time
	jitter   func() float64
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(provider PriceProvider, repo repositories.PriceRepository, catalog models.Catalog, logger *zap.Logger) IngestionService {
	return &ingestionService{
		provider: provider,
		repo:     repo,
		catalog:  catalog,
		logger:   logger,
		now:      time.Now,
		jitter:   nil, // No price jitter
	}
}

// NewIngestionServiceWithJitter creates an ingestion service that adds the
// output of jitter to every fetched price. The function must be seeded by the
// caller so deviations stay reproducible.
func NewIngestionServiceWithJitter(provider PriceProvider, repo repositories.PriceRepository, catalog models.Catalog, logger *zap.Logger, jitter func() float64) IngestionService {
	return &ingestionService{
		provider: provider,
		repo:     repo,
		catalog:  catalog,
		logger:   logger,
		now:      time.Now,
		jitter:   jitter,
	}
}

// RunOnce fetches one snapshot for the full catalog and persists one record
// per coin. A fetch failure aborts the cycle with an UpstreamError before any
// write; a single coin's validation or insert failure is collected into a
// PartialIngestionFailure and the remaining coins proceed.
func (s *ingestionService) RunOnce(ctx context.Context) error {
	quotes, err := s.provider.FetchBatch(ctx, s.catalog)
	if err != nil {
		return &apperrors.UpstreamError{Err: err}
	}

	ingestedAt := s.now().UTC().Truncate(time.Second)
	failures := make(map[string]error)
	for _, coin := range s.catalog {
		record, err := s.buildRecord(coin, quotes[coin], ingestedAt)
		if err != nil {
			failures[coin] = err
			s.logger.Warn("skipping coin in ingestion cycle",
				zap.String("coin", coin), zap.Error(err))
			continue
		}
		if err := s.repo.Insert(ctx, record); err != nil {
			failures[coin] = err
			s.logger.Warn("failed to persist price record",
				zap.String("coin", coin), zap.Error(err))
			continue
		}
		s.logger.Info("stored price record",
			zap.String("coin", coin),
			zap.String("price", record.Price.String()),
			zap.Time("timestamp", record.Timestamp))
	}

	if len(failures) > 0 {
		return &apperrors.PartialIngestionFailure{Failures: failures}
	}
	return nil
}

func (s *ingestionService) buildRecord(coin string, quote RawQuote, ingestedAt time.Time) (*models.PriceRecord, error) {
	if quote == nil {
		return nil, fmt.Errorf("coin missing from upstream response")
	}

	price, err := numericField(quote, fieldPrice)
	if err != nil {
		return nil, err
	}
	marketCap, err := numericField(quote, fieldMarketCap)
	if err != nil {
		return nil, err
	}
	change, err := numericField(quote, fieldChange24h)
	if err != nil {
		return nil, err
	}

	if s.jitter != nil {
		price += s.jitter()
	}

	record := &models.PriceRecord{
		Coin:      coin,
		Price:     decimal.NewFromFloat(price),
		MarketCap: decimal.NewFromFloat(marketCap),
		Change24h: decimal.NewFromFloat(change),
		Timestamp: ingestedAt,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

func numericField(quote RawQuote, field string) (float64, error) {
	raw, ok := quote[field]
	if !ok {
		return 0, fmt.Errorf("%s: missing from upstream response", field)
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, fmt.Errorf("%s: not a numeric value", field)
	}
	return value, nil
}
