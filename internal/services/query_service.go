package services

import (
	"context"
	"math"

	apperrors "github.com/tropicaldog17/coinwatch/internal/errors"
	"github.com/tropicaldog17/coinwatch/internal/repositories"
)

// DefaultDeviationWindow is the number of most recent records the deviation
// query is computed over.
const DefaultDeviationWindow = 100

// CoinStats is the wire shape of the latest snapshot for a coin.
type CoinStats struct {
	Price     float64 `json:"price"`
	MarketCap float64 `json:"marketCap"`
	Change24h float64 `json:"24hChange"`
}

// CoinDeviation is the wire shape of the windowed deviation query.
type CoinDeviation struct {
	Deviation float64 `json:"deviation"`
}

type queryService struct {
	repo repositories.PriceRepository
}

// NewQueryService creates a new query service
func NewQueryService(repo repositories.PriceRepository) QueryService {
	return &queryService{repo: repo}
}

func (s *queryService) GetStats(ctx context.Context, coin string) (*CoinStats, error) {
	record, err := s.repo.Latest(ctx, coin)
	if err != nil {
		return nil, err
	}
	return &CoinStats{
		Price:     record.Price.InexactFloat64(),
		MarketCap: record.MarketCap.InexactFloat64(),
		Change24h: record.Change24h.InexactFloat64(),
	}, nil
}

func (s *queryService) GetDeviation(ctx context.Context, coin string, window int) (*CoinDeviation, error) {
	records, err := s.repo.Window(ctx, coin, window)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.ErrNotFound
	}

	prices := make([]float64, len(records))
	for i, record := range records {
		prices[i] = record.Price.InexactFloat64()
	}
	return &CoinDeviation{Deviation: populationStdDev(prices)}, nil
}

// populationStdDev computes the population standard deviation: the square
// root of the mean squared deviation from the mean, dividing by the full
// count (not count-1). A single value yields 0 exactly.
func populationStdDev(values []float64) float64 {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var squaredDiffs float64
	for _, v := range values {
		d := v - mean
		squaredDiffs += d * d
	}
	return math.Sqrt(squaredDiffs / n)
}
