package services

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/tropicaldog17/coinwatch/internal/errors"
	"github.com/tropicaldog17/coinwatch/internal/models"
)

// ---- Mocks for the provider and repository used in unit tests ----

type mockPriceProvider struct {
	quotes map[string]RawQuote
	err    error
	calls  int
}

func (m *mockPriceProvider) FetchBatch(ctx context.Context, coins []string) (map[string]RawQuote, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.quotes, nil
}

// rawQuote builds a RawQuote from already-marshaled field values.
func rawQuote(fields map[string]string) RawQuote {
	quote := make(RawQuote, len(fields))
	for field, value := range fields {
		quote[field] = json.RawMessage(value)
	}
	return quote
}

func goodQuote(price, marketCap, change float64) RawQuote {
	return rawQuote(map[string]string{
		fieldPrice:     fmt.Sprintf("%g", price),
		fieldMarketCap: fmt.Sprintf("%g", marketCap),
		fieldChange24h: fmt.Sprintf("%g", change),
	})
}

type mockPriceRepository struct {
	records   []*models.PriceRecord
	insertErr map[string]error
}

func (m *mockPriceRepository) Insert(ctx context.Context, record *models.PriceRecord) error {
	if err := m.insertErr[record.Coin]; err != nil {
		return err
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockPriceRepository) Latest(ctx context.Context, coin string) (*models.PriceRecord, error) {
	var latest *models.PriceRecord
	for _, record := range m.records {
		if record.Coin != coin {
			continue
		}
		if latest == nil || record.Timestamp.After(latest.Timestamp) {
			latest = record
		}
	}
	if latest == nil {
		return nil, apperrors.ErrNotFound
	}
	return latest, nil
}

func (m *mockPriceRepository) Window(ctx context.Context, coin string, n int) ([]*models.PriceRecord, error) {
	if n < 1 {
		return nil, &apperrors.ErrInvalidArgument{Field: "n", Message: "must be a positive integer"}
	}
	var window []*models.PriceRecord
	for i := len(m.records) - 1; i >= 0 && len(window) < n; i-- {
		if m.records[i].Coin == coin {
			window = append(window, m.records[i])
		}
	}
	return window, nil
}
