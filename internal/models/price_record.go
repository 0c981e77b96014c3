package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is one immutable observation of a coin's market data.
// Records are append-only: they are never updated or deleted, and the
// series is ordered by Timestamp, not by insertion order.
type PriceRecord struct {
	ID        string          `json:"id" gorm:"primaryKey"`
	Coin      string          `json:"coin" gorm:"index:idx_price_records_coin_ts,priority:1"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric"`
	MarketCap decimal.Decimal `json:"market_cap" gorm:"type:numeric"`
	Change24h decimal.Decimal `json:"change_24h" gorm:"type:numeric"`
	Timestamp time.Time       `json:"timestamp" gorm:"index:idx_price_records_coin_ts,priority:2"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName overrides the GORM table name
func (PriceRecord) TableName() string {
	return "price_records"
}

func (r *PriceRecord) Validate() error {
	if r.Coin == "" {
		return errors.New("coin is required")
	}
	if r.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	if r.MarketCap.IsNegative() {
		return errors.New("market cap must not be negative")
	}
	return nil
}
