package repositories

import (
	"context"

	"github.com/tropicaldog17/coinwatch/internal/models"
)

// PriceRepository defines the interface for the append-only price time series.
// Records are keyed by (coin, timestamp); duplicates and out-of-order
// timestamps are valid inserts, and no record is ever updated or deleted.
type PriceRepository interface {
	// Insert appends one record. It fails with a PersistenceError only on a
	// storage-layer fault.
	Insert(ctx context.Context, record *models.PriceRecord) error
	// Latest returns the record with the maximum timestamp for the coin,
	// breaking ties by most recent insert. It fails with ErrNotFound when the
	// coin has zero records.
	Latest(ctx context.Context, coin string) (*models.PriceRecord, error)
	// Window returns up to n records for the coin in descending timestamp
	// order. Fewer than n (including zero) is not an error; n < 1 is an
	// ErrInvalidArgument.
	Window(ctx context.Context, coin string, n int) ([]*models.PriceRecord, error)
}
