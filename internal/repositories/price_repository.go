package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tropicaldog17/coinwatch/internal/db"
	apperrors "github.com/tropicaldog17/coinwatch/internal/errors"
	"github.com/tropicaldog17/coinwatch/internal/models"
)

type priceRepository struct {
	db *db.DB
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(database *db.DB) PriceRepository {
	return &priceRepository{db: database}
}

func (r *priceRepository) Insert(ctx context.Context, record *models.PriceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return &apperrors.PersistenceError{Op: "insert", Err: err}
	}
	return nil
}

func (r *priceRepository) Latest(ctx context.Context, coin string) (*models.PriceRecord, error) {
	record := &models.PriceRecord{}
	err := r.db.WithContext(ctx).
		Where("coin = ?", coin).
		Order("timestamp DESC").
		Order("created_at DESC").
		Order("id DESC").
		Take(record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "latest", Err: err}
	}
	return record, nil
}

func (r *priceRepository) Window(ctx context.Context, coin string, n int) ([]*models.PriceRecord, error) {
	if n < 1 {
		return nil, &apperrors.ErrInvalidArgument{Field: "n", Message: "must be a positive integer"}
	}

	records := make([]*models.PriceRecord, 0, n)
	err := r.db.WithContext(ctx).
		Where("coin = ?", coin).
		Order("timestamp DESC").
		Order("created_at DESC").
		Order("id DESC").
		Limit(n).
		Find(&records).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "window", Err: err}
	}
	return records, nil
}
