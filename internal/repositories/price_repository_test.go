package repositories

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tropicaldog17/coinwatch/internal/db"
	apperrors "github.com/tropicaldog17/coinwatch/internal/errors"
	"github.com/tropicaldog17/coinwatch/internal/models"
)

func newTestRepository(t *testing.T) PriceRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "coinwatch_test.db") + "?_busy_timeout=5000"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.PriceRecord{}))

	return NewPriceRepository(&db.DB{DB: gdb})
}

func record(coin string, price float64, ts time.Time) *models.PriceRecord {
	return &models.PriceRecord{
		Coin:      coin,
		Price:     decimal.NewFromFloat(price),
		MarketCap: decimal.NewFromFloat(price * 1e6),
		Change24h: decimal.NewFromFloat(-0.5),
		Timestamp: ts,
	}
}

func TestPriceRepository_LatestReturnsMaxTimestamp(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Inserted out of order on purpose: the store orders by timestamp,
	// not insertion order.
	require.NoError(t, repo.Insert(ctx, record("bitcoin", 64100, base.Add(2*time.Hour))))
	require.NoError(t, repo.Insert(ctx, record("bitcoin", 64500, base.Add(6*time.Hour))))
	require.NoError(t, repo.Insert(ctx, record("bitcoin", 63900, base)))

	latest, err := repo.Latest(ctx, "bitcoin")
	require.NoError(t, err)
	assert.True(t, latest.Timestamp.Equal(base.Add(6*time.Hour)))
	assert.True(t, latest.Price.Equal(decimal.NewFromInt(64500)))
}

func TestPriceRepository_LatestBreaksTimestampTiesByInsert(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	first := record("bitcoin", 64000, ts)
	first.CreatedAt = ts.Add(1 * time.Second)
	second := record("bitcoin", 64111, ts)
	second.CreatedAt = ts.Add(2 * time.Second)

	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))

	latest, err := repo.Latest(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestPriceRepository_LatestUnknownCoin(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Latest(context.Background(), "dogecoin")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPriceRepository_WindowReturnsAllWhenShort(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, record("ethereum", 3000+float64(i), base.Add(time.Duration(i)*time.Hour))))
	}

	window, err := repo.Window(ctx, "ethereum", 100)
	require.NoError(t, err)
	require.Len(t, window, 5)
	for i := 1; i < len(window); i++ {
		assert.True(t, window[i].Timestamp.Before(window[i-1].Timestamp),
			"window must be ordered by descending timestamp")
	}
}

func TestPriceRepository_WindowLimitsToN(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.Insert(ctx, record("ethereum", 3000+float64(i), base.Add(time.Duration(i)*time.Hour))))
	}

	window, err := repo.Window(ctx, "ethereum", 3)
	require.NoError(t, err)
	require.Len(t, window, 3)
	assert.True(t, window[0].Timestamp.Equal(base.Add(6*time.Hour)))
	assert.True(t, window[2].Timestamp.Equal(base.Add(4*time.Hour)))
}

func TestPriceRepository_WindowEmptyCoinIsNotAnError(t *testing.T) {
	repo := newTestRepository(t)

	window, err := repo.Window(context.Background(), "dogecoin", 100)
	require.NoError(t, err)
	assert.Empty(t, window)
}

func TestPriceRepository_WindowRejectsNonPositiveN(t *testing.T) {
	repo := newTestRepository(t)

	for _, n := range []int{0, -1} {
		_, err := repo.Window(context.Background(), "bitcoin", n)
		var invalid *apperrors.ErrInvalidArgument
		assert.ErrorAs(t, err, &invalid)
	}
}

func TestPriceRepository_DuplicateTimestampIsValid(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, record("bitcoin", 64000, ts)))
	require.NoError(t, repo.Insert(ctx, record("bitcoin", 64000, ts)))

	window, err := repo.Window(ctx, "bitcoin", 100)
	require.NoError(t, err)
	assert.Len(t, window, 2)
}

func TestPriceRepository_ConcurrentInsertsForDifferentCoins(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for _, coin := range []string{"bitcoin", "ethereum"} {
		wg.Add(1)
		go func(coin string) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				if err := repo.Insert(ctx, record(coin, 100+float64(i), base.Add(time.Duration(i)*time.Minute))); err != nil {
					errs <- fmt.Errorf("%s: %w", coin, err)
				}
			}
		}(coin)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent insert failed: %v", err)
	}

	for _, coin := range []string{"bitcoin", "ethereum"} {
		window, err := repo.Window(ctx, coin, 100)
		require.NoError(t, err)
		assert.Len(t, window, 5)
	}
}

func TestPriceRepository_LatestWrapsStorageFaults(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "coinwatch_test.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	// Schema deliberately not migrated: reads hit a missing table.
	repo := NewPriceRepository(&db.DB{DB: gdb})

	_, err = repo.Latest(context.Background(), "bitcoin")
	var persistence *apperrors.PersistenceError
	require.True(t, errors.As(err, &persistence))
}
