package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/tropicaldog17/coinwatch/internal/errors"
)

// Ticker abstracts time.Ticker so the cadence can be driven manually in tests.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds the ticker that drives the schedule.
type TickerFactory func(interval time.Duration) Ticker

type realTicker struct {
	*time.Ticker
}

func (t *realTicker) C() <-chan time.Time {
	return t.Ticker.C
}

func newRealTicker(interval time.Duration) Ticker {
	return &realTicker{time.NewTicker(interval)}
}

// Scheduler triggers an ingestion cycle on a fixed cadence. A tick that
// arrives while a previous cycle is still in flight is skipped, not queued,
// and a failed cycle never alters the schedule.
type Scheduler struct {
	interval   time.Duration
	runTimeout time.Duration
	run        func(ctx context.Context) error
	logger     *zap.Logger
	newTicker  TickerFactory

	running  sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a scheduler that invokes run every interval. Each invocation is
// bounded by runTimeout.
func New(interval, runTimeout time.Duration, run func(ctx context.Context) error, logger *zap.Logger) *Scheduler {
	return NewWithTicker(interval, runTimeout, run, logger, newRealTicker)
}

// NewWithTicker creates a scheduler driven by a caller-supplied ticker,
// which makes the tick and skip-if-running logic deterministic under test.
func NewWithTicker(interval, runTimeout time.Duration, run func(ctx context.Context) error, logger *zap.Logger, newTicker TickerFactory) *Scheduler {
	return &Scheduler{
		interval:   interval,
		runTimeout: runTimeout,
		run:        run,
		logger:     logger,
		newTicker:  newTicker,
		stopChan:   make(chan struct{}),
	}
}

// Start launches the schedule loop in a background goroutine.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
}

// Stop halts the schedule and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop() {
	ticker := s.newTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			s.tick()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Scheduler) tick() {
	if !s.running.TryLock() {
		s.logger.Warn("previous ingestion cycle still in flight, skipping tick")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()

		start := time.Now()
		err := s.run(ctx)
		elapsed := time.Since(start)

		var partial *apperrors.PartialIngestionFailure
		var upstream *apperrors.UpstreamError
		switch {
		case err == nil:
			s.logger.Info("ingestion cycle completed", zap.Duration("elapsed", elapsed))
		case errors.As(err, &partial):
			s.logger.Warn("ingestion cycle completed with per-coin failures",
				zap.Duration("elapsed", elapsed),
				zap.Int("failed_coins", len(partial.Failures)),
				zap.Error(err))
		case errors.As(err, &upstream):
			s.logger.Error("ingestion cycle aborted, will retry on next tick",
				zap.Duration("elapsed", elapsed), zap.Error(err))
		default:
			s.logger.Error("ingestion cycle failed",
				zap.Duration("elapsed", elapsed), zap.Error(err))
		}
	}()
}
