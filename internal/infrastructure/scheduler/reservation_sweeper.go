package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appstock "github.com/storefront/stockcore/internal/application/stock"
)

// ReservationSweeper periodically frees expired cart reservations so their
// units flow back into available capacity.
type ReservationSweeper struct {
	reservations *appstock.ReservationService
	interval     time.Duration
	logger       *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewReservationSweeper creates a sweeper running at the given interval
func NewReservationSweeper(reservations *appstock.ReservationService, interval time.Duration, logger *zap.Logger) *ReservationSweeper {
	return &ReservationSweeper{
		reservations: reservations,
		interval:     interval,
		logger:       logger,
	}
}

// Start begins sweeping in the background. Starting twice is a no-op.
func (s *ReservationSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("reservation sweeper started", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts the sweeper and waits for an in-flight sweep to finish
func (s *ReservationSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("reservation sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ReservationSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// run once on start to catch holds that expired while we were down
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ReservationSweeper) sweep(ctx context.Context) {
	count, err := s.reservations.CleanupExpired(ctx)
	if err != nil {
		s.logger.Error("reservation sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.logger.Debug("reservation sweep completed", zap.Int("freed", count))
	}
}
