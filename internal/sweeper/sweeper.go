// Package sweeper cancels pending orders whose payment window has lapsed and
// puts their stock back on sale.
package sweeper

import (
	"context"
	"time"

	"storefront/internal/service"

	"go.uber.org/zap"
)

type Scheduler struct {
	checkout service.CheckoutService
	interval time.Duration
	log      *zap.Logger
	stopCh   chan struct{}
	now      func() time.Time
}

func NewScheduler(checkout service.CheckoutService, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		checkout: checkout,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting expiration sweeper", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

func (s *Scheduler) Stop() {
	s.log.Info("stopping expiration sweeper")
	close(s.stopCh)
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// sweep once on startup, pending orders may have expired while down
	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopCh:
			s.log.Info("expiration sweeper stopped")
			return
		case <-ctx.Done():
			s.log.Info("expiration sweeper cancelled")
			return
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	cutoff := s.now().Add(-service.PaymentWindow)
	n, err := s.checkout.ExpireStale(ctx, cutoff)
	if err != nil {
		s.log.Error("expiration sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("expired stale orders", zap.Int("count", n))
	}
}

// RunOnceNow sweeps immediately, used by the sweeper binary's one-shot mode.
func (s *Scheduler) RunOnceNow(ctx context.Context) (int, error) {
	return s.checkout.ExpireStale(ctx, s.now().Add(-service.PaymentWindow))
}
