package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/dailykart/dailykart-backend/internal/promo"
	"github.com/dailykart/dailykart-backend/pkg/logger"
	"github.com/dailykart/dailykart-backend/pkg/metrics"
)

// Resyncer re-prices every open cart. Satisfied by Manager.
type Resyncer interface {
	ResyncAll(ctx context.Context) (sessions int, changed int)
}

// SchedulerParams configure the cart sync scheduler.
type SchedulerParams struct {
	Logger  *logger.Logger
	Metrics *metrics.CartMetrics
	Carts   Resyncer
}

// Scheduler bridges promo window transitions to cart re-price passes. It
// subscribes to the clock and walks every open cart when the regime flips.
type Scheduler struct {
	logg    *logger.Logger
	metrics *metrics.CartMetrics
	carts   Resyncer
}

// NewScheduler builds a scheduler.
func NewScheduler(params SchedulerParams) (*Scheduler, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("resyncer required")
	}
	return &Scheduler{
		logg:    params.Logger,
		metrics: params.Metrics,
		carts:   params.Carts,
	}, nil
}

// Bind subscribes the scheduler to the clock. Notifications run on the
// clock's polling goroutine; the pass itself is synchronous so a transition
// is fully applied before the next poll.
func (s *Scheduler) Bind(clock *promo.Clock) {
	if clock == nil {
		return
	}
	clock.Subscribe(func(active bool) {
		s.Pass(context.Background(), active)
	})
}

// Pass re-prices every open cart and records the outcome.
func (s *Scheduler) Pass(ctx context.Context, active bool) {
	start := time.Now()
	sessions, changed := s.carts.ResyncAll(ctx)
	elapsed := time.Since(start)

	s.metrics.ObserveResync(elapsed)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"promo_active":  active,
		"sessions":      sessions,
		"lines_changed": changed,
		"elapsed_ms":    elapsed.Milliseconds(),
	})
	s.logg.Info(ctx, "cart re-price pass complete")
}
