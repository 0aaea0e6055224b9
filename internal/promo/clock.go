package promo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dailykart/dailykart-backend/pkg/config"
	"github.com/dailykart/dailykart-backend/pkg/logger"
	"github.com/dailykart/dailykart-backend/pkg/metrics"
)

const defaultPollInterval = 60 * time.Second

// Subscriber is invoked after every promo window transition with the new state.
// Callbacks run on the clock's polling goroutine and should return quickly.
type Subscriber func(active bool)

// ClockParams configure the promo window clock.
type ClockParams struct {
	Logger  *logger.Logger
	Metrics *metrics.CartMetrics
	Window  config.PromoWindowConfig
	// Now overrides the time source; tests use it to drive transitions.
	Now func() time.Time
}

// Clock owns the promo-active flag. It recomputes the state from the current
// hour on a fixed poll cadence and notifies subscribers on each transition.
// Boundary crossings between polls surface on the next tick, so staleness is
// bounded by the poll interval.
type Clock struct {
	logg      *logger.Logger
	metrics   *metrics.CartMetrics
	startHour int
	endHour   int
	interval  time.Duration
	now       func() time.Time

	mu     sync.Mutex
	active bool
	subs   []Subscriber
}

// NewClock builds the clock and seeds its state from the time source.
func NewClock(params ClockParams) (*Clock, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Window.StartHour < 0 || params.Window.StartHour > 23 {
		return nil, fmt.Errorf("start hour out of range: %d", params.Window.StartHour)
	}
	if params.Window.EndHour < 0 || params.Window.EndHour > 23 {
		return nil, fmt.Errorf("end hour out of range: %d", params.Window.EndHour)
	}
	interval := params.Window.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	c := &Clock{
		logg:      params.Logger,
		metrics:   params.Metrics,
		startHour: params.Window.StartHour,
		endHour:   params.Window.EndHour,
		interval:  interval,
		now:       now,
	}
	c.active = c.activeAt(now().Hour())
	return c, nil
}

// Active returns the current promo window state.
func (c *Clock) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Subscribe registers a callback for future transitions.
func (c *Clock) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Run polls until the context is canceled. The cart session owning the clock
// cancels the context when it ends, which stops all further notifications.
func (c *Clock) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logg.Info(ctx, "promo clock context canceled")
			return ctx.Err()
		case <-ticker.C:
			c.Evaluate(ctx)
		}
	}
}

// Evaluate recomputes the state from the time source, notifying subscribers
// when it flips. It returns the state after evaluation.
func (c *Clock) Evaluate(ctx context.Context) bool {
	hour := c.now().Hour()
	next := c.activeAt(hour)

	c.mu.Lock()
	changed := next != c.active
	c.active = next
	subs := make([]Subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	if !changed {
		return next
	}

	state := "inactive"
	if next {
		state = "active"
	}
	c.metrics.IncPromoTransition(state)
	evalCtx := c.logg.WithFields(ctx, map[string]any{"hour": hour, "promo_active": next})
	c.logg.Info(evalCtx, "promo window transition")

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// activeAt applies the window to an hour of day. A start hour greater than
// the end hour means the window wraps midnight.
func (c *Clock) activeAt(hour int) bool {
	if c.startHour == c.endHour {
		return false
	}
	if c.startHour > c.endHour {
		return hour >= c.startHour || hour < c.endHour
	}
	return hour >= c.startHour && hour < c.endHour
}
