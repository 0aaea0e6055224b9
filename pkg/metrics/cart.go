package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records pricing and cart-consistency activity.
type CartMetrics struct {
	clampEvents      *prometheus.CounterVec
	promoTransitions *prometheus.CounterVec
	resyncDuration   prometheus.Histogram
	linesRepriced    prometheus.Counter
	snapshotOps      *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	clampEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_clamp_events",
		Help: "Quantity clamps applied to cart lines, by reason.",
	}, []string{"reason"})
	promoTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promo_window_transitions",
		Help: "Promo window state transitions, by new state.",
	}, []string{"state"})
	resyncDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_resync_duration_seconds",
		Help:    "Duration of cart re-price passes in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	linesRepriced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_lines_repriced",
		Help: "Cart lines whose stored price changed during a re-price pass.",
	})
	snapshotOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_snapshot_operations",
		Help: "Cart snapshot save/load/delete operations, by operation and outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(clampEvents, promoTransitions, resyncDuration, linesRepriced, snapshotOps)
	return &CartMetrics{
		clampEvents:      clampEvents,
		promoTransitions: promoTransitions,
		resyncDuration:   resyncDuration,
		linesRepriced:    linesRepriced,
		snapshotOps:      snapshotOps,
	}
}

// IncClamp increments the clamp counter for the given reason.
func (c *CartMetrics) IncClamp(reason string) {
	if c == nil || c.clampEvents == nil {
		return
	}
	c.clampEvents.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncPromoTransition increments the transition counter for the new state.
func (c *CartMetrics) IncPromoTransition(state string) {
	if c == nil || c.promoTransitions == nil {
		return
	}
	c.promoTransitions.WithLabelValues(normalizeLabel(state)).Inc()
}

// ObserveResync records the duration of one re-price pass.
func (c *CartMetrics) ObserveResync(duration time.Duration) {
	if c == nil || c.resyncDuration == nil {
		return
	}
	c.resyncDuration.Observe(duration.Seconds())
}

// AddLinesRepriced counts lines whose stored price changed in a pass.
func (c *CartMetrics) AddLinesRepriced(n int) {
	if c == nil || c.linesRepriced == nil || n <= 0 {
		return
	}
	c.linesRepriced.Add(float64(n))
}

// IncSnapshotOp counts a snapshot operation and its outcome.
func (c *CartMetrics) IncSnapshotOp(operation, outcome string) {
	if c == nil || c.snapshotOps == nil {
		return
	}
	c.snapshotOps.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
