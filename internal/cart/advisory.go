package cart

import (
	"context"
	"sync"

	"github.com/dailykart/dailykart-backend/pkg/enums"
	"github.com/dailykart/dailykart-backend/pkg/logger"
)

// Advisory is a human-readable clamp notice handed to the notification
// collaborator. Clamps are corrections, not failures: the cart stays
// consistent and the shopper is told why the quantity moved.
type Advisory struct {
	Type    enums.AdvisoryType `json:"type"`
	LineID  LineID             `json:"line_id"`
	Message string             `json:"message"`
}

// Notifier receives advisories emitted on clamp events.
type Notifier interface {
	Notify(ctx context.Context, advisory Advisory)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, advisory Advisory)

func (fn NotifierFunc) Notify(ctx context.Context, advisory Advisory) {
	fn(ctx, advisory)
}

// NoopNotifier returns a notifier that discards advisories.
func NoopNotifier() Notifier {
	return NotifierFunc(func(context.Context, Advisory) {})
}

// AdvisoryCollector accumulates the advisories raised while serving one
// request so the HTTP layer can return them alongside the cart.
type AdvisoryCollector struct {
	mu         sync.Mutex
	advisories []Advisory
}

func (c *AdvisoryCollector) add(advisory Advisory) {
	c.mu.Lock()
	c.advisories = append(c.advisories, advisory)
	c.mu.Unlock()
}

// Advisories returns the collected advisories in emission order.
func (c *AdvisoryCollector) Advisories() []Advisory {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Advisory, len(c.advisories))
	copy(out, c.advisories)
	return out
}

type collectorKey struct{}

// WithAdvisoryCollector attaches a fresh collector to the context.
func WithAdvisoryCollector(ctx context.Context) (context.Context, *AdvisoryCollector) {
	collector := &AdvisoryCollector{}
	return context.WithValue(ctx, collectorKey{}, collector), collector
}

// CollectingNotifier copies each advisory into the context's collector when
// one is present, then forwards to the wrapped notifier.
func CollectingNotifier(next Notifier) Notifier {
	if next == nil {
		next = NoopNotifier()
	}
	return NotifierFunc(func(ctx context.Context, advisory Advisory) {
		if collector, ok := ctx.Value(collectorKey{}).(*AdvisoryCollector); ok {
			collector.add(advisory)
		}
		next.Notify(ctx, advisory)
	})
}

// LogNotifier writes advisories to the structured log. It stands in until a
// push channel to the storefront toast service is wired.
func LogNotifier(logg *logger.Logger) Notifier {
	return NotifierFunc(func(ctx context.Context, advisory Advisory) {
		if logg == nil {
			return
		}
		ctx = logg.WithFields(ctx, map[string]any{
			"advisory": advisory.Type.String(),
			"line_id":  string(advisory.LineID),
		})
		logg.Info(ctx, advisory.Message)
	})
}
