package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCartMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *CartMetrics
	m.IncClamp("stock_insufficient")
	m.IncPromoTransition("active")
	m.ObserveResync(time.Second)
	m.AddLinesRepriced(3)
	m.IncSnapshotOp("save", "ok")

	empty := NewCartMetrics(nil)
	empty.IncClamp("below_minimum_order")
	empty.ObserveResync(time.Millisecond)
}

func TestCartMetricsRegisters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)
	m.IncClamp("stock_insufficient")
	m.IncPromoTransition("inactive")
	m.ObserveResync(25 * time.Millisecond)
	m.AddLinesRepriced(2)
	m.IncSnapshotOp("load", "miss")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 5 {
		t.Fatalf("expected 5 metric families, got %d", len(families))
	}
}
