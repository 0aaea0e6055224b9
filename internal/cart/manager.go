package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dailykart/dailykart-backend/pkg/logger"
	"github.com/dailykart/dailykart-backend/pkg/metrics"
)

const defaultSnapshotTTL = 7 * 24 * time.Hour

// ManagerParams configure the session cart registry.
type ManagerParams struct {
	Logger   *logger.Logger
	Metrics  *metrics.CartMetrics
	Promo    PromoState
	Notifier Notifier
	// Snapshots is optional; without it carts live only in memory.
	Snapshots   SnapshotStore
	SnapshotTTL time.Duration
}

// Manager owns one Store per shopper session. Sessions are created lazily on
// first access, hydrating from a persisted snapshot when one exists.
type Manager struct {
	logg        *logger.Logger
	metrics     *metrics.CartMetrics
	promo       PromoState
	notifier    Notifier
	snapshots   SnapshotStore
	snapshotTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*Store
}

// NewManager builds an empty registry.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Promo == nil {
		return nil, fmt.Errorf("promo state required")
	}
	ttl := params.SnapshotTTL
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &Manager{
		logg:        params.Logger,
		metrics:     params.Metrics,
		promo:       params.Promo,
		notifier:    params.Notifier,
		snapshots:   params.Snapshots,
		snapshotTTL: ttl,
		sessions:    make(map[string]*Store),
	}, nil
}

// Session returns the cart for a session, creating it on first use. A newly
// created cart is hydrated from its snapshot when the snapshot store holds
// one; a snapshot that restores only partially is logged and the valid lines
// are kept.
func (m *Manager) Session(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}

	m.mu.Lock()
	store, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if ok {
		return store, nil
	}

	store, err := NewStore(StoreParams{
		Promo:    m.promo,
		Notifier: m.notifier,
		Metrics:  m.metrics,
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if racing, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		return racing, nil
	}
	m.sessions[sessionID] = store
	m.mu.Unlock()

	m.hydrate(ctx, sessionID, store)
	return store, nil
}

// EndSession drops the cart and its persisted snapshot.
func (m *Manager) EndSession(ctx context.Context, sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if m.snapshots == nil {
		return
	}
	if err := m.snapshots.Delete(ctx, sessionID); err != nil {
		m.logg.Error(m.logg.WithSessionID(ctx, sessionID), "delete cart snapshot", err)
	}
}

// Persist writes the session's cart to the snapshot store.
func (m *Manager) Persist(ctx context.Context, sessionID string) error {
	if m.snapshots == nil {
		return nil
	}
	m.mu.Lock()
	store, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	data, err := store.Snapshot(ctx)
	if err != nil {
		return err
	}
	return m.snapshots.Save(ctx, sessionID, data, m.snapshotTTL)
}

// ResyncAll re-prices every open cart and returns the session count and the
// total number of lines whose price changed.
func (m *Manager) ResyncAll(ctx context.Context) (int, int) {
	m.mu.Lock()
	stores := make([]*Store, 0, len(m.sessions))
	for _, store := range m.sessions {
		stores = append(stores, store)
	}
	m.mu.Unlock()

	changed := 0
	for _, store := range stores {
		changed += store.Resync(ctx)
	}
	return len(stores), changed
}

func (m *Manager) hydrate(ctx context.Context, sessionID string, store *Store) {
	if m.snapshots == nil {
		return
	}
	ctx = m.logg.WithSessionID(ctx, sessionID)
	data, found, err := m.snapshots.Load(ctx, sessionID)
	if err != nil {
		m.logg.Error(ctx, "load cart snapshot", err)
		return
	}
	if !found {
		return
	}
	if err := store.Restore(ctx, data); err != nil {
		m.logg.Warn(ctx, fmt.Sprintf("cart snapshot restored with skipped lines: %v", err))
	}
}
