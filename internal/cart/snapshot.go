package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/dailykart/dailykart-backend/pkg/metrics"
	pkgredis "github.com/dailykart/dailykart-backend/pkg/redis"
)

// Snapshot serializes the cart lines for persistence. The bytes are stable
// across calls for an unchanged cart because lines are emitted sorted.
func (s *Store) Snapshot(ctx context.Context) ([]byte, error) {
	lines := s.Lines(ctx)
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("marshal cart snapshot: %w", err)
	}
	return data, nil
}

// Restore replaces the cart contents with a previously persisted snapshot.
// Lines that fail validation are skipped and reported via the returned error;
// the remaining lines are still restored. Legacy line ids are canonicalized
// and duplicates merged, then every line is re-priced against the current
// regime, so a snapshot taken in one regime restores cleanly in the other.
func (s *Store) Restore(ctx context.Context, data []byte) error {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("unmarshal cart snapshot: %w", err)
	}

	var errs error
	s.mu.Lock()
	s.lines = make(map[LineID]Line, len(lines))
	s.mu.Unlock()

	for _, line := range lines {
		if line.Product.ID == "" {
			errs = multierr.Append(errs, fmt.Errorf("snapshot line %q has no product", line.ID))
			continue
		}
		if line.Quantity <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("snapshot line %q has quantity %d", line.ID, line.Quantity))
			continue
		}
		product := line.Product
		if _, err := s.Add(ctx, &product, line.Variant, line.Quantity, true); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("restore line %q: %w", line.ID, err))
		}
	}
	return errs
}

// SnapshotStore persists serialized carts keyed by session id.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, data []byte, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) ([]byte, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisSnapshotStore keeps cart snapshots in redis with a TTL, so abandoned
// carts expire on their own.
type RedisSnapshotStore struct {
	client  *pkgredis.Client
	metrics *metrics.CartMetrics
}

// NewRedisSnapshotStore wraps a redis client as a SnapshotStore.
func NewRedisSnapshotStore(client *pkgredis.Client, m *metrics.CartMetrics) (*RedisSnapshotStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisSnapshotStore{client: client, metrics: m}, nil
}

func (r *RedisSnapshotStore) Save(ctx context.Context, sessionID string, data []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, r.client.CartSnapshotKey(sessionID), data, ttl)
	r.metrics.IncSnapshotOp("save", outcome(err))
	if err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

func (r *RedisSnapshotStore) Load(ctx context.Context, sessionID string) ([]byte, bool, error) {
	raw, err := r.client.Get(ctx, r.client.CartSnapshotKey(sessionID))
	if errors.Is(err, pkgredis.Nil) {
		r.metrics.IncSnapshotOp("load", "miss")
		return nil, false, nil
	}
	r.metrics.IncSnapshotOp("load", outcome(err))
	if err != nil {
		return nil, false, fmt.Errorf("load cart snapshot: %w", err)
	}
	return []byte(raw), true, nil
}

func (r *RedisSnapshotStore) Delete(ctx context.Context, sessionID string) error {
	err := r.client.Del(ctx, r.client.CartSnapshotKey(sessionID))
	r.metrics.IncSnapshotOp("delete", outcome(err))
	if err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
