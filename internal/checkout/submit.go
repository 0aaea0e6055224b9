package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dailykart/dailykart-backend/internal/catalog"
	pkgerrors "github.com/dailykart/dailykart-backend/pkg/errors"
	"github.com/dailykart/dailykart-backend/pkg/logger"
	pkgredis "github.com/dailykart/dailykart-backend/pkg/redis"
)

// Order is the record produced by a successful submission.
type Order struct {
	ID        string        `json:"id"`
	Number    int64         `json:"number"`
	SessionID string        `json:"session_id"`
	Breakdown Breakdown     `json:"breakdown"`
	Total     catalog.Money `json:"total"`
	CreatedAt time.Time     `json:"created_at"`
}

// Submitter accepts a quoted order.
type Submitter interface {
	Submit(ctx context.Context, sessionID string, b Breakdown) (Order, error)
}

// SubmitterParams configure the redis-backed submitter.
type SubmitterParams struct {
	Logger *logger.Logger
	Redis  *pkgredis.Client
	// OrderTTL bounds how long a submitted order record is retained here
	// before the fulfilment pipeline owns it. Zero keeps it indefinitely.
	OrderTTL time.Duration
	Now      func() time.Time
}

// RedisSubmitter mints sequential order numbers from a redis counter and
// stores the order record for the fulfilment pipeline to pick up.
type RedisSubmitter struct {
	logg     *logger.Logger
	client   *pkgredis.Client
	orderTTL time.Duration
	now      func() time.Time
}

// NewRedisSubmitter builds a submitter.
func NewRedisSubmitter(params SubmitterParams) (*RedisSubmitter, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Redis == nil {
		return nil, fmt.Errorf("redis client required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &RedisSubmitter{
		logg:     params.Logger,
		client:   params.Redis,
		orderTTL: params.OrderTTL,
		now:      now,
	}, nil
}

// Submit rejects empty quotes, assigns the order an id and a sequential
// number, and persists the record.
func (s *RedisSubmitter) Submit(ctx context.Context, sessionID string, b Breakdown) (Order, error) {
	if len(b.Lines) == 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "cannot submit an empty cart")
	}

	number, err := s.client.Incr(ctx, s.client.CounterKey("orders"))
	if err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
	}

	order := Order{
		ID:        uuid.NewString(),
		Number:    number,
		SessionID: sessionID,
		Breakdown: b,
		Total:     b.Total,
		CreatedAt: s.now().UTC(),
	}
	data, err := json.Marshal(order)
	if err != nil {
		return Order{}, fmt.Errorf("marshal order: %w", err)
	}
	if err := s.client.Set(ctx, s.client.OrderKey(order.ID), data, s.orderTTL); err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store order")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":     order.ID,
		"order_number": order.Number,
		"total":        order.Total,
	})
	s.logg.Info(ctx, "order submitted")
	return order, nil
}
