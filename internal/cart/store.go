package cart

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dailykart/dailykart-backend/internal/catalog"
	"github.com/dailykart/dailykart-backend/internal/pricing"
	"github.com/dailykart/dailykart-backend/pkg/enums"
	pkgerrors "github.com/dailykart/dailykart-backend/pkg/errors"
	"github.com/dailykart/dailykart-backend/pkg/metrics"
)

// priceEpsilon is the unit-price drift, in minor units, below which an update
// keeps the stored price and only moves the quantity.
const priceEpsilon catalog.Money = 1

const (
	msgInsufficientStock = "Insufficient stock!"
	msgBelowMinimumOrder = "Minimum order quantity is %d"
)

// PromoState exposes the current pricing regime. Satisfied by promo.Clock.
type PromoState interface {
	Active() bool
}

// StoreParams configure a cart line store.
type StoreParams struct {
	Promo    PromoState
	Notifier Notifier
	Metrics  *metrics.CartMetrics
}

// Store holds the lines of a single cart. Every mutation runs under one
// mutex: canonicalization, clamping, pricing, and the {quantity, price}
// write happen in the same critical section, so no reader can observe a
// quantity paired with a stale price.
type Store struct {
	promo    PromoState
	notifier Notifier
	metrics  *metrics.CartMetrics

	mu    sync.Mutex
	lines map[LineID]Line
}

// NewStore builds an empty store.
func NewStore(params StoreParams) (*Store, error) {
	if params.Promo == nil {
		return nil, fmt.Errorf("promo state required")
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = NoopNotifier()
	}
	return &Store{
		promo:    params.Promo,
		notifier: notifier,
		metrics:  params.Metrics,
		lines:    make(map[LineID]Line),
	}, nil
}

// Add inserts or updates the line for the given product and variant
// selection. With additive set, qty is added to the existing quantity;
// otherwise it replaces it. The resulting quantity is clamped to stock and
// raised to the minimum order quantity, with an advisory for each clamp. A
// final quantity of zero removes the line. The returned line reflects the
// state after the write; a zero-value line means the line was removed.
func (s *Store) Add(ctx context.Context, p *catalog.Product, selection map[string]string, qty int, additive bool) (Line, error) {
	id, err := NewLineID(p, selection)
	if err != nil {
		return Line{}, err
	}

	s.mu.Lock()
	line, advisories := s.applyLocked(p, selection, id, qty, additive)
	s.mu.Unlock()

	s.emit(ctx, advisories)
	return line, nil
}

// SetQuantity replaces the quantity of an existing line, repricing it under
// the same critical section. Legacy line ids are resolved to their canonical
// form before lookup. Setting zero removes the line.
func (s *Store) SetQuantity(ctx context.Context, id LineID, qty int) (Line, error) {
	s.mu.Lock()
	existing, ok := s.resolveLocked(id)
	if !ok {
		s.mu.Unlock()
		return Line{}, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("cart line %q not found", id))
	}
	line, advisories := s.applyLocked(&existing.Product, existing.Variant, existing.ID, qty, false)
	s.mu.Unlock()

	s.emit(ctx, advisories)
	return line, nil
}

// Remove deletes a line. Removing an absent line is a no-op.
func (s *Store) Remove(ctx context.Context, id LineID) {
	s.mu.Lock()
	if existing, ok := s.resolveLocked(id); ok {
		delete(s.lines, existing.ID)
	}
	s.mu.Unlock()
}

// Lines returns the cart contents sorted by line id. Prices are re-resolved
// against the current regime before the copy is taken, so a read after a
// missed promo notification still returns consistent prices.
func (s *Store) Lines(ctx context.Context) []Line {
	active := s.promo.Active()

	s.mu.Lock()
	s.repriceLocked(active)
	out := make([]Line, 0, len(s.lines))
	for _, line := range s.lines {
		out = append(out, line)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = make(map[LineID]Line)
	s.mu.Unlock()
}

// Resync re-resolves every line against the current regime and returns the
// number of lines whose price changed.
func (s *Store) Resync(ctx context.Context) int {
	active := s.promo.Active()

	s.mu.Lock()
	changed := s.repriceLocked(active)
	s.mu.Unlock()

	s.metrics.AddLinesRepriced(changed)
	return changed
}

// applyLocked is the single write path shared by Add and SetQuantity. The
// caller holds the mutex. It merges legacy ids, computes the target quantity,
// runs the clamp ladder, resolves the price, and writes quantity and price
// as one snapshot.
func (s *Store) applyLocked(p *catalog.Product, selection map[string]string, id LineID, qty int, additive bool) (Line, []Advisory) {
	for _, legacy := range legacyLineIDs(p, selection) {
		if legacy == id {
			continue
		}
		if stale, ok := s.lines[legacy]; ok {
			delete(s.lines, legacy)
			if existing, dup := s.lines[id]; dup {
				existing.Quantity += stale.Quantity
				s.lines[id] = existing
			} else {
				stale.ID = id
				s.lines[id] = stale
			}
		}
	}

	existing, ok := s.lines[id]
	total := qty
	if additive && ok {
		total = existing.Quantity + qty
	}
	if total < 0 {
		total = 0
	}

	var advisories []Advisory
	ceiling := p.StockQty
	moq := p.MOQ()

	if total > 0 && total < moq {
		total = moq
		advisories = append(advisories, Advisory{
			Type:    enums.AdvisoryTypeBelowMinimumOrder,
			LineID:  id,
			Message: fmt.Sprintf(msgBelowMinimumOrder, moq),
		})
		s.metrics.IncClamp("min_order")
	}
	// Stock wins when the minimum order quantity exceeds what is on hand.
	if total > ceiling {
		total = ceiling
		advisories = append(advisories, Advisory{
			Type:    enums.AdvisoryTypeStockInsufficient,
			LineID:  id,
			Message: msgInsufficientStock,
		})
		s.metrics.IncClamp("stock")
	}

	if total <= 0 {
		delete(s.lines, id)
		return Line{}, advisories
	}

	price := pricing.Resolve(p, total, s.promo.Active())

	if ok && abs(price-existing.UnitPrice) <= priceEpsilon {
		existing.Quantity = total
		existing.Product = *p
		existing.Variant = selection
		existing.StockCeiling = ceiling
		existing.MinOrderQty = moq
		s.lines[id] = existing
		return existing, advisories
	}

	line := Line{
		ID:           id,
		Product:      *p,
		Variant:      selection,
		Quantity:     total,
		UnitPrice:    price,
		StockCeiling: ceiling,
		MinOrderQty:  moq,
	}
	s.lines[id] = line
	return line, advisories
}

// resolveLocked finds a line by canonical or legacy id.
func (s *Store) resolveLocked(id LineID) (Line, bool) {
	if line, ok := s.lines[id]; ok {
		return line, true
	}
	for _, line := range s.lines {
		for _, legacy := range legacyLineIDs(&line.Product, line.Variant) {
			if legacy == id {
				return line, true
			}
		}
	}
	return Line{}, false
}

func (s *Store) repriceLocked(active bool) int {
	changed := 0
	for id, line := range s.lines {
		price := pricing.Resolve(&line.Product, line.Quantity, active)
		if price == line.UnitPrice {
			continue
		}
		line.UnitPrice = price
		s.lines[id] = line
		changed++
	}
	return changed
}

func (s *Store) emit(ctx context.Context, advisories []Advisory) {
	for _, advisory := range advisories {
		s.notifier.Notify(ctx, advisory)
	}
}

func abs(m catalog.Money) catalog.Money {
	if m < 0 {
		return -m
	}
	return m
}
