package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/dailykart/dailykart-backend/internal/catalog"
	pkgerrors "github.com/dailykart/dailykart-backend/pkg/errors"
)

type stubPromo struct {
	mu     sync.Mutex
	active bool
}

func (s *stubPromo) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *stubPromo) set(active bool) {
	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
}

type recordingNotifier struct {
	mu         sync.Mutex
	advisories []Advisory
}

func (r *recordingNotifier) Notify(_ context.Context, advisory Advisory) {
	r.mu.Lock()
	r.advisories = append(r.advisories, advisory)
	r.mu.Unlock()
}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.advisories))
	for i, a := range r.advisories {
		out[i] = a.Message
	}
	return out
}

func attaProduct() *catalog.Product {
	return &catalog.Product{
		ID:        "atta-5kg",
		Name:      "Whole Wheat Atta 5kg",
		Unit:      "bag",
		StockQty:  200,
		BasePrice: 38000,
		TaxBps:    500,
		Tiers: []catalog.VolumeTier{
			{MinQty: 12, UnitPrice: 37000},
			{MinQty: 48, UnitPrice: 35800},
		},
		PromoTiers:     []catalog.VolumeTier{{MinQty: 12, UnitPrice: 34000}},
		PromoUnitPrice: 35000,
	}
}

func riceProduct() *catalog.Product {
	return &catalog.Product{
		ID:          "rice-25kg",
		Name:        "Sona Masoori Rice 25kg",
		Unit:        "sack",
		StockQty:    8,
		MinOrderQty: 5,
		BasePrice:   120000,
		TaxBps:      500,
	}
}

func teaProduct() *catalog.Product {
	return &catalog.Product{
		ID:        "tea-premium",
		Name:      "Premium Leaf Tea",
		Unit:      "box",
		StockQty:  50,
		BasePrice: 45000,
		TaxBps:    500,
		VariantAxes: []catalog.VariantAxis{
			{Name: "size", Options: []string{"250g", "500g"}},
			{Name: "grade", Options: []string{"classic", "gold"}},
		},
	}
}

func testStore(t *testing.T) (*Store, *stubPromo, *recordingNotifier) {
	t.Helper()
	promo := &stubPromo{}
	notifier := &recordingNotifier{}
	store, err := NewStore(StoreParams{Promo: promo, Notifier: notifier})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, promo, notifier
}

func TestAddRepricesWhenCrossingTierBoundary(t *testing.T) {
	t.Parallel()

	store, _, _ := testStore(t)
	ctx := context.Background()

	line, err := store.Add(ctx, attaProduct(), nil, 10, true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if line.Quantity != 10 || line.UnitPrice != 38000 {
		t.Fatalf("expected 10 @ 38000, got %d @ %d", line.Quantity, line.UnitPrice)
	}

	line, err = store.Add(ctx, attaProduct(), nil, 7, true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if line.Quantity != 17 || line.UnitPrice != 37000 {
		t.Fatalf("expected 17 @ 37000, got %d @ %d", line.Quantity, line.UnitPrice)
	}
	if store.Len() != 1 {
		t.Fatalf("expected a single line, got %d", store.Len())
	}
}

func TestAddClampsToStockWithAdvisory(t *testing.T) {
	t.Parallel()

	store, _, notifier := testStore(t)
	ctx := context.Background()

	p := attaProduct()
	p.StockQty = 30
	line, err := store.Add(ctx, p, nil, 45, false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if line.Quantity != 30 {
		t.Fatalf("expected clamp to 30, got %d", line.Quantity)
	}
	if line.UnitPrice != 37000 {
		t.Fatalf("price should resolve for the clamped quantity, got %d", line.UnitPrice)
	}
	msgs := notifier.messages()
	if len(msgs) != 1 || msgs[0] != "Insufficient stock!" {
		t.Fatalf("expected stock advisory, got %v", msgs)
	}
}

func TestAddRaisesToMinimumOrderWithAdvisory(t *testing.T) {
	t.Parallel()

	store, _, notifier := testStore(t)
	ctx := context.Background()

	line, err := store.Add(ctx, riceProduct(), nil, 2, false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if line.Quantity != 5 {
		t.Fatalf("expected quantity raised to MOQ 5, got %d", line.Quantity)
	}
	msgs := notifier.messages()
	if len(msgs) != 1 || msgs[0] != "Minimum order quantity is 5" {
		t.Fatalf("expected minimum order advisory, got %v", msgs)
	}
}

func TestStockBeatsMinimumOrderWhenBothClamp(t *testing.T) {
	t.Parallel()

	store, _, notifier := testStore(t)
	ctx := context.Background()

	p := riceProduct()
	p.MinOrderQty = 10
	p.StockQty = 4
	line, err := store.Add(ctx, p, nil, 1, false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if line.Quantity != 4 {
		t.Fatalf("stock ceiling should win, got quantity %d", line.Quantity)
	}
	if len(notifier.messages()) != 2 {
		t.Fatalf("expected both advisories, got %v", notifier.messages())
	}
}

func TestAddZeroStockRemovesLine(t *testing.T) {
	t.Parallel()

	store, _, _ := testStore(t)
	ctx := context.Background()

	if _, err := store.Add(ctx, attaProduct(), nil, 5, false); err != nil {
		t.Fatalf("add: %v", err)
	}

	p := attaProduct()
	p.StockQty = 0
	line, err := store.Add(ctx, p, nil, 5, false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if line.ID != "" || store.Len() != 0 {
		t.Fatalf("sold-out product should remove the line, got %+v", line)
	}
}

func TestVariantSelectionKeysOneLinePerCombination(t *testing.T) {
	t.Parallel()

	store, _, _ := testStore(t)
	ctx := context.Background()

	gold := map[string]string{"size": "500g", "grade": "gold"}
	classic := map[string]string{"size": "500g", "grade": "classic"}

	if _, err := store.Add(ctx, teaProduct(), gold, 2, true); err != nil {
		t.Fatalf("add gold: %v", err)
	}
	if _, err := store.Add(ctx, teaProduct(), classic, 1, true); err != nil {
		t.Fatalf("add classic: %v", err)
	}
	line, err := store.Add(ctx, teaProduct(), gold, 3, true)
	if err != nil {
		t.Fatalf("add gold again: %v", err)
	}
	if line.Quantity != 5 {
		t.Fatalf("same combination should merge, got quantity %d", line.Quantity)
	}
	if store.Len() != 2 {
		t.Fatalf("expected two lines, got %d", store.Len())
	}
}

func TestIncompleteVariantSelectionRejectedWithoutSideEffects(t *testing.T) {
	t.Parallel()

	store, _, _ := testStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, teaProduct(), map[string]string{"size": "500g"}, 2, true)
	if err == nil {
		t.Fatal("expected a validation error for a missing axis")
	}
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("rejected add must not create a line")
	}
}

func TestLegacyLineIDMergesIntoCanonical(t *testing.T) {
	t.Parallel()

	store, _, _ := testStore(t)
	ctx := context.Background()

	// Seed a line under the declaration-order id older clients sent.
	store.mu.Lock()
	legacy := LineID("tea-premium#size=500g,grade=gold")
	store.lines[legacy] = Line{
		ID:        legacy,
		Product:   *teaProduct(),
		Variant:   map[string]string{"size": "500g", "grade": "gold"},
		Quantity:  2,
		UnitPrice: 45000,
	}
	store.mu.Unlock()

	line, err := store.Add(ctx, teaProduct(), map[string]string{"size": "500g", "grade": "gold"}, 3, true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if line.ID != "tea-premium#grade=gold,size=500g" {
		t.Fatalf("unexpected canonical id %q", line.ID)
	}
	if line.Quantity != 5 {
		t.Fatalf("legacy quantity should merge before the add, got %d", line.Quantity)
	}
	if store.Len() != 1 {
		t.Fatalf("legacy line should be gone, got %d lines", store.Len())
	}
}

func TestSetQuantityResolvesLegacyID(t *testing.T) {
	t.Parallel()

	store, _, _ := testStore(t)
	ctx := context.Background()

	if _, err := store.Add(ctx, attaProduct(), nil, 5, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	line, err := store.SetQuantity(ctx, LineID("atta-5kg#"), 20)
	if err != nil {
		t.Fatalf("set quantity via legacy id: %v", err)
	}
	if line.ID != "atta-5kg" || line.Quantity != 20 || line.UnitPrice != 37000 {
		t.Fatalf("unexpected line %+v", line)
	}
}

func TestSetQuantityZeroRemovesAndRecreationIsClean(t *testing.T) {
	t.Parallel()

	store, _, _ := testStore(t)
	ctx := context.Background()

	if _, err := store.Add(ctx, attaProduct(), nil, 48, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.SetQuantity(ctx, "atta-5kg", 0); err != nil {
		t.Fatalf("set zero: %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("quantity zero should remove the line")
	}

	line, err := store.Add(ctx, attaProduct(), nil, 2, true)
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if line.Quantity != 2 || line.UnitPrice != 38000 {
		t.Fatalf("recreated line should carry fresh state, got %d @ %d", line.Quantity, line.UnitPrice)
	}
}

func TestSetQuantityUnknownLine(t *testing.T) {
	t.Parallel()

	store, _, _ := testStore(t)
	_, err := store.SetQuantity(context.Background(), "ghost", 3)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSmallPriceDriftKeepsStoredPrice(t *testing.T) {
	t.Parallel()

	store, _, _ := testStore(t)
	ctx := context.Background()

	if _, err := store.Add(ctx, attaProduct(), nil, 5, false); err != nil {
		t.Fatalf("add: %v", err)
	}

	p := attaProduct()
	p.BasePrice = 38001
	line, err := store.Add(ctx, p, nil, 1, true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if line.Quantity != 6 {
		t.Fatalf("expected quantity 6, got %d", line.Quantity)
	}
	if line.UnitPrice != 38000 {
		t.Fatalf("drift within epsilon should keep the stored price, got %d", line.UnitPrice)
	}

	p.BasePrice = 38500
	line, err = store.Add(ctx, p, nil, 1, true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if line.UnitPrice != 38500 {
		t.Fatalf("drift beyond epsilon should replace the price, got %d", line.UnitPrice)
	}
}

func TestResyncFollowsPromoRegime(t *testing.T) {
	t.Parallel()

	store, promo, _ := testStore(t)
	ctx := context.Background()

	if _, err := store.Add(ctx, attaProduct(), nil, 17, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.Add(ctx, riceProduct(), nil, 5, false); err != nil {
		t.Fatalf("add: %v", err)
	}

	promo.set(true)
	if changed := store.Resync(ctx); changed != 1 {
		t.Fatalf("only the tiered product has promo pricing, expected 1 change, got %d", changed)
	}
	for _, line := range store.Lines(ctx) {
		switch line.ID {
		case "atta-5kg":
			if line.UnitPrice != 34000 {
				t.Fatalf("promo tier price expected, got %d", line.UnitPrice)
			}
		case "rice-25kg":
			if line.UnitPrice != 120000 {
				t.Fatalf("rice has no promo price, got %d", line.UnitPrice)
			}
		}
	}

	promo.set(false)
	store.Resync(ctx)
	for _, line := range store.Lines(ctx) {
		if line.ID == "atta-5kg" && line.UnitPrice != 37000 {
			t.Fatalf("regular tier price expected after promo end, got %d", line.UnitPrice)
		}
	}
}

func TestResyncMovesSingleUnitLineToPromoPrice(t *testing.T) {
	t.Parallel()

	store, promo, _ := testStore(t)
	ctx := context.Background()

	line, err := store.Add(ctx, attaProduct(), nil, 3, false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if line.UnitPrice != 38000 {
		t.Fatalf("expected base price before the window opens, got %d", line.UnitPrice)
	}

	promo.set(true)
	if changed := store.Resync(ctx); changed != 1 {
		t.Fatalf("expected 1 repriced line, got %d", changed)
	}
	lines := store.Lines(ctx)
	if lines[0].Quantity != 3 || lines[0].UnitPrice != 35000 {
		t.Fatalf("expected {3, 35000}, got {%d, %d}", lines[0].Quantity, lines[0].UnitPrice)
	}
}

func TestLinesSelfHealsAfterMissedTransition(t *testing.T) {
	t.Parallel()

	store, promo, _ := testStore(t)
	ctx := context.Background()

	if _, err := store.Add(ctx, attaProduct(), nil, 17, false); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Flip the regime without a scheduler pass; a plain read must still
	// return the promo price.
	promo.set(true)
	lines := store.Lines(ctx)
	if len(lines) != 1 || lines[0].UnitPrice != 34000 {
		t.Fatalf("read should re-resolve against the live regime, got %+v", lines)
	}
}

func TestConcurrentAddsStayConsistent(t *testing.T) {
	t.Parallel()

	store, _, _ := testStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Add(ctx, attaProduct(), nil, 1, true); err != nil {
				t.Errorf("add: %v", err)
			}
		}()
	}
	wg.Wait()

	lines := store.Lines(ctx)
	if len(lines) != 1 {
		t.Fatalf("expected one merged line, got %d", len(lines))
	}
	if lines[0].Quantity != 50 {
		t.Fatalf("expected quantity 50, got %d", lines[0].Quantity)
	}
	if lines[0].UnitPrice != 35800 {
		t.Fatalf("quantity 50 should sit on the 48+ tier, got %d", lines[0].UnitPrice)
	}
}
