package checkout

import (
	"context"
	"io"
	"reflect"
	"testing"

	"github.com/dailykart/dailykart-backend/internal/cart"
	"github.com/dailykart/dailykart-backend/internal/catalog"
	"github.com/dailykart/dailykart-backend/pkg/config"
	"github.com/dailykart/dailykart-backend/pkg/logger"
)

func testCalculator(t *testing.T, delivery config.DeliveryConfig) *Calculator {
	t.Helper()
	calc, err := NewCalculator(CalculatorParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Delivery: delivery,
	})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	return calc
}

func attaLine(qty int, unitPrice catalog.Money) cart.Line {
	return cart.Line{
		ID: "atta-5kg",
		Product: catalog.Product{
			ID:     "atta-5kg",
			Name:   "Whole Wheat Atta 5kg",
			TaxBps: 500,
		},
		Quantity:  qty,
		UnitPrice: unitPrice,
	}
}

func TestQuoteSplitsGSTFromInclusivePrice(t *testing.T) {
	t.Parallel()

	calc := testCalculator(t, config.DeliveryConfig{StandardChargePaise: 2500, Waived: true})

	b, err := calc.Quote(context.Background(), []cart.Line{attaLine(1, 38000)}, 0)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	line := b.Lines[0]
	if line.Taxable != 36190 {
		t.Fatalf("expected taxable 36190, got %d", line.Taxable)
	}
	if line.Tax != 1810 {
		t.Fatalf("expected tax 1810, got %d", line.Tax)
	}
	if line.Gross != 38000 || line.Taxable+line.Tax != line.Gross {
		t.Fatalf("breakdown does not foot: %+v", line)
	}
	if b.Total != 38000 {
		t.Fatalf("waived delivery should leave total at 38000, got %d", b.Total)
	}
	if b.StandardDeliveryCharge != 2500 || b.DeliveryCharge != 0 || !b.DeliveryWaived {
		t.Fatalf("unexpected delivery fields %+v", b)
	}
}

func TestQuoteUsesStoredTaxableRateWhenPresent(t *testing.T) {
	t.Parallel()

	calc := testCalculator(t, config.DeliveryConfig{})
	line := attaLine(4, 38000)
	line.Product.TaxableRatePerUnit = 36190

	b, err := calc.Quote(context.Background(), []cart.Line{line}, 0)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if got := b.Lines[0].Taxable; got != 36190*4 {
		t.Fatalf("stored rate should be authoritative, got %d", got)
	}
	if b.Lines[0].Tax != 38000*4-36190*4 {
		t.Fatalf("unexpected tax %d", b.Lines[0].Tax)
	}
}

func TestQuoteSumsLinesAndAppliesDiscountOnce(t *testing.T) {
	t.Parallel()

	calc := testCalculator(t, config.DeliveryConfig{StandardChargePaise: 2500, Waived: false})
	lines := []cart.Line{
		attaLine(2, 38000),
		{
			ID:        "rice-25kg",
			Product:   catalog.Product{ID: "rice-25kg", Name: "Rice 25kg", TaxBps: 500},
			Quantity:  1,
			UnitPrice: 120000,
		},
	}

	b, err := calc.Quote(context.Background(), lines, 5000)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if b.Subtotal != 76000+120000 {
		t.Fatalf("unexpected subtotal %d", b.Subtotal)
	}
	if b.Taxable+b.Tax != b.Subtotal {
		t.Fatalf("order figures must foot: %+v", b)
	}
	if want := b.Subtotal - 5000 + 2500; b.Total != want {
		t.Fatalf("expected total %d, got %d", want, b.Total)
	}
}

func TestQuoteFloorsTotalAtZero(t *testing.T) {
	t.Parallel()

	calc := testCalculator(t, config.DeliveryConfig{})
	b, err := calc.Quote(context.Background(), []cart.Line{attaLine(1, 38000)}, 1000000)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if b.Total != 0 || !b.Clamped {
		t.Fatalf("oversized discount should floor total at zero, got %+v", b)
	}
}

func TestQuoteIsDeterministic(t *testing.T) {
	t.Parallel()

	calc := testCalculator(t, config.DeliveryConfig{StandardChargePaise: 2500, Waived: true})
	lines := []cart.Line{attaLine(17, 37000)}

	first, err := calc.Quote(context.Background(), lines, 200)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	second, err := calc.Quote(context.Background(), lines, 200)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated quotes differ:\n%+v\n%+v", first, second)
	}
}

func TestQuoteRejectsCorruptLines(t *testing.T) {
	t.Parallel()

	calc := testCalculator(t, config.DeliveryConfig{})
	if _, err := calc.Quote(context.Background(), []cart.Line{attaLine(0, 38000)}, 0); err == nil {
		t.Fatal("zero quantity line should be rejected")
	}
	if _, err := calc.Quote(context.Background(), []cart.Line{attaLine(1, -5)}, 0); err == nil {
		t.Fatal("negative price line should be rejected")
	}
}

func TestQuoteZeroRateLineCarriesNoTax(t *testing.T) {
	t.Parallel()

	calc := testCalculator(t, config.DeliveryConfig{})
	line := attaLine(3, 10000)
	line.Product.TaxBps = 0

	b, err := calc.Quote(context.Background(), []cart.Line{line}, 0)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if b.Lines[0].Tax != 0 || b.Lines[0].Taxable != 30000 {
		t.Fatalf("zero-rated line should be fully taxable value, got %+v", b.Lines[0])
	}
}
