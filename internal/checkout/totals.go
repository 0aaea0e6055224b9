package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dailykart/dailykart-backend/internal/cart"
	"github.com/dailykart/dailykart-backend/internal/catalog"
	"github.com/dailykart/dailykart-backend/pkg/config"
	"github.com/dailykart/dailykart-backend/pkg/logger"
	"github.com/dailykart/dailykart-backend/pkg/metrics"
)

// LineBreakdown is the tax split of one cart line. All amounts are in minor
// units; Gross is tax-inclusive and always equals Taxable + Tax.
type LineBreakdown struct {
	LineID    cart.LineID   `json:"line_id"`
	Name      string        `json:"name"`
	Quantity  int           `json:"quantity"`
	UnitPrice catalog.Money `json:"unit_price"`
	Gross     catalog.Money `json:"gross"`
	Taxable   catalog.Money `json:"taxable"`
	Tax       catalog.Money `json:"tax"`
	TaxBps    int           `json:"tax_bps"`
}

// Breakdown is a full order quote. The order-level figures are sums of the
// line figures, never an independent computation, so the sheet always foots.
type Breakdown struct {
	Lines []LineBreakdown `json:"lines"`

	Subtotal catalog.Money `json:"subtotal"`
	Taxable  catalog.Money `json:"taxable"`
	Tax      catalog.Money `json:"tax"`
	Discount catalog.Money `json:"discount"`

	StandardDeliveryCharge catalog.Money `json:"standard_delivery_charge"`
	DeliveryCharge         catalog.Money `json:"delivery_charge"`
	DeliveryWaived         bool          `json:"delivery_waived"`

	Total   catalog.Money `json:"total"`
	Clamped bool          `json:"clamped,omitempty"`
}

// CalculatorParams configure the order total calculator.
type CalculatorParams struct {
	Logger   *logger.Logger
	Metrics  *metrics.CartMetrics
	Delivery config.DeliveryConfig
}

// Calculator turns cart lines into an order quote. It is a pure function of
// its inputs: quoting the same lines twice yields identical breakdowns.
type Calculator struct {
	logg     *logger.Logger
	metrics  *metrics.CartMetrics
	delivery config.DeliveryConfig
}

// NewCalculator builds a calculator.
func NewCalculator(params CalculatorParams) (*Calculator, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Calculator{
		logg:     params.Logger,
		metrics:  params.Metrics,
		delivery: params.Delivery,
	}, nil
}

// Quote computes the order breakdown for the given lines and discount. A
// discount larger than the goods value floors the total at zero rather than
// going negative.
func (c *Calculator) Quote(ctx context.Context, lines []cart.Line, discount catalog.Money) (Breakdown, error) {
	if discount < 0 {
		discount = 0
	}

	b := Breakdown{
		Lines:                  make([]LineBreakdown, 0, len(lines)),
		Discount:               discount,
		StandardDeliveryCharge: c.delivery.StandardChargePaise,
		DeliveryCharge:         c.delivery.EffectiveChargePaise(),
		DeliveryWaived:         c.delivery.Waived,
	}

	for _, line := range lines {
		lb, err := breakdownLine(line)
		if err != nil {
			return Breakdown{}, err
		}
		b.Lines = append(b.Lines, lb)
		b.Subtotal += lb.Gross
		b.Taxable += lb.Taxable
		b.Tax += lb.Tax
	}

	total := b.Subtotal - b.Discount + b.DeliveryCharge
	if total < 0 {
		total = 0
		b.Clamped = true
		c.metrics.IncClamp("order_total")
		c.logg.Warn(ctx, fmt.Sprintf("order total floored at zero (discount %d over goods %d)", b.Discount, b.Subtotal))
	}
	b.Total = total
	return b, nil
}

// breakdownLine splits one line's gross amount into taxable value and GST.
// A stored per-unit taxable rate is authoritative; without one the taxable
// share is derived from the gross price and the basis-point rate.
func breakdownLine(line cart.Line) (LineBreakdown, error) {
	if line.Quantity <= 0 {
		return LineBreakdown{}, fmt.Errorf("line %q has non-positive quantity %d", line.ID, line.Quantity)
	}
	if line.UnitPrice < 0 {
		return LineBreakdown{}, fmt.Errorf("line %q has negative unit price %d", line.ID, line.UnitPrice)
	}

	gross := line.GrossTotal()
	var taxable catalog.Money
	if rate := line.Product.TaxableRatePerUnit; rate > 0 {
		taxable = rate * catalog.Money(line.Quantity)
	} else {
		taxable = taxableFromGross(gross, line.Product.TaxBps)
	}
	if taxable > gross {
		taxable = gross
	}

	return LineBreakdown{
		LineID:    line.ID,
		Name:      line.Product.Name,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
		Gross:     gross,
		Taxable:   taxable,
		Tax:       gross - taxable,
		TaxBps:    line.Product.TaxBps,
	}, nil
}

// taxableFromGross reverses a tax-inclusive amount: gross / (1 + bps/10000),
// rounded half up to the nearest minor unit.
func taxableFromGross(gross catalog.Money, bps int) catalog.Money {
	if bps <= 0 {
		return gross
	}
	divisor := decimal.New(1, 0).Add(decimal.New(int64(bps), -4))
	return decimal.NewFromInt(gross).Div(divisor).Round(0).IntPart()
}
