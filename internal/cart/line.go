package cart

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dailykart/dailykart-backend/internal/catalog"
	pkgerrors "github.com/dailykart/dailykart-backend/pkg/errors"
)

// variantSeparator splits the product id from the variant signature in a LineID.
const variantSeparator = "#"

// LineID is the canonical cart line key: the product id, extended with a
// sorted axis=value signature when the product has variant axes.
type LineID string

// ProductID returns the product portion of the line id.
func (id LineID) ProductID() string {
	if i := strings.Index(string(id), variantSeparator); i >= 0 {
		return string(id)[:i]
	}
	return string(id)
}

// NewLineID computes the canonical id for a product and variant selection.
// Products with variant axes require every axis to be selected with a known
// option; an incomplete or unknown selection is rejected with a validation
// error and must cause no side effects in the caller.
func NewLineID(p *catalog.Product, selection map[string]string) (LineID, error) {
	if p == nil || p.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if !p.HasVariants() {
		return LineID(p.ID), nil
	}

	pairs := make([]string, 0, len(p.VariantAxes))
	var missing []string
	for _, axis := range p.VariantAxes {
		value, ok := selection[axis.Name]
		if !ok || value == "" {
			missing = append(missing, axis.Name)
			continue
		}
		if !p.AxisOption(axis.Name, value) {
			return "", pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("unknown option %q for axis %q", value, axis.Name))
		}
		pairs = append(pairs, axis.Name+"="+value)
	}
	if len(missing) > 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "variant selection incomplete").
			WithDetails(map[string]any{"missing_axes": missing})
	}
	sort.Strings(pairs)
	return LineID(p.ID + variantSeparator + strings.Join(pairs, ",")), nil
}

// legacyLineIDs returns the identifier shapes older clients and snapshots used
// for the same product+variant: the signature in axis declaration order, and a
// bare trailing separator for products without axes. Canonicalization merges
// any line stored under one of these before every lookup.
func legacyLineIDs(p *catalog.Product, selection map[string]string) []LineID {
	if p == nil {
		return nil
	}
	if !p.HasVariants() {
		return []LineID{LineID(p.ID + variantSeparator)}
	}
	pairs := make([]string, 0, len(p.VariantAxes))
	for _, axis := range p.VariantAxes {
		value, ok := selection[axis.Name]
		if !ok || value == "" {
			return nil
		}
		pairs = append(pairs, axis.Name+"="+value)
	}
	declared := LineID(p.ID + variantSeparator + strings.Join(pairs, ","))
	return []LineID{declared}
}

// Line is one cart entry. Quantity and UnitPrice are always written together
// as a single snapshot; the embedded product carries the tier and tax fields
// needed to re-resolve the price when the promo window flips.
type Line struct {
	ID       LineID            `json:"id"`
	Product  catalog.Product   `json:"product"`
	Variant  map[string]string `json:"variant,omitempty"`
	Quantity int               `json:"quantity"`
	UnitPrice catalog.Money    `json:"unit_price"`
	StockCeiling int           `json:"stock_ceiling"`
	MinOrderQty  int           `json:"min_order_qty"`
}

// GrossTotal returns the tax-inclusive line total.
func (l Line) GrossTotal() catalog.Money {
	return l.UnitPrice * catalog.Money(l.Quantity)
}
