package pricing

import (
	"fmt"

	"github.com/dailykart/dailykart-backend/internal/catalog"
	"github.com/dailykart/dailykart-backend/pkg/enums"
)

// AppliedTier describes the volume tier a resolved price came from, for
// display alongside the line.
type AppliedTier struct {
	Label       string        `json:"label"`
	MinQty      int           `json:"min_qty"`
	UnitPrice   catalog.Money `json:"unit_price"`
	SavedAmount catalog.Money `json:"saved_amount"`
}

// Detail is the full resolution result: the unit price plus where it came from.
type Detail struct {
	UnitPrice catalog.Money
	Regime    enums.PriceRegime
	Tier      *AppliedTier
}

// Resolve returns the gross unit price for the product at the given quantity.
// The promo tier set (plus the promo single-unit price) is consulted when
// promoActive is true, the regular set otherwise; the two regimes never mix.
// Quantity must be positive; callers are responsible for clamping first.
func Resolve(p *catalog.Product, qty int, promoActive bool) catalog.Money {
	return ResolveDetail(p, qty, promoActive).UnitPrice
}

// ResolveDetail resolves like Resolve and reports the applied tier, if any.
func ResolveDetail(p *catalog.Product, qty int, promoActive bool) Detail {
	if promoActive {
		if tier := selectTier(qty, p.PromoTiers); tier != nil {
			return Detail{
				UnitPrice: tier.UnitPrice,
				Regime:    enums.PriceRegimePromo,
				Tier:      appliedTier(tier, qty, promoSingleUnit(p)),
			}
		}
		return Detail{UnitPrice: promoSingleUnit(p), Regime: enums.PriceRegimePromo}
	}
	if tier := selectTier(qty, p.Tiers); tier != nil {
		return Detail{
			UnitPrice: tier.UnitPrice,
			Regime:    enums.PriceRegimeRegular,
			Tier:      appliedTier(tier, qty, p.BasePrice),
		}
	}
	return Detail{UnitPrice: p.BasePrice, Regime: enums.PriceRegimeRegular}
}

// selectTier picks the highest-threshold tier the quantity qualifies for.
func selectTier(qty int, tiers []catalog.VolumeTier) *catalog.VolumeTier {
	var selected *catalog.VolumeTier
	for _, tier := range tiers {
		if tier.MinQty <= qty {
			if selected == nil || tier.MinQty > selected.MinQty {
				copied := tier
				selected = &copied
			}
		}
	}
	return selected
}

func promoSingleUnit(p *catalog.Product) catalog.Money {
	if p.PromoUnitPrice > 0 {
		return p.PromoUnitPrice
	}
	return p.BasePrice
}

func appliedTier(tier *catalog.VolumeTier, qty int, singleUnit catalog.Money) *AppliedTier {
	diff := singleUnit - tier.UnitPrice
	if diff < 0 {
		diff = 0
	}
	return &AppliedTier{
		Label:       fmt.Sprintf("volume tier %d+", tier.MinQty),
		MinQty:      tier.MinQty,
		UnitPrice:   tier.UnitPrice,
		SavedAmount: diff * catalog.Money(qty),
	}
}
