package catalog

// Money is a monetary value in minor units (paise).
type Money = int64

// VolumeTier grants a per-unit price once the quantity reaches MinQty.
type VolumeTier struct {
	MinQty    int   `json:"min_qty"`
	UnitPrice Money `json:"unit_price"`
}

// VariantAxis is one selectable dimension of a product (e.g. size, grade).
type VariantAxis struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Product is the read-only catalog record consumed by the pricing and cart
// layers. Catalog management lives in a separate service; this process never
// mutates products. All prices are gross (tax-inclusive).
type Product struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Unit          string `json:"unit"`
	StockQty      int    `json:"stock_qty"`
	MinOrderQty   int    `json:"min_order_qty"`
	BasePrice     Money  `json:"base_price"`
	OriginalPrice Money  `json:"original_price"`

	// TaxBps is the GST rate in basis points (5% = 500).
	TaxBps int `json:"tax_bps"`
	// TaxableRatePerUnit is the stored per-unit taxable amount; 0 means the
	// taxable share must be inferred from the gross price and TaxBps.
	TaxableRatePerUnit Money `json:"taxable_rate_per_unit,omitempty"`

	Tiers      []VolumeTier `json:"tiers,omitempty"`
	PromoTiers []VolumeTier `json:"promo_tiers,omitempty"`
	// PromoUnitPrice is the promotional single-unit price; 0 means unset.
	PromoUnitPrice Money `json:"promo_unit_price,omitempty"`

	VariantAxes []VariantAxis `json:"variant_axes,omitempty"`
}

// MOQ returns the effective minimum order quantity, never below 1.
func (p *Product) MOQ() int {
	if p == nil || p.MinOrderQty <= 1 {
		return 1
	}
	return p.MinOrderQty
}

// HasVariants reports whether the product requires a variant selection.
func (p *Product) HasVariants() bool {
	return p != nil && len(p.VariantAxes) > 0
}

// AxisOption reports whether the named axis exists and carries the option.
func (p *Product) AxisOption(axis, option string) bool {
	if p == nil {
		return false
	}
	for _, a := range p.VariantAxes {
		if a.Name != axis {
			continue
		}
		for _, opt := range a.Options {
			if opt == option {
				return true
			}
		}
		return false
	}
	return false
}
