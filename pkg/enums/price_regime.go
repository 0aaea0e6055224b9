package enums

import "fmt"

// PriceRegime identifies which configured price list a resolved price came from.
type PriceRegime string

const (
	PriceRegimeRegular PriceRegime = "regular"
	PriceRegimePromo   PriceRegime = "promo"
)

var validPriceRegimes = []PriceRegime{
	PriceRegimeRegular,
	PriceRegimePromo,
}

// String implements fmt.Stringer.
func (p PriceRegime) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p PriceRegime) IsValid() bool {
	for _, candidate := range validPriceRegimes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceRegime converts raw input into a PriceRegime.
func ParsePriceRegime(value string) (PriceRegime, error) {
	for _, candidate := range validPriceRegimes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price regime %q", value)
}
