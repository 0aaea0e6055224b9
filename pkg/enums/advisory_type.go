package enums

import "fmt"

// AdvisoryType enumerates the clamp advisories surfaced to the shopper.
type AdvisoryType string

const (
	AdvisoryTypeStockInsufficient AdvisoryType = "stock_insufficient"
	AdvisoryTypeBelowMinimumOrder AdvisoryType = "below_minimum_order"
)

var validAdvisoryTypes = []AdvisoryType{
	AdvisoryTypeStockInsufficient,
	AdvisoryTypeBelowMinimumOrder,
}

// String implements fmt.Stringer.
func (a AdvisoryType) String() string {
	return string(a)
}

// IsValid reports whether the value is known.
func (a AdvisoryType) IsValid() bool {
	for _, candidate := range validAdvisoryTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAdvisoryType converts raw input into an AdvisoryType.
func ParseAdvisoryType(value string) (AdvisoryType, error) {
	for _, candidate := range validAdvisoryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid advisory type %q", value)
}
