package register

import (
	"errors"
	"fmt"
)

// PriceType is the closed set of pricing tiers a line can carry. There is no
// fallback tier: unknown tags are rejected at parse time.
type PriceType string

const (
	// PriceRetail is the default tier resolved on scan.
	PriceRetail PriceType = "retail"
	// PriceWholesale is the bulk tier, mutually exclusive with a global discount.
	PriceWholesale PriceType = "wholesale"
	// PricePromo marks a fixed promotional price outside discount and toggling.
	PricePromo PriceType = "promo"
	// PriceKitGift marks a zero-contributing gift line granted by a kit.
	PriceKitGift PriceType = "kit_gift"
)

// ErrUnknownPriceType is returned when parsing an unrecognised tier tag.
var ErrUnknownPriceType = errors.New("unknown price type")

// ParsePriceType converts a wire tag into a PriceType.
func ParsePriceType(s string) (PriceType, error) {
	switch PriceType(s) {
	case PriceRetail, PriceWholesale, PricePromo, PriceKitGift:
		return PriceType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPriceType, s)
}

// Toggleable reports whether the tier participates in retail/wholesale
// toggling. Promotional and gift lines are fixed.
func (p PriceType) Toggleable() bool {
	return p == PriceRetail || p == PriceWholesale
}
