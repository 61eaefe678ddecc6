package register

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePriceType(t *testing.T) {
	for _, tag := range []string{"retail", "wholesale", "promo", "kit_gift"} {
		got, err := ParsePriceType(tag)
		require.NoError(t, err)
		require.Equal(t, PriceType(tag), got)
	}

	for _, tag := range []string{"", "Retail", "discount", "kit-gift", "free"} {
		_, err := ParsePriceType(tag)
		require.ErrorIs(t, err, ErrUnknownPriceType, tag)
	}
}

func TestToggleable(t *testing.T) {
	require.True(t, PriceRetail.Toggleable())
	require.True(t, PriceWholesale.Toggleable())
	require.False(t, PricePromo.Toggleable())
	require.False(t, PriceKitGift.Toggleable())
}
