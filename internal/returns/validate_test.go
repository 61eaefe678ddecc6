package returns

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func promoLine(promoID uuid.UUID, name string, selected bool) Candidate {
	return Candidate{
		LineID:      uuid.New(),
		PromoID:     &promoID,
		PromoName:   name,
		OriginalQty: 1,
		ReturnQty:   1,
		Selected:    selected,
	}
}

func kitLine(kitID uuid.UUID, name string, gift bool, originalQty, returnQty int, selected bool) Candidate {
	return Candidate{
		LineID:      uuid.New(),
		KitID:       &kitID,
		KitName:     name,
		IsGift:      gift,
		OriginalQty: originalQty,
		ReturnQty:   returnQty,
		Selected:    selected,
	}
}

func TestPromoMustComeBackWhole(t *testing.T) {
	promo := uuid.New()
	items := []Candidate{
		promoLine(promo, "3x2 Paletas", true),
		promoLine(promo, "3x2 Paletas", true),
		promoLine(promo, "3x2 Paletas", false),
	}

	report := Validate(items)
	require.False(t, report.Valid)
	require.Len(t, report.Messages, 1)
	require.Contains(t, report.Messages[0], `"3x2 Paletas"`)
	require.Contains(t, report.Messages[0], "in full")
}

func TestPromoFullySkippedIsFine(t *testing.T) {
	promo := uuid.New()
	items := []Candidate{
		promoLine(promo, "3x2 Paletas", false),
		promoLine(promo, "3x2 Paletas", false),
		promoLine(promo, "3x2 Paletas", false),
	}
	require.True(t, Validate(items).Valid)
}

func TestPromoFullySelectedIsFine(t *testing.T) {
	promo := uuid.New()
	items := []Candidate{
		promoLine(promo, "3x2 Paletas", true),
		promoLine(promo, "3x2 Paletas", true),
	}
	require.True(t, Validate(items).Valid)
}

func TestKitGiftsNeedTheirMainItem(t *testing.T) {
	kit := uuid.New()
	items := []Candidate{
		kitLine(kit, "Piñata + Dulces", false, 1, 0, false),
		kitLine(kit, "Piñata + Dulces", true, 2, 2, true),
	}

	report := Validate(items)
	require.False(t, report.Valid)
	require.Contains(t, report.Messages[0], "without the triggering main item")
}

func TestKitMainNeedsItsGifts(t *testing.T) {
	kit := uuid.New()
	items := []Candidate{
		kitLine(kit, "Piñata + Dulces", false, 1, 1, true),
		kitLine(kit, "Piñata + Dulces", true, 2, 0, false),
	}

	report := Validate(items)
	require.False(t, report.Valid)
	require.Contains(t, report.Messages[0], "return 2 gift unit(s)")
}

func TestKitRatioMustMatchExactly(t *testing.T) {
	kit := uuid.New()
	// Sold 2 mains with 4 gifts; returning 1 main requires exactly 2 gifts.
	items := []Candidate{
		kitLine(kit, "Piñata + Dulces", false, 2, 1, true),
		kitLine(kit, "Piñata + Dulces", true, 4, 1, true),
	}

	report := Validate(items)
	require.False(t, report.Valid)
	require.Contains(t, report.Messages[0], "expected 2 gift unit(s)")
	require.Contains(t, report.Messages[0], "got 1")
}

func TestKitRatioMatchPasses(t *testing.T) {
	kit := uuid.New()
	items := []Candidate{
		kitLine(kit, "Piñata + Dulces", false, 2, 1, true),
		kitLine(kit, "Piñata + Dulces", true, 4, 2, true),
	}
	require.True(t, Validate(items).Valid)
}

func TestKitFractionalRatioRendersAsFraction(t *testing.T) {
	kit := uuid.New()
	// 3 gifts over 2 mains: one returned main owes 3/2 gift units, which no
	// integer selection can satisfy.
	items := []Candidate{
		kitLine(kit, "Combo Fiesta", false, 2, 1, true),
		kitLine(kit, "Combo Fiesta", true, 3, 1, true),
	}

	report := Validate(items)
	require.False(t, report.Valid)
	require.Contains(t, report.Messages[0], "3/2")
}

func TestPlainLinesValidateFreely(t *testing.T) {
	items := []Candidate{
		{LineID: uuid.New(), Name: "Vasos", OriginalQty: 3, ReturnQty: 1, Selected: true},
		{LineID: uuid.New(), Name: "Platos", OriginalQty: 2, ReturnQty: 0, Selected: false},
	}
	report := Validate(items)
	require.True(t, report.Valid)
	require.Empty(t, report.Messages)
}

func TestMessagesAreDeterministicAcrossGroups(t *testing.T) {
	promoA, promoB := uuid.New(), uuid.New()
	items := []Candidate{
		promoLine(promoA, "Promo A", true),
		promoLine(promoA, "Promo A", false),
		promoLine(promoB, "Promo B", true),
		promoLine(promoB, "Promo B", false),
	}

	first := Validate(items)
	for range 10 {
		require.Equal(t, first.Messages, Validate(items).Messages)
	}
}
