package kits

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestOutstanding(t *testing.T) {
	def := Definition{MaxPerTrigger: 2}

	tests := []struct {
		name       string
		triggerQty int
		granted    int
		want       int
	}{
		{"no trigger", 0, 0, 0},
		{"single trigger", 1, 0, 2},
		{"partially granted", 3, 1, 5},
		{"fully granted", 2, 4, 0},
		{"over-granted stays at zero", 1, 5, 0},
		{"negative trigger", -1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, def.Outstanding(tt.triggerQty, tt.granted))
		})
	}
}

func TestSelectionIncStopsAtObligation(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	sel := NewSelection(3)

	require.True(t, sel.Inc(a))
	require.True(t, sel.Inc(a))
	require.True(t, sel.Inc(b))
	require.False(t, sel.Inc(b), "a filled obligation accepts no more units")

	require.Equal(t, 2, sel.Count(a))
	require.Equal(t, 1, sel.Count(b))
	require.True(t, sel.CanConfirm())
}

func TestSelectionDec(t *testing.T) {
	a := uuid.New()
	sel := NewSelection(2)

	require.False(t, sel.Dec(a), "nothing selected yet")
	sel.Inc(a)
	require.True(t, sel.Dec(a))
	require.Zero(t, sel.Count(a))
	require.False(t, sel.CanConfirm())
}

func TestSelectionSetClamps(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	sel := NewSelection(3)

	sel.Set(a, 10)
	require.Equal(t, 3, sel.Count(a))
	require.True(t, sel.CanConfirm())

	sel.Set(a, 1)
	sel.Set(b, 5)
	require.Equal(t, 2, sel.Count(b))
	require.Equal(t, 3, sel.Total())

	sel.Set(b, -4)
	require.Zero(t, sel.Count(b))
	require.False(t, sel.CanConfirm())
}

func TestSelectionZeroObligationConfirmsTrivially(t *testing.T) {
	sel := NewSelection(0)
	require.True(t, sel.CanConfirm())
	require.False(t, sel.Inc(uuid.New()))
}

func TestCountsSkipsZeroEntries(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	sel := NewSelection(2)
	sel.Inc(a)
	sel.Inc(b)
	sel.Dec(b)

	counts := sel.Counts()
	require.Equal(t, map[uuid.UUID]int{a: 1}, counts)
}
