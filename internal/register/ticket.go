package register

import (
	"github.com/google/uuid"

	"github.com/aragel-soft/chulada-pos-sub001/internal/pricing"
)

// Line is one row within a ticket. Its identifier is distinct from the
// product identifier so the same product can appear as several independent
// lines, e.g. once at retail and once as a gift.
type Line struct {
	ID             uuid.UUID     `json:"id"`
	ProductID      uuid.UUID     `json:"productId"`
	Code           string        `json:"code"`
	Name           string        `json:"name"`
	Qty            int           `json:"qty"`
	UnitPrice      pricing.Money `json:"unitPrice"`
	RetailPrice    pricing.Money `json:"retailPrice"`
	WholesalePrice pricing.Money `json:"wholesalePrice"`
	PriceType      PriceType     `json:"priceType"`
	PromoID        *uuid.UUID    `json:"promoId,omitempty"`
	PromoName      string        `json:"promoName,omitempty"`
	KitID          *uuid.UUID    `json:"kitId,omitempty"`
	IsGift         bool          `json:"isGift"`
	StockCap       int           `json:"stockCap"`
}

// Subtotal is the amount the line adds to the ticket before any global
// discount. Gift lines contribute nothing regardless of their nominal price.
func (l Line) Subtotal() pricing.Money {
	if l.IsGift {
		return 0
	}
	return pricing.Money(l.Qty) * l.UnitPrice
}

// Ticket is one independent, uncommitted sale in progress. DiscountPct is the
// ticket-wide percentage reduction; zero means no discount.
type Ticket struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Lines       []Line    `json:"lines"`
	DiscountPct int       `json:"discountPct"`
}

func (t *Ticket) lineIndex(lineID uuid.UUID) int {
	for i := range t.Lines {
		if t.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

func (t *Ticket) removeLineAt(i int) {
	t.Lines = append(t.Lines[:i], t.Lines[i+1:]...)
}

// Total computes the ticket summary with the ticket's own discount applied.
func (t *Ticket) Total() pricing.Summary {
	lines := make([]pricing.Line, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, pricing.Line{
			Qty:       l.Qty,
			UnitPrice: l.UnitPrice,
			Fixed:     l.PriceType == PricePromo,
			Gift:      l.IsGift,
		})
	}
	return pricing.Compute(lines, t.DiscountPct)
}

// TriggerQty sums the quantity of non-gift lines for the given product,
// which is the trigger count kit obligations are derived from.
func (t *Ticket) TriggerQty(productID uuid.UUID) int {
	var qty int
	for _, l := range t.Lines {
		if l.ProductID == productID && !l.IsGift {
			qty += l.Qty
		}
	}
	return qty
}

// GiftCount sums the quantity of gift lines linked to the given kit.
func (t *Ticket) GiftCount(kitID uuid.UUID) int {
	var qty int
	for _, l := range t.Lines {
		if l.IsGift && l.KitID != nil && *l.KitID == kitID {
			qty += l.Qty
		}
	}
	return qty
}
