// Package returns validates that a candidate return respects the grouping
// rules of the original sale: promotions come back whole, and kit gifts come
// back in the same gift-to-trigger ratio they were granted in.
package returns

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Candidate is one line of the original sale offered for return. Selected is
// the cashier's toggle; ReturnQty is the quantity requested back.
type Candidate struct {
	LineID      uuid.UUID  `json:"lineId"`
	Name        string     `json:"name"`
	PromoID     *uuid.UUID `json:"promoId,omitempty"`
	PromoName   string     `json:"promoName,omitempty"`
	KitID       *uuid.UUID `json:"kitId,omitempty"`
	KitName     string     `json:"kitName,omitempty"`
	IsGift      bool       `json:"isGift"`
	OriginalQty int        `json:"originalQty"`
	ReturnQty   int        `json:"returnQty"`
	Selected    bool       `json:"selected"`
}

// Report is the outcome of a validation pass. Valid is true exactly when no
// message was produced.
type Report struct {
	Messages []string `json:"messages"`
	Valid    bool     `json:"valid"`
}

// Validate is a pure function of the candidate list and its selection flags;
// callers re-run it on every toggle. It never fails: violations surface as
// human-readable messages.
func Validate(items []Candidate) Report {
	var messages []string
	messages = append(messages, promoViolations(items)...)
	messages = append(messages, kitViolations(items)...)
	return Report{Messages: messages, Valid: len(messages) == 0}
}

// promoViolations enforces all-or-nothing returns per promotion group.
func promoViolations(items []Candidate) []string {
	type group struct {
		name              string
		selected, skipped int
	}
	groups := make(map[uuid.UUID]*group)
	for _, it := range items {
		if it.PromoID == nil {
			continue
		}
		g := groups[*it.PromoID]
		if g == nil {
			g = &group{name: it.PromoName}
			groups[*it.PromoID] = g
		}
		if it.Selected {
			g.selected++
		} else {
			g.skipped++
		}
	}
	var messages []string
	for _, id := range sortedKeys(groups) {
		g := groups[id]
		if g.selected > 0 && g.skipped > 0 {
			messages = append(messages,
				fmt.Sprintf("promotion %q must be returned in full", g.name))
		}
	}
	return messages
}

// kitViolations checks that selected gifts scale with selected trigger items
// in the exact ratio of the original sale. The comparison uses integer
// cross-multiplication, never floating point.
func kitViolations(items []Candidate) []string {
	type group struct {
		name                       string
		totalMain, totalGift       int
		originalMain, originalGift int
	}
	groups := make(map[uuid.UUID]*group)
	for _, it := range items {
		if it.KitID == nil {
			continue
		}
		g := groups[*it.KitID]
		if g == nil {
			g = &group{name: it.KitName}
			groups[*it.KitID] = g
		}
		if it.IsGift {
			g.originalGift += it.OriginalQty
			if it.Selected {
				g.totalGift += it.ReturnQty
			}
		} else {
			g.originalMain += it.OriginalQty
			if it.Selected {
				g.totalMain += it.ReturnQty
			}
		}
	}
	var messages []string
	for _, id := range sortedKeys(groups) {
		g := groups[id]
		if g.originalMain <= 0 {
			continue
		}
		switch {
		case g.totalGift > 0 && g.totalMain == 0:
			messages = append(messages,
				fmt.Sprintf("kit %q: gift items cannot be returned without the triggering main item", g.name))
		case g.totalMain > 0 && g.totalGift == 0 && g.originalGift > 0:
			messages = append(messages,
				fmt.Sprintf("kit %q: return %s gift unit(s) alongside the main items",
					g.name, formatExpected(g.totalMain, g.originalGift, g.originalMain)))
		case g.totalMain > 0 && g.totalGift > 0 &&
			g.totalGift*g.originalMain != g.totalMain*g.originalGift:
			messages = append(messages,
				fmt.Sprintf("kit %q: expected %s gift unit(s) for the selected main items, got %d",
					g.name, formatExpected(g.totalMain, g.originalGift, g.originalMain), g.totalGift))
		}
	}
	return messages
}

// formatExpected renders totalMain×originalGift/originalMain exactly,
// falling back to a fraction when the ratio is not integral.
func formatExpected(totalMain, originalGift, originalMain int) string {
	num := totalMain * originalGift
	if num%originalMain == 0 {
		return fmt.Sprintf("%d", num/originalMain)
	}
	return fmt.Sprintf("%d/%d", num, originalMain)
}

func sortedKeys[V any](m map[uuid.UUID]*V) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}
