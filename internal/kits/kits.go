// Package kits implements "buy-trigger, choose-gift" promotions: a trigger
// product in the cart grants a number of free gift selections that must be
// reconciled before checkout.
package kits

import (
	"github.com/google/uuid"

	"github.com/aragel-soft/chulada-pos-sub001/internal/pricing"
)

// GiftItem is one product eligible as a gift under a kit. Price is the
// nominal price shown struck through on the ticket.
type GiftItem struct {
	ProductID uuid.UUID     `json:"productId"`
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	Price     pricing.Money `json:"price"`
}

// Definition is the read-only description of a kit promotion.
type Definition struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	TriggerProductID uuid.UUID  `json:"triggerProductId"`
	MaxPerTrigger    int        `json:"maxPerTrigger"`
	Items            []GiftItem `json:"items"`
}

// Outstanding returns how many gift selections are still owed given the
// trigger quantity in the cart and the gifts already granted for this kit.
func (d Definition) Outstanding(triggerQty, granted int) int {
	if triggerQty <= 0 {
		return 0
	}
	needed := d.MaxPerTrigger*triggerQty - granted
	if needed < 0 {
		return 0
	}
	return needed
}

// Pending reports one unresolved gift obligation on a ticket.
type Pending struct {
	Definition Definition `json:"definition"`
	TriggerQty int        `json:"triggerQty"`
	Needed     int        `json:"needed"`
}

// Selection tracks the counts a cashier has picked while the gift dialog is
// open. Increments are permitted only while the running total is below the
// outstanding obligation; confirmation requires the two to match exactly.
type Selection struct {
	needed int
	counts map[uuid.UUID]int
	total  int
}

// NewSelection starts a selection against an outstanding obligation.
func NewSelection(needed int) *Selection {
	if needed < 0 {
		needed = 0
	}
	return &Selection{needed: needed, counts: make(map[uuid.UUID]int)}
}

// Inc adds one unit of the given gift item, reporting whether the obligation
// still had room.
func (s *Selection) Inc(productID uuid.UUID) bool {
	if s.total >= s.needed {
		return false
	}
	s.counts[productID]++
	s.total++
	return true
}

// Dec removes one unit of the given gift item if any is selected.
func (s *Selection) Dec(productID uuid.UUID) bool {
	if s.counts[productID] <= 0 {
		return false
	}
	s.counts[productID]--
	s.total--
	return true
}

// Set overwrites the count for one gift item, clamping so the running total
// never exceeds the obligation.
func (s *Selection) Set(productID uuid.UUID, count int) {
	if count < 0 {
		count = 0
	}
	current := s.counts[productID]
	limit := current + (s.needed - s.total)
	if count > limit {
		count = limit
	}
	s.counts[productID] = count
	s.total += count - current
}

// Count returns the selected units for one gift item.
func (s *Selection) Count(productID uuid.UUID) int { return s.counts[productID] }

// Total returns the running selected total.
func (s *Selection) Total() int { return s.total }

// Needed returns the obligation the selection reconciles against.
func (s *Selection) Needed() int { return s.needed }

// CanConfirm reports whether the selection satisfies the obligation exactly.
// A zero obligation confirms trivially: nothing further is owed.
func (s *Selection) CanConfirm() bool { return s.total == s.needed }

// Counts returns the selected product/quantity pairs, skipping zero counts.
func (s *Selection) Counts() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(s.counts))
	for id, n := range s.counts {
		if n > 0 {
			out[id] = n
		}
	}
	return out
}
