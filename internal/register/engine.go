package register

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/aragel-soft/chulada-pos-sub001/internal/catalog"
	"github.com/aragel-soft/chulada-pos-sub001/internal/kits"
	"github.com/aragel-soft/chulada-pos-sub001/internal/pricing"
)

// DefaultMaxTickets bounds concurrent open tickets per register unless
// configured otherwise.
const DefaultMaxTickets = 5

// Engine owns the open tickets of one register. All operations are
// synchronous in-memory state transforms; guards clamp silently instead of
// returning errors so the register stays responsive. Boolean results report
// whether the operation changed anything, for the UI to surface a warning.
type Engine struct {
	maxTickets int
	seq        int
	tickets    []*Ticket
	activeID   uuid.UUID
}

// New constructs an engine bounded to maxTickets concurrent tickets.
func New(maxTickets int) *Engine {
	if maxTickets <= 0 {
		maxTickets = DefaultMaxTickets
	}
	return &Engine{maxTickets: maxTickets}
}

// Tickets returns the open tickets in creation order.
func (e *Engine) Tickets() []*Ticket { return e.tickets }

// Active returns the ticket receiving add/update operations, or nil.
func (e *Engine) Active() *Ticket {
	for _, t := range e.tickets {
		if t.ID == e.activeID {
			return t
		}
	}
	return nil
}

// NewTicket appends an empty ticket and makes it active. It is a no-op once
// the configured maximum is reached.
func (e *Engine) NewTicket() (*Ticket, bool) {
	if len(e.tickets) >= e.maxTickets {
		return nil, false
	}
	e.seq++
	t := &Ticket{ID: uuid.New(), Name: fmt.Sprintf("Ticket %d", e.seq)}
	e.tickets = append(e.tickets, t)
	e.activeID = t.ID
	return t, true
}

// CloseTicket removes a ticket regardless of its contents; confirming a
// non-empty close is the caller's policy. Closing the active ticket
// activates the first remaining one.
func (e *Engine) CloseTicket(id uuid.UUID) bool {
	for i, t := range e.tickets {
		if t.ID != id {
			continue
		}
		e.tickets = append(e.tickets[:i], e.tickets[i+1:]...)
		if e.activeID == id {
			e.activeID = uuid.Nil
			if len(e.tickets) > 0 {
				e.activeID = e.tickets[0].ID
			}
		}
		return true
	}
	return false
}

// SetActive switches which ticket receives subsequent operations. Unknown
// identifiers are ignored.
func (e *Engine) SetActive(id uuid.UUID) bool {
	for _, t := range e.tickets {
		if t.ID == id {
			e.activeID = t.ID
			return true
		}
	}
	return false
}

// active returns the current ticket, implicitly creating the first one.
func (e *Engine) active() *Ticket {
	if t := e.Active(); t != nil {
		return t
	}
	t, _ := e.NewTicket()
	return t
}

// Add scans a product into the active ticket at the requested tier (retail
// unless wholesale is asked for; a live discount forces retail). It merges
// into an existing compatible line when possible. The result is false when
// the stock ceiling declined the increment.
func (e *Engine) Add(p catalog.Product, tier PriceType) (Line, bool) {
	if !tier.Toggleable() {
		tier = PriceRetail
	}
	t := e.active()
	if t.DiscountPct > 0 {
		tier = PriceRetail
	}
	for i := range t.Lines {
		l := &t.Lines[i]
		if l.ProductID != p.ID || l.PriceType != tier || l.IsGift {
			continue
		}
		if l.Qty >= l.StockCap {
			return *l, false
		}
		l.Qty++
		return *l, true
	}
	if p.Stock < 1 {
		return Line{}, false
	}
	price := p.RetailPrice
	if tier == PriceWholesale {
		price = p.WholesalePrice
	}
	line := Line{
		ID:             uuid.New(),
		ProductID:      p.ID,
		Code:           p.Code,
		Name:           p.Name,
		Qty:            1,
		UnitPrice:      price,
		RetailPrice:    p.RetailPrice,
		WholesalePrice: p.WholesalePrice,
		PriceType:      tier,
		StockCap:       p.Stock,
	}
	t.Lines = append(t.Lines, line)
	return line, true
}

// AddPromo scans a product carrying a fixed promotional price. Promotional
// lines merge only with lines of the same promotion.
func (e *Engine) AddPromo(p catalog.Product, promoID uuid.UUID, promoName string, price pricing.Money) (Line, bool) {
	t := e.active()
	for i := range t.Lines {
		l := &t.Lines[i]
		if l.ProductID != p.ID || l.PriceType != PricePromo || l.IsGift {
			continue
		}
		if l.PromoID == nil || *l.PromoID != promoID {
			continue
		}
		if l.Qty >= l.StockCap {
			return *l, false
		}
		l.Qty++
		return *l, true
	}
	if p.Stock < 1 {
		return Line{}, false
	}
	id := promoID
	line := Line{
		ID:             uuid.New(),
		ProductID:      p.ID,
		Code:           p.Code,
		Name:           p.Name,
		Qty:            1,
		UnitPrice:      price,
		RetailPrice:    p.RetailPrice,
		WholesalePrice: p.WholesalePrice,
		PriceType:      PricePromo,
		PromoID:        &id,
		PromoName:      promoName,
		StockCap:       p.Stock,
	}
	t.Lines = append(t.Lines, line)
	return line, true
}

// SetQty sets a line's quantity directly. Zero or negative removes the line;
// values above the stock snapshot clamp to it.
func (e *Engine) SetQty(lineID uuid.UUID, qty int) bool {
	t := e.Active()
	if t == nil {
		return false
	}
	i := t.lineIndex(lineID)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		t.removeLineAt(i)
		return true
	}
	if qty > t.Lines[i].StockCap {
		qty = t.Lines[i].StockCap
	}
	t.Lines[i].Qty = qty
	return true
}

// Remove deletes a line unconditionally.
func (e *Engine) Remove(lineID uuid.UUID) bool {
	t := e.Active()
	if t == nil {
		return false
	}
	i := t.lineIndex(lineID)
	if i < 0 {
		return false
	}
	t.removeLineAt(i)
	return true
}

// ToggleLine flips a line between retail and wholesale price. Promotional
// and gift lines are fixed, and toggling is suspended while a global
// discount is active: discount and wholesale are mutually exclusive.
func (e *Engine) ToggleLine(lineID uuid.UUID) bool {
	t := e.Active()
	if t == nil || t.DiscountPct > 0 {
		return false
	}
	i := t.lineIndex(lineID)
	if i < 0 {
		return false
	}
	return toggle(&t.Lines[i])
}

// ToggleTicket flips every eligible line of the active ticket in one pass,
// returning how many lines changed.
func (e *Engine) ToggleTicket() int {
	t := e.Active()
	if t == nil || t.DiscountPct > 0 {
		return 0
	}
	var n int
	for i := range t.Lines {
		if toggle(&t.Lines[i]) {
			n++
		}
	}
	return n
}

func toggle(l *Line) bool {
	switch l.PriceType {
	case PriceRetail:
		l.PriceType = PriceWholesale
		l.UnitPrice = l.WholesalePrice
		return true
	case PriceWholesale:
		l.PriceType = PriceRetail
		l.UnitPrice = l.RetailPrice
		return true
	}
	return false
}

// Clear empties the active ticket's lines, keeping the ticket itself.
func (e *Engine) Clear() bool {
	t := e.Active()
	if t == nil {
		return false
	}
	t.Lines = nil
	return true
}

// SetDiscount sets the active ticket's global discount percentage; zero
// clears it. Applying a non-zero discount forces every wholesale line back
// to retail price.
func (e *Engine) SetDiscount(pct int) bool {
	t := e.Active()
	if t == nil {
		return false
	}
	if pct < 0 {
		pct = 0
	}
	t.DiscountPct = pct
	if pct == 0 {
		return true
	}
	for i := range t.Lines {
		l := &t.Lines[i]
		if l.PriceType == PriceWholesale {
			l.PriceType = PriceRetail
			l.UnitPrice = l.RetailPrice
		}
	}
	return true
}

// Total computes the active ticket's summary. An empty register totals zero.
func (e *Engine) Total() pricing.Summary {
	t := e.Active()
	if t == nil {
		return pricing.Summary{}
	}
	return t.Total()
}

// GiftPick is one confirmed gift product/quantity pair.
type GiftPick struct {
	ProductID uuid.UUID
	Code      string
	Name      string
	Price     pricing.Money
	Qty       int
}

// AddGifts materialises a confirmed kit selection as gift lines on the
// active ticket. Gift lines keep their nominal price for display but never
// contribute to the total, and their tier is immutable.
func (e *Engine) AddGifts(kitID uuid.UUID, picks []GiftPick) []Line {
	t := e.active()
	kid := kitID
	var added []Line
	for _, pick := range picks {
		if pick.Qty <= 0 {
			continue
		}
		line := Line{
			ID:        uuid.New(),
			ProductID: pick.ProductID,
			Code:      pick.Code,
			Name:      pick.Name,
			Qty:       pick.Qty,
			UnitPrice: pick.Price,
			PriceType: PriceKitGift,
			KitID:     &kid,
			IsGift:    true,
			StockCap:  pick.Qty,
		}
		t.Lines = append(t.Lines, line)
		added = append(added, line)
	}
	return added
}

// PendingGifts reports the unresolved gift obligations of the active ticket
// given the kit definitions whose trigger products it holds. Checkout is
// expected to refuse while any obligation is outstanding.
func (e *Engine) PendingGifts(defs []kits.Definition) []kits.Pending {
	t := e.Active()
	if t == nil {
		return nil
	}
	var out []kits.Pending
	for _, def := range defs {
		triggerQty := t.TriggerQty(def.TriggerProductID)
		if triggerQty == 0 {
			continue
		}
		needed := def.Outstanding(triggerQty, t.GiftCount(def.ID))
		if needed > 0 {
			out = append(out, kits.Pending{Definition: def, TriggerQty: triggerQty, Needed: needed})
		}
	}
	return out
}

type engineState struct {
	MaxTickets int       `json:"maxTickets"`
	Seq        int       `json:"seq"`
	Tickets    []*Ticket `json:"tickets"`
	ActiveID   uuid.UUID `json:"activeId"`
}

// Snapshot serialises the engine so an open register survives a restart.
func (e *Engine) Snapshot() ([]byte, error) {
	return json.Marshal(engineState{
		MaxTickets: e.maxTickets,
		Seq:        e.seq,
		Tickets:    e.tickets,
		ActiveID:   e.activeID,
	})
}

// Restore rebuilds an engine from a snapshot produced by Snapshot.
func Restore(data []byte) (*Engine, error) {
	var st engineState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("restore register: %w", err)
	}
	e := New(st.MaxTickets)
	e.seq = st.Seq
	e.tickets = st.Tickets
	e.activeID = st.ActiveID
	return e, nil
}
