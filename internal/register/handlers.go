package register

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/aragel-soft/chulada-pos-sub001/internal/catalog"
	"github.com/aragel-soft/chulada-pos-sub001/internal/common"
	"github.com/aragel-soft/chulada-pos-sub001/internal/events"
	"github.com/aragel-soft/chulada-pos-sub001/internal/kits"
	"github.com/aragel-soft/chulada-pos-sub001/internal/obs"
	"github.com/aragel-soft/chulada-pos-sub001/internal/pricing"
)

// Handler wires register operations to HTTP. Engine guards clamp silently;
// the handler surfaces the clamp outcome so the UI can toast a warning
// without ever blocking the cashier.
type Handler struct {
	Hub             *Hub
	Catalog         *catalog.Service
	Kits            *kits.Store
	Events          *events.Bus
	Validate        *validator.Validate
	DiscountPresets []int
}

// State is the full register view returned to the UI.
type State struct {
	Tickets  []*Ticket       `json:"tickets"`
	ActiveID uuid.UUID       `json:"activeId"`
	Summary  pricing.Summary `json:"summary"`
	Pending  []kits.Pending  `json:"pendingGifts,omitempty"`
}

// Get returns the register's tickets, the active summary, and any pending
// gift obligations.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rid, ok := registerID(w, r)
	if !ok {
		return
	}
	var state State
	err := h.Hub.With(r.Context(), rid, func(e *Engine) error {
		defs, err := h.activeDefs(r, e)
		if err != nil {
			return err
		}
		state = State{
			Tickets: e.Tickets(),
			Summary: e.Total(),
			Pending: e.PendingGifts(defs),
		}
		if t := e.Active(); t != nil {
			state.ActiveID = t.ID
		}
		return nil
	})
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load register", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": state})
}

// CreateTicket opens a new empty ticket and makes it active. The register
// declines once the configured maximum of concurrent tickets is reached.
func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	rid, ok := registerID(w, r)
	if !ok {
		return
	}
	var created *Ticket
	err := h.Hub.With(r.Context(), rid, func(e *Engine) error {
		t, ok := e.NewTicket()
		if !ok {
			return errTicketLimit
		}
		created = t
		return nil
	})
	if errors.Is(err, errTicketLimit) {
		common.JSONError(w, http.StatusConflict, "TICKET_LIMIT", "maximum number of open tickets reached", nil)
		return
	}
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to create ticket", nil)
		return
	}
	h.emit(r, events.TopicTicketOpened, created.ID, created)
	obs.TicketsOpened.Inc()
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// CloseTicket removes a ticket regardless of its contents. The UI obtains
// the cashier's confirmation for non-empty tickets before calling this.
func (h *Handler) CloseTicket(w http.ResponseWriter, r *http.Request) {
	rid, ok := registerID(w, r)
	if !ok {
		return
	}
	tid, err := uuid.Parse(chi.URLParam(r, "tid"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid ticket id", nil)
		return
	}
	var closed bool
	if err := h.Hub.With(r.Context(), rid, func(e *Engine) error {
		closed = e.CloseTicket(tid)
		return nil
	}); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to close ticket", nil)
		return
	}
	if !closed {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "ticket not found", nil)
		return
	}
	h.emit(r, events.TopicTicketClosed, tid, nil)
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"closed": true}})
}

// ActivateTicket switches which ticket receives subsequent operations.
func (h *Handler) ActivateTicket(w http.ResponseWriter, r *http.Request) {
	rid, ok := registerID(w, r)
	if !ok {
		return
	}
	tid, err := uuid.Parse(chi.URLParam(r, "tid"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid ticket id", nil)
		return
	}
	var switched bool
	if err := h.Hub.With(r.Context(), rid, func(e *Engine) error {
		switched = e.SetActive(tid)
		return nil
	}); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to activate ticket", nil)
		return
	}
	if !switched {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "ticket not found", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"activeId": tid}})
}

type addLineRequest struct {
	Barcode   string `json:"barcode"`
	ProductID string `json:"productId"`
	PriceType string `json:"priceType" validate:"omitempty,oneof=retail wholesale"`
}

// AddLine scans a product into the active ticket. The response carries the
// resulting line, whether the stock ceiling declined the increment, and the
// kit gift obligation the scan unlocked, if any.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	rid, ok := registerID(w, r)
	if !ok {
		return
	}
	var payload addLineRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
		return
	}
	product, err := h.resolveProduct(r, payload)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	tier := PriceRetail
	if payload.PriceType != "" {
		tier, _ = ParsePriceType(payload.PriceType)
	}

	var (
		line    Line
		added   bool
		pending *kits.Pending
	)
	err = h.Hub.With(r.Context(), rid, func(e *Engine) error {
		line, added = e.Add(product, tier)
		if !added {
			return nil
		}
		def, err := h.Kits.ByTrigger(r.Context(), product.ID)
		if errors.Is(err, kits.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		t := e.Active()
		needed := def.Outstanding(t.TriggerQty(product.ID), t.GiftCount(def.ID))
		if needed > 0 {
			pending = &kits.Pending{Definition: def, TriggerQty: t.TriggerQty(product.ID), Needed: needed}
		}
		return nil
	})
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to add product", nil)
		return
	}
	if added {
		obs.LinesScanned.Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"line": line, "added": added, "obligation": pending},
	})
}

type setQtyRequest struct {
	Qty int `json:"qty"`
}

// SetQty sets a line quantity directly. Zero or below removes the line,
// values above the stock snapshot clamp to it.
func (h *Handler) SetQty(w http.ResponseWriter, r *http.Request) {
	rid, ok := registerID(w, r)
	if !ok {
		return
	}
	lid, err := uuid.Parse(chi.URLParam(r, "lid"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid line id", nil)
		return
	}
	var payload setQtyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	h.mutate(w, r, rid, func(e *Engine) bool { return e.SetQty(lid, payload.Qty) })
}

// RemoveLine deletes a line unconditionally.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	rid, ok := registerID(w, r)
	if !ok {
		return
	}
	lid, err := uuid.Parse(chi.URLParam(r, "lid"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid line id", nil)
		return
	}
	h.mutate(w, r, rid, func(e *Engine) bool { return e.Remove(lid) })
}

// ToggleLine flips a line between retail and wholesale price.
func (h *Handler) ToggleLine(w http.ResponseWriter, r *http.Request) {
	rid, ok := registerID(w, r)
	if !ok {
		return
	}
	lid, err := uuid.Parse(chi.URLParam(r, "lid"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid line id", nil)
		return
	}
	h.mutate(w, r, rid, func(e *Engine) bool { return e.ToggleLine(lid) })
}

// ToggleTicket flips every eligible line of the active ticket.
func (h *Handler) ToggleTicket(w http.ResponseWriter, r *http.Request) {
	rid, ok := registerID(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, rid, func(e *Engine) bool { return e.ToggleTicket() > 0 })
}

// Clear empties the active ticket's lines.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	rid, ok := registerID(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, rid, func(e *Engine) bool { return e.Clear() })
}

type discountRequest struct {
	Pct int `json:"pct"`
}

// Discount sets or clears the ticket-wide discount. Only configured preset
// percentages (or zero) are accepted.
func (h *Handler) Discount(w http.ResponseWriter, r *http.Request) {
	rid, ok := registerID(w, r)
	if !ok {
		return
	}
	var payload discountRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if !h.presetAllowed(payload.Pct) {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "discount percentage is not a configured preset", nil)
		return
	}
	h.mutate(w, r, rid, func(e *Engine) bool { return e.SetDiscount(payload.Pct) })
}

// Obligations reports the active ticket's unresolved gift obligations.
func (h *Handler) Obligations(w http.ResponseWriter, r *http.Request) {
	rid, ok := registerID(w, r)
	if !ok {
		return
	}
	var pending []kits.Pending
	err := h.Hub.With(r.Context(), rid, func(e *Engine) error {
		defs, err := h.activeDefs(r, e)
		if err != nil {
			return err
		}
		pending = e.PendingGifts(defs)
		return nil
	})
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load obligations", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": pending})
}

type giftPickRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"required,gt=0"`
}

type confirmGiftsRequest struct {
	KitID string            `json:"kitId" validate:"required,uuid"`
	Picks []giftPickRequest `json:"picks" validate:"required,min=1,dive"`
}

// ConfirmGifts reconciles a gift selection against the outstanding
// obligation and materialises it as gift lines. The selection must match the
// obligation exactly; anything else is rejected without mutating the ticket.
func (h *Handler) ConfirmGifts(w http.ResponseWriter, r *http.Request) {
	rid, ok := registerID(w, r)
	if !ok {
		return
	}
	var payload confirmGiftsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
		return
	}
	kitID, err := uuid.Parse(payload.KitID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid kit id", nil)
		return
	}
	def, err := h.Kits.ByID(r.Context(), kitID)
	if err != nil {
		if errors.Is(err, kits.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "kit not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load kit", nil)
		return
	}

	var added []Line
	err = h.Hub.With(r.Context(), rid, func(e *Engine) error {
		t := e.Active()
		if t == nil {
			return errNoActiveTicket
		}
		needed := def.Outstanding(t.TriggerQty(def.TriggerProductID), t.GiftCount(def.ID))
		sel := kits.NewSelection(needed)
		picks := make([]GiftPick, 0, len(payload.Picks))
		for _, p := range payload.Picks {
			pid, err := uuid.Parse(p.ProductID)
			if err != nil {
				return errSelectionMismatch
			}
			item, ok := giftItem(def, pid)
			if !ok {
				return errIneligibleGift
			}
			for range p.Qty {
				if !sel.Inc(pid) {
					return errSelectionMismatch
				}
			}
			picks = append(picks, GiftPick{
				ProductID: item.ProductID,
				Code:      item.Code,
				Name:      item.Name,
				Price:     item.Price,
				Qty:       p.Qty,
			})
		}
		if !sel.CanConfirm() {
			return errSelectionMismatch
		}
		added = e.AddGifts(def.ID, picks)
		return nil
	})
	switch {
	case errors.Is(err, errNoActiveTicket):
		common.JSONError(w, http.StatusConflict, "NO_TICKET", "no ticket is open", nil)
		return
	case errors.Is(err, errIneligibleGift):
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "selected item is not part of the kit", nil)
		return
	case errors.Is(err, errSelectionMismatch):
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "selection must match the outstanding gift obligation exactly", nil)
		return
	case err != nil:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to confirm gifts", nil)
		return
	}
	obs.GiftsGranted.Add(float64(len(added)))
	common.JSON(w, http.StatusOK, map[string]any{"data": added})
}

var (
	errTicketLimit       = errors.New("ticket limit reached")
	errNoActiveTicket    = errors.New("no active ticket")
	errIneligibleGift    = errors.New("ineligible gift item")
	errSelectionMismatch = errors.New("gift selection mismatch")
)

// mutate runs an engine mutation and reports the changed flag plus the
// resulting summary, the shape every simple register operation shares.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, rid string, fn func(*Engine) bool) {
	var (
		changed bool
		summary pricing.Summary
	)
	if err := h.Hub.With(r.Context(), rid, func(e *Engine) error {
		changed = fn(e)
		summary = e.Total()
		return nil
	}); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "register operation failed", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"changed": changed, "summary": summary},
	})
}

func (h *Handler) resolveProduct(r *http.Request, payload addLineRequest) (catalog.Product, error) {
	if code := strings.TrimSpace(payload.Barcode); code != "" {
		return h.Catalog.ByBarcode(r.Context(), code)
	}
	if raw := strings.TrimSpace(payload.ProductID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return catalog.Product{}, errors.New("invalid product id")
		}
		return h.Catalog.ByID(r.Context(), id)
	}
	return catalog.Product{}, errors.New("barcode or productId is required")
}

// activeDefs loads the kit definitions triggered by the active ticket.
func (h *Handler) activeDefs(r *http.Request, e *Engine) ([]kits.Definition, error) {
	t := e.Active()
	if t == nil {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(t.Lines))
	for _, l := range t.Lines {
		if !l.IsGift {
			ids = append(ids, l.ProductID)
		}
	}
	return h.Kits.ForTriggers(r.Context(), ids)
}

func (h *Handler) presetAllowed(pct int) bool {
	if pct == 0 {
		return true
	}
	for _, preset := range h.DiscountPresets {
		if pct == preset {
			return true
		}
	}
	return false
}

func (h *Handler) emit(r *http.Request, topic string, aggregateID uuid.UUID, payload any) {
	if h.Events == nil {
		return
	}
	_, _ = h.Events.Emit(r.Context(), topic, aggregateID, payload)
}

func giftItem(def kits.Definition, productID uuid.UUID) (kits.GiftItem, bool) {
	for _, it := range def.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return kits.GiftItem{}, false
}

func registerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	rid := strings.TrimSpace(chi.URLParam(r, "rid"))
	if rid == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "register id is required", nil)
		return "", false
	}
	return rid, true
}
