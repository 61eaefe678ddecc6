package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aragel-soft/chulada-pos-sub001/internal/common"
	"github.com/aragel-soft/chulada-pos-sub001/internal/kits"
	"github.com/aragel-soft/chulada-pos-sub001/internal/obs"
	"github.com/aragel-soft/chulada-pos-sub001/internal/register"
)

// Handler exposes checkout over HTTP.
type Handler struct {
	Hub  *register.Hub
	Kits *kits.Store
	Svc  *Service
}

type completeRequest struct {
	PaymentRef string `json:"paymentRef"`
}

var errGiftsOutstanding = errors.New("gift obligation outstanding")

// Complete turns the register's active ticket into a persisted sale. The
// ticket must have no outstanding kit gift obligation; the ticket is closed
// once the sale commits.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	rid := strings.TrimSpace(chi.URLParam(r, "rid"))
	if rid == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "register id is required", nil)
		return
	}
	var payload completeRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	var (
		sale    Sale
		pending []kits.Pending
	)
	err := h.Hub.With(r.Context(), rid, func(e *register.Engine) error {
		t := e.Active()
		if t == nil || len(t.Lines) == 0 {
			return ErrEmptyTicket
		}
		ids := triggerIDs(t)
		defs, err := h.Kits.ForTriggers(r.Context(), ids)
		if err != nil {
			return err
		}
		if pending = e.PendingGifts(defs); len(pending) > 0 {
			return errGiftsOutstanding
		}
		sale, err = h.Svc.Complete(r.Context(), rid, t, payload.PaymentRef)
		if err != nil {
			return err
		}
		e.CloseTicket(t.ID)
		return nil
	})
	switch {
	case errors.Is(err, ErrEmptyTicket):
		common.JSONError(w, http.StatusConflict, "EMPTY_TICKET", "ticket has no line items", nil)
		return
	case errors.Is(err, errGiftsOutstanding):
		obs.SalesCompleted.WithLabelValues("gifts_outstanding").Inc()
		common.JSONError(w, http.StatusConflict, "GIFTS_OUTSTANDING",
			"kit gifts must be chosen before checkout", pending)
		return
	case err != nil:
		obs.SalesCompleted.WithLabelValues("error").Inc()
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to complete sale", nil)
		return
	}
	obs.SalesCompleted.WithLabelValues("ok").Inc()
	obs.SaleTotal.Observe(float64(sale.Total))
	common.JSON(w, http.StatusCreated, map[string]any{"data": sale})
}

func triggerIDs(t *register.Ticket) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Lines))
	for _, l := range t.Lines {
		if !l.IsGift {
			ids = append(ids, l.ProductID)
		}
	}
	return ids
}
