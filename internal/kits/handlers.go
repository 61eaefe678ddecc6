package kits

import (
	"net/http"

	"github.com/aragel-soft/chulada-pos-sub001/internal/common"
)

// Handler exposes kit definition lookups, used by the register UI to render
// the gift selection dialog.
type Handler struct {
	Store *Store
}

// List returns every configured kit with its gift items.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	defs, err := h.Store.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load kits", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": defs})
}
