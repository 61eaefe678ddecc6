package catalog

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aragel-soft/chulada-pos-sub001/internal/common"
)

// Handler exposes catalog lookups over HTTP.
type Handler struct {
	Svc *Service
}

// Products answers the paginated product search backing the register's
// debounced lookup field.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	page, limit := common.ParsePagination(r, 20)
	result, err := h.Svc.Search(r.Context(), q, page, limit)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to search products", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": result.Products,
		"meta": common.Pagination{Page: page, PerPage: limit, TotalItems: result.Total},
	})
}

// ByBarcode resolves a scanned barcode.
func (h *Handler) ByBarcode(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	barcode := strings.TrimSpace(chi.URLParam(r, "code"))
	if barcode == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "barcode is required", nil)
		return
	}
	product, err := h.Svc.ByBarcode(r.Context(), barcode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load product", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}
