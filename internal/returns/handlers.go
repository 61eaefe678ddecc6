package returns

import (
	"encoding/json"
	"net/http"

	"github.com/aragel-soft/chulada-pos-sub001/internal/common"
)

// Handler exposes return validation over HTTP. The endpoint is stateless:
// the UI posts the full candidate list on every toggle.
type Handler struct{}

type validateRequest struct {
	Items []Candidate `json:"items"`
}

// ValidateSelection reports whether the selected candidates form a returnable
// set, with one message per violated group.
func (h *Handler) ValidateSelection(w http.ResponseWriter, r *http.Request) {
	var payload validateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": Validate(payload.Items)})
}
