package handler

import (
	"net/http"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/security"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/middleware"
)

// NavigateHandler answers whether the caller may open a route
type NavigateHandler struct {
	gate *security.Gate
}

func NewNavigateHandler(gate *security.Gate) *NavigateHandler {
	return &NavigateHandler{gate: gate}
}

// ServeHTTP handles GET /api/navigate?path=
func (h *NavigateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	state := security.StateOf(middleware.GetUserFromContext(r.Context()))
	writeJSON(w, http.StatusOK, h.gate.Resolve(state, r.URL.Query().Get("path")))
}
