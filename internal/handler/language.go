package handler

import (
	"net/http"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/service"
)

// LanguageHandler reads and switches the active locale
type LanguageHandler struct {
	store *service.Store
}

func NewLanguageHandler(store *service.Store) *LanguageHandler {
	return &LanguageHandler{store: store}
}

type LanguageRequest struct {
	Language string `json:"language" validate:"required,oneof=en ar"`
}

type LanguageResponse struct {
	Language  string `json:"language"`
	Direction string `json:"dir"`
}

// Get handles GET /api/language
func (h *LanguageHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.current())
}

// Set handles PUT /api/language
func (h *LanguageHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.store.SetLanguage(req.Language); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "unsupported_language", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.current())
}

func (h *LanguageHandler) current() LanguageResponse {
	return LanguageResponse{
		Language:  string(h.store.Language()),
		Direction: h.store.Direction(),
	}
}
