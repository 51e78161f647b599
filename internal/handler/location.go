package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/geolocation"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/service"
)

// LocationHandler runs a geolocation request on behalf of the caller
type LocationHandler struct {
	provider *geolocation.Provider
	store    *service.Store
	logger   *slog.Logger
}

func NewLocationHandler(provider *geolocation.Provider, store *service.Store, logger *slog.Logger) *LocationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocationHandler{provider: provider, store: store, logger: logger}
}

// LocationResponse is a successful reading
type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Message   string  `json:"message"`
}

// LocationError is a typed failure
type LocationError struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ServeHTTP handles GET /api/location
func (h *LocationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	coords, err := h.provider.Locate(r.Context())
	if err != nil {
		key := geolocation.MessageKey(err)
		h.logger.Info("location lookup failed",
			slog.String("reason", key),
			slog.String("error", err.Error()),
		)
		writeJSON(w, locationStatus(err), LocationError{
			Error:   key,
			Code:    geolocation.Code(err),
			Message: h.store.T(key),
		})
		return
	}

	writeJSON(w, http.StatusOK, LocationResponse{
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
		Message:   h.store.T("location_success"),
	})
}

func locationStatus(err error) int {
	switch {
	case errors.Is(err, geolocation.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, geolocation.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, geolocation.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusServiceUnavailable
	}
}
