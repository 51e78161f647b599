package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/geolocation"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/observability/metrics"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/middleware"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/service"
)

// VisitHandler handles data entry
type VisitHandler struct {
	store    *service.Store
	provider *geolocation.Provider
	logger   *slog.Logger
}

// NewVisitHandler creates a new visit handler. provider may be nil when
// the server has no location source of its own.
func NewVisitHandler(store *service.Store, provider *geolocation.Provider, logger *slog.Logger) *VisitHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisitHandler{store: store, provider: provider, logger: logger}
}

// CreateVisitRequest represents a visit report submission
type CreateVisitRequest struct {
	VisitDate     string                `json:"visitDate" validate:"omitempty,datetime=2006-01-02"`
	ClientName    string                `json:"clientName" validate:"required,max=200"`
	EmployeeName  string                `json:"employeeName" validate:"required,max=200"`
	EmployeePhone string                `json:"employeePhone" validate:"max=50"`
	CompanyEmail  string                `json:"companyEmail" validate:"omitempty,email"`
	ClientType    domain.ClientType     `json:"clientType" validate:"omitempty,oneof=new old"`
	VisitPurposes []domain.VisitPurpose `json:"visitPurposes" validate:"required,min=1"`
	Notes         string                `json:"notes" validate:"max=2000"`
	Location      *geolocation.Reading  `json:"location,omitempty"`
}

// CreateVisitResponse is the stored visit plus localized confirmations
type CreateVisitResponse struct {
	Visit          domain.Visit `json:"visit"`
	Message        string       `json:"message"`
	LocationStatus string       `json:"locationStatus,omitempty"`
}

// Create handles POST /api/visits
func (h *VisitHandler) Create(w http.ResponseWriter, r *http.Request) {
	rep := middleware.GetUserFromContext(r.Context())
	if rep == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", h.store.T("session_expired"))
		return
	}

	var req CreateVisitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	form := service.VisitForm{
		VisitDate:     req.VisitDate,
		ClientName:    req.ClientName,
		EmployeeName:  req.EmployeeName,
		EmployeePhone: req.EmployeePhone,
		CompanyEmail:  req.CompanyEmail,
		ClientType:    req.ClientType,
		VisitPurposes: req.VisitPurposes,
		Notes:         req.Notes,
	}

	var locationKey string
	if req.Location != nil || h.store.ClassifyClient(req.ClientName) == domain.ClientNew {
		res := h.locate(r, req.Location)
		locationKey = geolocation.MessageKey(res.Err)
		if res.Err == nil {
			coords := res.Coordinates
			form.Location = &coords
		}
	}

	visit, err := h.store.RecordVisit(r.Context(), *rep, form)
	if err != nil {
		if errors.Is(err, service.ErrInvalidVisit) {
			writeError(w, http.StatusUnprocessableEntity, "invalid_visit", h.store.T("invalid_visit"))
			return
		}
		h.logger.Error("failed to record visit",
			slog.Int64("rep_id", rep.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to record visit")
		return
	}

	resp := CreateVisitResponse{
		Visit:   visit,
		Message: h.store.T("visit_added_successfully"),
	}
	// an old client never carries a location, so its lookup status is noise
	if visit.ClientType == domain.ClientNew && locationKey != "" {
		resp.LocationStatus = h.store.T(locationKey)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// locate prefers the device reading and falls back to the server provider
func (h *VisitHandler) locate(r *http.Request, reading *geolocation.Reading) geolocation.Result {
	if reading != nil {
		res := geolocation.Reported(*reading)
		if res.Err != nil {
			metrics.ObserveGeolocation(geolocation.MessageKey(res.Err))
		} else {
			metrics.ObserveGeolocation("success")
		}
		return res
	}
	if h.provider == nil {
		return geolocation.Result{Err: geolocation.ErrUnsupported}
	}
	coords, err := h.provider.Locate(r.Context())
	return geolocation.Result{Coordinates: coords, Err: err}
}

// Clients handles GET /api/clients
func (h *VisitHandler) Clients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ClientDirectory())
}
