package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/samber/lo"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/audit"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/middleware"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/service"
)

// UserHandler handles user management
type UserHandler struct {
	store  *service.Store
	audit  *audit.Logger
	logger *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(store *service.Store, auditLog *audit.Logger, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{store: store, audit: auditLog, logger: logger}
}

// CreateUserRequest represents the add user form
type CreateUserRequest struct {
	Username        string `json:"username" validate:"required,max=64"`
	Name            string `json:"name" validate:"required,max=200"`
	Role            string `json:"role" validate:"required,oneof=admin rep"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// UpdateUserRequest represents the edit user form; omitted fields keep their value
// and an empty password keeps the current one
type UpdateUserRequest struct {
	Username        *string `json:"username,omitempty" validate:"omitempty,min=1,max=64"`
	Name            *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Role            *string `json:"role,omitempty" validate:"omitempty,oneof=admin rep"`
	Password        *string `json:"password,omitempty"`
	ConfirmPassword *string `json:"confirmPassword,omitempty"`
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users := lo.Map(h.store.Users(), func(u domain.User, _ int) domain.User { return u.Public() })
	writeJSON(w, http.StatusOK, users)
}

// Create handles POST /api/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := actorID(r)

	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	// a mismatch is reported before any other field problem and nothing is attempted
	if req.Password != req.ConfirmPassword {
		writeError(w, http.StatusUnprocessableEntity, "passwords_do_not_match", h.store.T("passwords_do_not_match"))
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	user, err := h.store.AddUser(r.Context(), domain.User{
		Username: req.Username,
		Name:     req.Name,
		Role:     domain.Role(req.Role),
		Password: req.Password,
	})
	if err != nil {
		h.audit.LogUserChange(r.Context(), actor, "add_user", 0, "failure", err.Error())
		h.writeStoreError(w, err)
		return
	}

	h.audit.LogUserChange(r.Context(), actor, "add_user", user.ID, "success", user.Username)
	writeJSON(w, http.StatusCreated, user.Public())
}

// Update handles PATCH /api/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := actorID(r)
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Password != nil && *req.Password != "" && req.ConfirmPassword != nil && *req.ConfirmPassword != *req.Password {
		writeError(w, http.StatusUnprocessableEntity, "passwords_do_not_match", h.store.T("passwords_do_not_match"))
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	patch := domain.UserPatch{
		Username: req.Username,
		Name:     req.Name,
		Password: req.Password,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		patch.Role = &role
	}

	user, err := h.store.UpdateUser(r.Context(), id, patch)
	if err != nil {
		h.audit.LogUserChange(r.Context(), actor, "update_user", id, "failure", err.Error())
		h.writeStoreError(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user_not_found", h.store.T("user_not_found"))
		return
	}

	h.audit.LogUserChange(r.Context(), actor, "update_user", id, "success", "")
	writeJSON(w, http.StatusOK, user.Public())
}

// Delete handles DELETE /api/users/{id}. The user's visits go with them.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := actorID(r)
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if _, found := h.store.User(id); !found {
		writeError(w, http.StatusNotFound, "user_not_found", h.store.T("user_not_found"))
		return
	}

	if err := h.store.RemoveUser(r.Context(), id); err != nil {
		h.audit.LogUserChange(r.Context(), actor, "delete_user", id, "failure", err.Error())
		h.writeStoreError(w, err)
		return
	}

	h.audit.LogUserChange(r.Context(), actor, "delete_user", id, "success", "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "user id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *UserHandler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSelfDeletion):
		writeError(w, http.StatusConflict, "cannot_delete_yourself", h.store.T("cannot_delete_yourself"))
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username_taken", h.store.T("username_taken"))
	case errors.Is(err, service.ErrInvalidUser):
		writeError(w, http.StatusUnprocessableEntity, "invalid_user", err.Error())
	default:
		h.logger.Error("user management failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "user management failed")
	}
}

func actorID(r *http.Request) int64 {
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		return user.ID
	}
	return 0
}
