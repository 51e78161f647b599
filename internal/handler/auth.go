package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/audit"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/auth"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/middleware"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	store  *service.Store
	tokens *auth.TokenManager
	authz  *security.AuthorizationService
	gate   *security.Gate
	audit  *audit.Logger
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	store *service.Store,
	tokens *auth.TokenManager,
	authz *security.AuthorizationService,
	gate *security.Gate,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		store:  store,
		tokens: tokens,
		authz:  authz,
		gate:   gate,
		audit:  auditLog,
		logger: logger,
	}
}

// LoginRequest represents login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents login response
type LoginResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"tokenType"`
	ExpiresIn int         `json:"expiresIn"` // seconds
	User      domain.User `json:"user"`
	Landing   string      `json:"landing"`
}

// SessionResponse describes the signed-in user
type SessionResponse struct {
	User        domain.User           `json:"user"`
	Landing     string                `json:"landing"`
	Permissions []security.Permission `json:"permissions"`
	Language    string                `json:"language"`
	Direction   string                `json:"dir"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, ok := h.store.Login(req.Username, req.Password)
	if !ok {
		h.audit.LogLogin(r.Context(), 0, req.Username, "failure")
		writeError(w, http.StatusUnauthorized, "invalid_credentials", h.store.T("invalid_credentials"))
		return
	}

	current, sessionID, ok := h.store.CurrentSession()
	if !ok || current.ID != user.ID {
		// another login replaced this one before a token could be issued
		writeError(w, http.StatusUnauthorized, "unauthorized", h.store.T("session_expired"))
		return
	}

	token, err := h.tokens.GenerateToken(*user, sessionID)
	if err != nil {
		h.logger.Error("failed to issue token",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		h.store.Logout()
		writeError(w, http.StatusInternalServerError, "token_error", "failed to issue token")
		return
	}
	h.audit.LogLogin(r.Context(), user.ID, user.Username, "success")

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(h.tokens.TTL().Seconds()),
		User:      user.Public(),
		Landing:   h.gate.Landing(security.StateOf(user)),
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		h.audit.LogLogout(r.Context(), user.ID)
	}
	h.store.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", h.store.T("session_expired"))
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		User:        user.Public(),
		Landing:     h.gate.Landing(security.StateOf(user)),
		Permissions: h.authz.GetRolePermissions(user.Role),
		Language:    string(h.store.Language()),
		Direction:   h.store.Direction(),
	})
}
