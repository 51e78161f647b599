package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/audit"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/auth"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/ratelimit"
)

type UserContextKey struct{}
type ClaimsContextKey struct{}

// Sessions exposes the signed-in session and the active message table
type Sessions interface {
	CurrentSession() (*domain.User, string, bool)
	T(key string) string
}

// RequestID tags every request with an id, echoes it in X-Request-ID and logs completion
func RequestID(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if _, err := uuid.Parse(reqID); err != nil {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)

			ctx := audit.WithRequestID(r.Context(), reqID)
			start := time.Now()

			next.ServeHTTP(w, r.WithContext(ctx))

			log.Info("request completed",
				slog.String("request_id", reqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("duration_ms", time.Since(start)),
			)
		})
	}
}

// JWTMiddleware requires a valid bearer token belonging to the store's signed-in user.
// A token issued before another login, or before logout, is rejected.
func JWTMiddleware(tm *auth.TokenManager, sessions Sessions, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, user, ok := authenticate(r, tm, sessions)
			if !ok {
				log.Debug("request not authenticated", slog.String("path", r.URL.Path))
				WriteError(w, http.StatusUnauthorized, "unauthorized", sessions.T("session_expired"))
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			ctx = context.WithValue(ctx, UserContextKey{}, user)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWT attaches the session user when a valid token is present and never rejects
func OptionalJWT(tm *auth.TokenManager, sessions Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, user, ok := authenticate(r, tm, sessions); ok {
				ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
				ctx = context.WithValue(ctx, UserContextKey{}, user)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(r *http.Request, tm *auth.TokenManager, sessions Sessions) (*auth.Claims, *domain.User, bool) {
	var tokenString string
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		var err error
		if tokenString, err = auth.ExtractToken(authHeader); err != nil {
			return nil, nil, false
		}
	} else if websocketUpgrade(r) {
		// browsers cannot set headers on websocket handshakes
		tokenString = r.URL.Query().Get("token")
	}
	if tokenString == "" {
		return nil, nil, false
	}
	claims, err := tm.ValidateToken(tokenString)
	if err != nil {
		return nil, nil, false
	}
	user, sessionID, ok := sessions.CurrentSession()
	if !ok || user.ID != claims.UserID || sessionID != claims.SessionID {
		return nil, nil, false
	}
	return claims, user, true
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// RequirePermission rejects callers whose role lacks perm. It must run after JWTMiddleware.
func RequirePermission(authz *security.AuthorizationService, perm security.Permission, sessions Sessions, auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				WriteError(w, http.StatusUnauthorized, "unauthorized", sessions.T("session_expired"))
				return
			}
			if err := authz.ValidatePermission(user.Role, perm); err != nil {
				auditLog.LogDenied(r.Context(), user.ID, err.Error())
				WriteError(w, http.StatusForbidden, "forbidden", sessions.T("forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware limits requests per client IP as resolved by proxies
func RateLimitMiddleware(limiter *ratelimit.Limiter, proxies *TrustedProxies, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := proxies.ClientIP(r)
			if !limiter.Allow(ip) {
				log.Warn("rate limit exceeded",
					slog.String("client_ip", ip),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(limiter.Window().Seconds())))
				WriteError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records every roster-changing user management request
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var actorID int64
			if user := GetUserFromContext(r.Context()); user != nil {
				actorID = user.ID
			}

			if strings.HasPrefix(r.URL.Path, "/api/users") {
				switch r.Method {
				case http.MethodPost:
					auditLog.LogAction(r.Context(), actorID, "add_user", "user", "", "initiated", "")
				case http.MethodPatch:
					auditLog.LogAction(r.Context(), actorID, "update_user", "user", r.PathValue("id"), "initiated", "")
				case http.MethodDelete:
					auditLog.LogAction(r.Context(), actorID, "delete_user", "user", r.PathValue("id"), "initiated", "")
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// TrustedProxies resolves the client address of a request.
// X-Forwarded-For is honoured only when the direct peer is one of the trusted networks.
type TrustedProxies struct {
	networks []netip.Prefix
}

// NewTrustedProxies creates a resolver trusting networks. With none, only RemoteAddr counts.
func NewTrustedProxies(networks []netip.Prefix) *TrustedProxies {
	return &TrustedProxies{networks: networks}
}

// ClientIP returns the address of the client that sent r. Forwarded hops are read right to
// left and the first one outside the trusted networks is the client.
func (p *TrustedProxies) ClientIP(r *http.Request) string {
	remote := remoteHost(r)
	if p == nil || len(p.networks) == 0 {
		return remote
	}
	addr, err := netip.ParseAddr(remote)
	if err != nil || !p.trusts(addr) {
		return remote
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	client := remote
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		hopAddr, err := netip.ParseAddr(hop)
		if err != nil {
			return client
		}
		client = hopAddr.String()
		if !p.trusts(hopAddr) {
			return client
		}
	}
	return client
}

func (p *TrustedProxies) trusts(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, network := range p.networks {
		if network.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError replies with status and an ErrorResponse body
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: code, Message: message})
}

// GetClaimsFromContext returns the token claims attached by JWTMiddleware
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c, ok := ctx.Value(ClaimsContextKey{}).(*auth.Claims); ok {
		return c
	}
	return nil
}

func GetUserFromContext(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(UserContextKey{}).(*domain.User); ok {
		return u
	}
	return nil
}
