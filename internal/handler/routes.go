package handler

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/dashboard"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/geolocation"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/persistence"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/audit"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/auth"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/middleware"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/ratelimit"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/service"
)

// Deps are the collaborators the HTTP surface is built from
type Deps struct {
	Store          *service.Store
	Reporter       *dashboard.Reporter
	Provider       *geolocation.Provider
	Tokens         *auth.TokenManager
	Authz          *security.AuthorizationService
	Gate           *security.Gate
	Audit          *audit.Logger
	LoginLimiter   *ratelimit.Limiter
	TrustedProxies []netip.Prefix
	Backend        persistence.Backend
	StorageDriver  string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Routes registers every endpoint on a new mux
func Routes(d Deps) *http.ServeMux {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	authHandler := NewAuthHandler(d.Store, d.Tokens, d.Authz, d.Gate, d.Audit, log)
	languageHandler := NewLanguageHandler(d.Store)
	navigateHandler := NewNavigateHandler(d.Gate)
	locationHandler := NewLocationHandler(d.Provider, d.Store, log)
	visitHandler := NewVisitHandler(d.Store, d.Provider, log)
	dashboardHandler := NewDashboardHandler(d.Reporter, d.Store, log)
	userHandler := NewUserHandler(d.Store, d.Audit, log)
	eventsHandler := NewEventsHandler(d.Store, d.AllowedOrigins, log)
	healthHandler := NewHealthHandler(d.Backend, d.StorageDriver, log)

	session := middleware.JWTMiddleware(d.Tokens, d.Store, log)
	allow := func(perm security.Permission, h http.Handler) http.Handler {
		return session(middleware.RequirePermission(d.Authz, perm, d.Store, d.Audit)(h))
	}
	manageUsers := func(h http.HandlerFunc) http.Handler {
		return allow(security.PermManageUsers, middleware.AuditMiddleware(d.Audit)(h))
	}

	mux := http.NewServeMux()

	mux.Handle("POST /api/auth/login", middleware.RateLimitMiddleware(d.LoginLimiter, middleware.NewTrustedProxies(d.TrustedProxies), log)(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/logout", session(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/me", session(http.HandlerFunc(authHandler.Me)))

	mux.HandleFunc("GET /api/language", languageHandler.Get)
	mux.HandleFunc("PUT /api/language", languageHandler.Set)
	mux.Handle("GET /api/navigate", middleware.OptionalJWT(d.Tokens, d.Store)(navigateHandler))

	mux.Handle("GET /api/location", session(locationHandler))
	mux.Handle("POST /api/visits", allow(security.PermRecordVisit, http.HandlerFunc(visitHandler.Create)))
	mux.Handle("GET /api/clients", allow(security.PermViewClients, http.HandlerFunc(visitHandler.Clients)))

	mux.Handle("GET /api/dashboard", allow(security.PermViewDashboard, http.HandlerFunc(dashboardHandler.Get)))
	mux.Handle("GET /api/dashboard/export", allow(security.PermViewDashboard, http.HandlerFunc(dashboardHandler.Export)))

	mux.Handle("GET /api/users", allow(security.PermManageUsers, http.HandlerFunc(userHandler.List)))
	mux.Handle("POST /api/users", manageUsers(userHandler.Create))
	mux.Handle("PATCH /api/users/{id}", manageUsers(userHandler.Update))
	mux.Handle("DELETE /api/users/{id}", manageUsers(userHandler.Delete))

	mux.Handle("GET /ws/events", session(eventsHandler))

	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
