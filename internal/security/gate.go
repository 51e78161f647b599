package security

import (
	"strings"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
)

// Navigable routes
const (
	RouteLogin     = "/login"
	RouteAddVisit  = "/add-visit"
	RouteDashboard = "/"
	RouteAdmin     = "/admin"
)

var routePermissions = map[string]Permission{
	RouteAddVisit:  PermRecordVisit,
	RouteDashboard: PermViewDashboard,
	RouteAdmin:     PermManageUsers,
}

// SessionState is what the gate knows about the caller
type SessionState struct {
	Authenticated bool `json:"authenticated"`
	IsAdmin       bool `json:"isAdmin"`
}

// StateOf derives the session state for user, nil meaning signed out
func StateOf(user *domain.User) SessionState {
	if user == nil {
		return SessionState{}
	}
	return SessionState{Authenticated: true, IsAdmin: user.IsAdmin()}
}

func (s SessionState) role() domain.Role {
	if s.IsAdmin {
		return domain.RoleAdmin
	}
	return domain.RoleRep
}

// Decision is the outcome of a navigation request
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Path     string `json:"path"`
	Redirect string `json:"redirect,omitempty"`
}

// Gate decides which routes a session may reach
type Gate struct {
	authz *AuthorizationService
}

// NewGate creates a gate backed by authz
func NewGate(authz *AuthorizationService) *Gate {
	if authz == nil {
		authz = NewAuthorizationService(nil)
	}
	return &Gate{authz: authz}
}

// Landing returns the highest-privilege route reachable from state
func (g *Gate) Landing(state SessionState) string {
	switch {
	case !state.Authenticated:
		return RouteLogin
	case state.IsAdmin:
		return RouteDashboard
	default:
		return RouteAddVisit
	}
}

// Resolve allows path or redirects to the landing route of state.
// Unknown paths are never reported as not found.
func (g *Gate) Resolve(state SessionState, path string) Decision {
	path = normalizePath(path)

	if !state.Authenticated {
		if path == RouteLogin {
			return Decision{Allowed: true, Path: path}
		}
		return Decision{Path: path, Redirect: RouteLogin}
	}

	perm, known := routePermissions[path]
	if known && g.authz.HasPermission(state.role(), perm) {
		return Decision{Allowed: true, Path: path}
	}
	return Decision{Path: path, Redirect: g.Landing(state)}
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
