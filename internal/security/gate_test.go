package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
)

func TestGateResolve(t *testing.T) {
	gate := NewGate(nil)
	anonymous := SessionState{}
	rep := SessionState{Authenticated: true}
	admin := SessionState{Authenticated: true, IsAdmin: true}

	tests := []struct {
		name     string
		state    SessionState
		path     string
		allowed  bool
		redirect string
	}{
		{"anonymous login", anonymous, "/login", true, ""},
		{"anonymous dashboard", anonymous, "/", false, RouteLogin},
		{"anonymous add visit", anonymous, "/add-visit", false, RouteLogin},
		{"anonymous unknown", anonymous, "/nope", false, RouteLogin},
		{"rep add visit", rep, "/add-visit", true, ""},
		{"rep dashboard", rep, "/", false, RouteAddVisit},
		{"rep admin", rep, "/admin", false, RouteAddVisit},
		{"rep login", rep, "/login", false, RouteAddVisit},
		{"rep unknown", rep, "/reports", false, RouteAddVisit},
		{"admin dashboard", admin, "/", true, ""},
		{"admin add visit", admin, "/add-visit", true, ""},
		{"admin panel", admin, "/admin/", true, ""},
		{"admin login", admin, "/login", false, RouteDashboard},
		{"admin unknown", admin, "/nope?x=1", false, RouteDashboard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := gate.Resolve(tt.state, tt.path)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.redirect, d.Redirect)
		})
	}
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, SessionState{}, StateOf(nil))
	assert.Equal(t, SessionState{Authenticated: true}, StateOf(&domain.User{Role: domain.RoleRep}))
	assert.Equal(t, SessionState{Authenticated: true, IsAdmin: true}, StateOf(&domain.User{Role: domain.RoleAdmin}))
}

func TestRolePermissions(t *testing.T) {
	authz := NewAuthorizationService(nil)

	assert.True(t, authz.HasPermission(domain.RoleRep, PermRecordVisit))
	assert.False(t, authz.HasPermission(domain.RoleRep, PermViewDashboard))
	assert.NoError(t, authz.ValidatePermission(domain.RoleAdmin, PermManageUsers))
	assert.Error(t, authz.ValidatePermission(domain.RoleRep, PermManageUsers))
	assert.False(t, authz.HasPermission("owner", PermRecordVisit))
}
