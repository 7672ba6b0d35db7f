package access

import (
	"context"
	"errors"
	"testing"

	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

func signedIn(roles []models.Role, loaded bool) Snapshot {
	return Snapshot{
		Identity:    &Identity{UserID: 7, Email: "u@campus.edu"},
		Roles:       NewRoleSet(roles...),
		RolesLoaded: loaded,
	}
}

func TestGateStates(t *testing.T) {
	gate := NewGate(DefaultDestinations())
	tests := []struct {
		name     string
		snap     Snapshot
		path     string
		state    State
		redirect string
	}{
		{"loading", Snapshot{Loading: true}, "/admin/events", StateLoading, ""},
		{"public anonymous", Snapshot{}, "/events", StateAllowed, ""},
		{"auth required anonymous", Snapshot{}, "/my-applications", StateUnauthenticated, SignInPath},
		{"gated anonymous", Snapshot{}, "/super-admin/users", StateUnauthenticated, SignInPath},
		{"authenticated route", signedIn(nil, false), "/profile", StateAllowed, ""},
		{"roles pending", signedIn(nil, false), "/admin/events", StateRolePending, ""},
		{"roles pending even if admin", signedIn([]models.Role{models.RoleSuperAdmin}, false), "/super-admin/users", StateRolePending, ""},
		{"denied", signedIn([]models.Role{models.RoleStudent}, true), "/placement-admin/jobs", StateDenied, FallbackPath},
		{"zero roles denied", signedIn(nil, true), "/admin/dashboard", StateDenied, FallbackPath},
		{"allowed event admin", signedIn([]models.Role{models.RoleEventAdmin}, true), "/admin/events", StateAllowed, ""},
		{"super admin on placement", signedIn([]models.Role{models.RoleSuperAdmin}, true), "/placement-admin/results", StateAllowed, ""},
		{"event admin not super", signedIn([]models.Role{models.RoleEventAdmin}, true), "/super-admin/events", StateDenied, FallbackPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := gate.Resolve(tt.snap, tt.path)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if d.State != tt.state || d.RedirectTo != tt.redirect {
				t.Errorf("Resolve(%q) = %+v, want state %s redirect %q", tt.path, d, tt.state, tt.redirect)
			}
		})
	}
}

func TestGatePreservesRequestedPath(t *testing.T) {
	gate := NewGate(DefaultDestinations())
	d, err := gate.Resolve(Snapshot{}, "/my-events?tab=past")
	if err != nil {
		t.Fatal(err)
	}
	if d.ReturnTo != "/my-events?tab=past" {
		t.Errorf("ReturnTo = %q", d.ReturnTo)
	}
	if got := d.RedirectURL(); got != "/auth?from=%2Fmy-events%3Ftab%3Dpast" {
		t.Errorf("RedirectURL() = %q", got)
	}
}

func TestGateUnknownPath(t *testing.T) {
	gate := NewGate(DefaultDestinations())
	if _, err := gate.Resolve(Snapshot{}, "/missing"); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("error = %v, want ErrResourceNotFound", err)
	}
}

func TestGateObserver(t *testing.T) {
	var seen []State
	gate := NewGate(DefaultDestinations(), WithObserver(func(s State) { seen = append(seen, s) }))
	_, _ = gate.Resolve(Snapshot{}, "/dashboard")
	if len(seen) != 1 || seen[0] != StateUnauthenticated {
		t.Errorf("observer saw %v", seen)
	}
}

func TestDecideFollowsLiveSession(t *testing.T) {
	profiles := &fakeProfiles{profile: &models.Profile{UserID: 7, Name: "Asha"}}
	roles := &fakeRoles{rows: []models.UserRole{{ID: 1, UserID: 7, Role: "super_admin"}}}
	session := NewSession(&Identity{UserID: 7}, profiles, roles, testLogger())
	gate := NewGate(DefaultDestinations())
	ctx := context.Background()

	d, err := gate.Decide(ctx, session, "/super-admin/dashboard")
	if err != nil || d.State != StateLoading {
		t.Fatalf("before load: %+v, %v", d, err)
	}

	if err := session.Load(ctx); err != nil {
		t.Fatal(err)
	}
	d, _ = gate.Decide(ctx, session, "/super-admin/dashboard")
	if d.State != StateAllowed {
		t.Fatalf("after load: %+v", d)
	}

	session.SignOut()
	d, _ = gate.Decide(ctx, session, "/super-admin/dashboard")
	if d.State != StateUnauthenticated || d.ReturnTo != "/super-admin/dashboard" {
		t.Fatalf("after sign-out: %+v", d)
	}
}
