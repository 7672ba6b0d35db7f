package access

import (
	"testing"

	"github.com/yigit/campushub/internal/app/models"
)

func TestDefaultDestinationsMatch(t *testing.T) {
	table := DefaultDestinations()
	tests := []struct {
		path        string
		pattern     string
		requireAuth bool
		roles       []models.Role
	}{
		{"/", "/", false, nil},
		{"/events/techfest-2025", "/events/:slug", false, nil},
		{"/placements/12?tab=apply", "/placements/:id", false, nil},
		{"/my-events/", "/my-events", true, nil},
		{"/super-admin", "/super-admin/*", true, []models.Role{models.RoleSuperAdmin}},
		{"/super-admin/events/4/coordinators", "/super-admin/*", true, []models.Role{models.RoleSuperAdmin}},
		{"/placement-admin/jobs", "/placement-admin/*", true, []models.Role{models.RolePlacementCell, models.RoleSuperAdmin}},
		{"/admin/events/3/sub-events", "/admin/*", true, []models.Role{models.RoleEventAdmin, models.RoleSuperAdmin}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			dest, ok := table.Match(tt.path)
			if !ok {
				t.Fatalf("Match(%q) found nothing", tt.path)
			}
			if dest.Pattern != tt.pattern || dest.RequireAuth != tt.requireAuth || len(dest.AllowedRoles) != len(tt.roles) {
				t.Errorf("Match(%q) = %+v", tt.path, dest)
			}
			for i := range tt.roles {
				if dest.AllowedRoles[i] != tt.roles[i] {
					t.Errorf("AllowedRoles = %v, want %v", dest.AllowedRoles, tt.roles)
				}
			}
		})
	}
}

func TestDestinationsNoMatch(t *testing.T) {
	table := DefaultDestinations()
	for _, p := range []string{"/nope", "/events/a/b", "/administrator"} {
		if dest, ok := table.Match(p); ok {
			t.Errorf("Match(%q) = %+v, want none", p, dest)
		}
	}
}
