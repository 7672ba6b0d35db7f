package access

import (
	"testing"

	"github.com/yigit/campushub/internal/app/models"
)

func TestPrimaryRolePriority(t *testing.T) {
	tests := []struct {
		name  string
		roles []models.Role
		want  models.Role
		ok    bool
	}{
		{"none", nil, "", false},
		{"student", []models.Role{models.RoleStudent}, models.RoleStudent, true},
		{"event admin and super admin", []models.Role{models.RoleEventAdmin, models.RoleSuperAdmin}, models.RoleSuperAdmin, true},
		{"super admin and event admin", []models.Role{models.RoleSuperAdmin, models.RoleEventAdmin}, models.RoleSuperAdmin, true},
		{"placement beats event admin", []models.Role{models.RoleStudent, models.RoleEventAdmin, models.RolePlacementCell}, models.RolePlacementCell, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NewRoleSet(tt.roles...).Primary()
			if got != tt.want || ok != tt.ok {
				t.Errorf("Primary() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestZeroRolesFallsBackToStudentDashboard(t *testing.T) {
	snap := Snapshot{Identity: &Identity{UserID: 1}, RolesLoaded: true, Roles: NewRoleSet()}
	if snap.PrimaryRole() != models.RoleStudent {
		t.Errorf("PrimaryRole() = %q, want student", snap.PrimaryRole())
	}
	if snap.Landing() != StudentHome {
		t.Errorf("Landing() = %q, want %q", snap.Landing(), StudentHome)
	}

	anonymous := Snapshot{}
	if anonymous.PrimaryRole() != "" {
		t.Errorf("anonymous PrimaryRole() = %q, want none", anonymous.PrimaryRole())
	}
}

func TestDefaultDestination(t *testing.T) {
	cases := map[models.Role]string{
		models.RoleSuperAdmin:    SuperAdminHome,
		models.RolePlacementCell: PlacementAdminHome,
		models.RoleEventAdmin:    EventAdminHome,
		models.RoleStudent:       StudentHome,
		"":                       StudentHome,
	}
	for role, want := range cases {
		if got := DefaultDestination(role); got != want {
			t.Errorf("DefaultDestination(%q) = %q, want %q", role, got, want)
		}
	}
}

func TestHasAny(t *testing.T) {
	s := NewRoleSet(models.RoleEventAdmin)
	if !s.HasAny(models.RoleEventAdmin, models.RoleSuperAdmin) {
		t.Error("HasAny should match event_admin")
	}
	if s.HasAny(models.RolePlacementCell, models.RoleSuperAdmin) {
		t.Error("HasAny matched a role that is not held")
	}
	if s.HasAny() {
		t.Error("HasAny with no candidates must be false")
	}
}

func TestAddThenRemoveRoleRoundTrip(t *testing.T) {
	original := NewRoleSet(models.RoleStudent)

	added := original.With(models.RoleEventAdmin)
	if !added.Has(models.RoleEventAdmin) || !added.Has(models.RoleStudent) {
		t.Fatalf("after add: %v", added.Roles())
	}

	removed := added.Without(models.RoleEventAdmin)
	if removed.Has(models.RoleEventAdmin) {
		t.Fatalf("after remove: %v", removed.Roles())
	}
	if !removed.Equal(original) {
		t.Errorf("round trip = %v, want %v", removed.Roles(), original.Roles())
	}
	if original.Has(models.RoleEventAdmin) {
		t.Error("With must not mutate the receiver")
	}
}

func TestResolveRolesSkipsUnknown(t *testing.T) {
	rows := []models.UserRole{
		{ID: 1, Role: "student"},
		{ID: 2, Role: "janitor"},
		{ID: 3, Role: "super_admin"},
	}
	set, invalid := ResolveRoles(rows)
	if set.Len() != 2 || !set.Has(models.RoleSuperAdmin) {
		t.Errorf("roles = %v", set.Roles())
	}
	if len(invalid) != 1 {
		t.Errorf("invalid = %v, want one error", invalid)
	}
}

func TestRolesOrdered(t *testing.T) {
	got := NewRoleSet(models.RoleStudent, models.RoleSuperAdmin, models.RoleEventAdmin).Roles()
	want := []models.Role{models.RoleSuperAdmin, models.RoleEventAdmin, models.RoleStudent}
	if len(got) != len(want) {
		t.Fatalf("Roles() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Roles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
