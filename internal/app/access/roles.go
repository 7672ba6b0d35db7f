package access

import (
	"fmt"

	"github.com/yigit/campushub/internal/app/models"
)

// RoleSet is the resolved set of roles held by one identity.
type RoleSet struct {
	roles map[models.Role]struct{}
}

// NewRoleSet builds a set from already-validated roles.
func NewRoleSet(roles ...models.Role) RoleSet {
	s := RoleSet{roles: make(map[models.Role]struct{}, len(roles))}
	for _, r := range roles {
		s.roles[r] = struct{}{}
	}
	return s
}

// ResolveRoles maps role-assignment rows to a RoleSet. Rows holding values outside
// the closed set are skipped and reported.
func ResolveRoles(rows []models.UserRole) (RoleSet, []error) {
	s := NewRoleSet()
	var invalid []error
	for _, row := range rows {
		r, err := models.ParseRole(row.Role)
		if err != nil {
			invalid = append(invalid, fmt.Errorf("user_roles row %d: %w", row.ID, err))
			continue
		}
		s.roles[r] = struct{}{}
	}
	return s, invalid
}

// Has reports whether role is held.
func (s RoleSet) Has(role models.Role) bool {
	_, ok := s.roles[role]
	return ok
}

// HasAny reports whether at least one of roles is held.
func (s RoleSet) HasAny(roles ...models.Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Primary returns the highest-priority role held, or false when the set is empty.
func (s RoleSet) Primary() (models.Role, bool) {
	for _, r := range models.RolePriority {
		if s.Has(r) {
			return r, true
		}
	}
	return "", false
}

// Roles lists the held roles in priority order.
func (s RoleSet) Roles() []models.Role {
	out := make([]models.Role, 0, len(s.roles))
	for _, r := range models.RolePriority {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of held roles.
func (s RoleSet) Len() int {
	return len(s.roles)
}

// With returns a copy of s including role.
func (s RoleSet) With(role models.Role) RoleSet {
	out := NewRoleSet(s.Roles()...)
	out.roles[role] = struct{}{}
	return out
}

// Without returns a copy of s excluding role.
func (s RoleSet) Without(role models.Role) RoleSet {
	out := NewRoleSet(s.Roles()...)
	delete(out.roles, role)
	return out
}

// Equal reports whether both sets hold the same roles.
func (s RoleSet) Equal(other RoleSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for r := range s.roles {
		if !other.Has(r) {
			return false
		}
	}
	return true
}

// Landing routes per primary role.
const (
	SuperAdminHome     = "/super-admin/dashboard"
	PlacementAdminHome = "/placement-admin/dashboard"
	EventAdminHome     = "/admin/dashboard"
	StudentHome        = "/dashboard"
)

// DefaultDestination is the landing route for a primary role. Anything else,
// including no role at all, lands on the student dashboard.
func DefaultDestination(primary models.Role) string {
	switch primary {
	case models.RoleSuperAdmin:
		return SuperAdminHome
	case models.RolePlacementCell:
		return PlacementAdminHome
	case models.RoleEventAdmin:
		return EventAdminHome
	default:
		return StudentHome
	}
}
