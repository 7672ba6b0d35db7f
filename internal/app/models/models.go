package models

import (
	"strings"
	"time"

	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// Role is one of the fixed, closed set of permission labels.
type Role string

const (
	RoleStudent       Role = "student"
	RoleEventAdmin    Role = "event_admin"
	RolePlacementCell Role = "placement_cell"
	RoleSuperAdmin    Role = "super_admin"
)

// RolePriority lists roles from highest to lowest precedence for picking a primary role.
var RolePriority = []Role{RoleSuperAdmin, RolePlacementCell, RoleEventAdmin, RoleStudent}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleEventAdmin, RolePlacementCell, RoleSuperAdmin:
		return true
	}
	return false
}

// ParseRole converts a stored or submitted value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return "", apperrors.NewCustomError(apperrors.ErrUnknownRole, "unknown role: "+s)
	}
	return r, nil
}

// UnmarshalJSON rejects values outside the closed set.
func (r *Role) UnmarshalJSON(data []byte) error {
	parsed, err := ParseRole(unquote(data))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UserRole is one row of the user_roles table.
type UserRole struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Role      string    `json:"role" db:"role"` // raw value, parsed by the role resolver
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

func unquote(data []byte) string {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
