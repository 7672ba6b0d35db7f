package dto

import (
	"time"

	"github.com/yigit/campushub/internal/app/models"
)

// UserFilterRequest represents user filtering parameters
type UserFilterRequest struct {
	Search string `form:"search"`
	Role   string `form:"role"`
}

// UserWithRoles is a row of the super admin user table.
type UserWithRoles struct {
	UserID     int64         `json:"userId"`
	Email      string        `json:"email"`
	Name       string        `json:"name"`
	StudentID  *string       `json:"studentId,omitempty"`
	Department *string       `json:"department,omitempty"`
	IsActive   bool          `json:"isActive"`
	Roles      []models.Role `json:"roles"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// RoleChangeRequest names the role to add or remove
type RoleChangeRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// SystemStats are the headline counts of the super admin dashboard.
type SystemStats struct {
	Users         int64                 `json:"users"`
	Events        int64                 `json:"events"`
	SubEvents     int64                 `json:"subEvents"`
	Registrations int64                 `json:"registrations"`
	Companies     int64                 `json:"companies"`
	Jobs          int64                 `json:"jobs"`
	Applications  int64                 `json:"applications"`
	Placements    int64                 `json:"placements"`
	RoleCounts    map[models.Role]int64 `json:"roleCounts"`
}

// HomeResponse is the landing route for the caller.
type HomeResponse struct {
	PrimaryRole models.Role `json:"primaryRole,omitempty"`
	Landing     string      `json:"landing"`
}

// NavigationDecision is the gate's answer for one client-side route.
type NavigationDecision struct {
	State       string `json:"state" example:"ALLOWED"`
	Path        string `json:"path" example:"/admin/dashboard"`
	RedirectTo  string `json:"redirectTo,omitempty" example:"/auth"`
	ReturnTo    string `json:"returnTo,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty" example:"/auth?from=%2Fadmin%2Fdashboard"`
}
