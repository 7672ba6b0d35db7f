package access

import (
	"strings"

	"github.com/yigit/campushub/internal/app/models"
)

// Destination is one navigable route and the rule that guards it.
type Destination struct {
	Pattern      string        `json:"pattern"`
	RequireAuth  bool          `json:"requireAuth"`
	AllowedRoles []models.Role `json:"allowedRoles,omitempty"`
}

// Destinations is an ordered route table. The first matching pattern wins.
type Destinations struct {
	entries []Destination
}

// NewDestinations builds a table from entries in match order.
func NewDestinations(entries ...Destination) *Destinations {
	return &Destinations{entries: append([]Destination(nil), entries...)}
}

func public(pattern string) Destination {
	return Destination{Pattern: pattern}
}

func authenticated(pattern string) Destination {
	return Destination{Pattern: pattern, RequireAuth: true}
}

func gated(pattern string, roles ...models.Role) Destination {
	return Destination{Pattern: pattern, RequireAuth: true, AllowedRoles: roles}
}

var (
	superAdminOnly   = []models.Role{models.RoleSuperAdmin}
	placementManager = []models.Role{models.RolePlacementCell, models.RoleSuperAdmin}
	eventManager     = []models.Role{models.RoleEventAdmin, models.RoleSuperAdmin}
)

// DefaultDestinations is the application's route surface.
func DefaultDestinations() *Destinations {
	return NewDestinations(
		public("/"),
		public("/auth"),
		public("/events"),
		public("/events/:slug"),
		public("/placements"),
		public("/placements/:id"),

		authenticated("/dashboard"),
		authenticated("/profile"),
		authenticated("/my-events"),
		authenticated("/my-applications"),

		gated("/super-admin/*", superAdminOnly...),
		gated("/placement-admin/*", placementManager...),
		gated("/admin/*", eventManager...),
	)
}

// Match finds the destination for path. Query strings and trailing slashes are ignored.
func (d *Destinations) Match(path string) (Destination, bool) {
	segments := splitPath(path)
	for _, dest := range d.entries {
		if matchPattern(splitPath(dest.Pattern), segments) {
			return dest, true
		}
	}
	return Destination{}, false
}

// Lookup returns the entry declared with exactly this pattern.
func (d *Destinations) Lookup(pattern string) (Destination, bool) {
	for _, dest := range d.entries {
		if dest.Pattern == pattern {
			return dest, true
		}
	}
	return Destination{}, false
}

// All returns a copy of the table.
func (d *Destinations) All() []Destination {
	return append([]Destination(nil), d.entries...)
}

func splitPath(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// matchPattern supports ":name" for one segment and a trailing "*" for any
// remainder, including none.
func matchPattern(pattern, segments []string) bool {
	for i, p := range pattern {
		if p == "*" && i == len(pattern)-1 {
			return true
		}
		if i >= len(segments) {
			return false
		}
		if strings.HasPrefix(p, ":") {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if p != segments[i] {
			return false
		}
	}
	return len(pattern) == len(segments)
}
