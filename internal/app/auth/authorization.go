package auth

import (
	"context"
	"fmt"

	"github.com/yigit/campushub/internal/app/access"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// Actor is the caller of a service operation, with roles already resolved.
type Actor struct {
	UserID int64
	Roles  access.RoleSet
}

// ActorFromSnapshot builds an Actor from a loaded session. ok is false when the
// snapshot carries no identity.
func ActorFromSnapshot(snap access.Snapshot) (Actor, bool) {
	if snap.Identity == nil {
		return Actor{}, false
	}
	return Actor{UserID: snap.Identity.UserID, Roles: snap.Roles}, true
}

// IsSuperAdmin reports whether the actor holds super_admin.
func (a Actor) IsSuperAdmin() bool {
	return a.Roles.Has(models.RoleSuperAdmin)
}

// IsPlacementManager reports whether the actor may manage companies, jobs and applications.
func (a Actor) IsPlacementManager() bool {
	return a.Roles.HasAny(models.RolePlacementCell, models.RoleSuperAdmin)
}

// RequireRole returns ErrForbidden unless the actor holds one of roles.
func RequireRole(a Actor, roles ...models.Role) error {
	if a.Roles.HasAny(roles...) {
		return nil
	}
	return apperrors.NewForbiddenError("you don't have permission for this action")
}

// CoordinatorChecker answers whether a user coordinates an event.
type CoordinatorChecker interface {
	IsCoordinator(ctx context.Context, eventID, userID int64) (bool, error)
}

// AuthorizationService handles authorization checks that need the database
type AuthorizationService struct {
	coordinators CoordinatorChecker
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(coordinators CoordinatorChecker) *AuthorizationService {
	return &AuthorizationService{coordinators: coordinators}
}

// CanManageEvent reports whether the actor may edit an event's sub-events,
// registrations, results and gallery. Super admins manage every event; event
// admins only those they coordinate.
func (s *AuthorizationService) CanManageEvent(ctx context.Context, a Actor, eventID int64) (bool, error) {
	if a.UserID <= 0 {
		return false, nil
	}
	if a.IsSuperAdmin() {
		return true, nil
	}
	if !a.Roles.Has(models.RoleEventAdmin) {
		return false, nil
	}
	ok, err := s.coordinators.IsCoordinator(ctx, eventID, a.UserID)
	if err != nil {
		return false, fmt.Errorf("error checking coordinator: %w", err)
	}
	return ok, nil
}

// RequireEventManager is CanManageEvent returning ErrForbidden on a no.
func (s *AuthorizationService) RequireEventManager(ctx context.Context, a Actor, eventID int64) error {
	ok, err := s.CanManageEvent(ctx, a, eventID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewForbiddenError("you don't coordinate this event")
	}
	return nil
}

// RequirePlacementManager returns ErrForbidden unless the actor is placement cell or super admin.
func RequirePlacementManager(a Actor) error {
	if a.IsPlacementManager() {
		return nil
	}
	return apperrors.NewForbiddenError("placement cell access required")
}

// RequireSuperAdmin returns ErrForbidden unless the actor is a super admin.
func RequireSuperAdmin(a Actor) error {
	if a.IsSuperAdmin() {
		return nil
	}
	return apperrors.NewForbiddenError("super admin access required")
}
