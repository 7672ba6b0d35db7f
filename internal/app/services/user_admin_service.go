package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/access"
	"github.com/yigit/campushub/internal/app/auth"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/helpers"
)

// UserAdminService is the super admin's view of users, roles and system counts.
type UserAdminService interface {
	ListUsers(ctx context.Context, actor auth.Actor, filter dto.UserFilterRequest, page helpers.Page) (*dto.PaginatedResponse, error)
	AddRole(ctx context.Context, actor auth.Actor, userID int64, role models.Role) ([]models.Role, error)
	RemoveRole(ctx context.Context, actor auth.Actor, userID int64, role models.Role) ([]models.Role, error)
	Stats(ctx context.Context, actor auth.Actor) (*dto.SystemStats, error)
}

// StatsSources are the stores counted on the dashboard.
type StatsSources struct {
	Users         UserStore
	Roles         RoleStore
	Events        EventStore
	Registrations RegistrationStore
	Companies     CompanyStore
	Jobs          JobStore
	Applications  ApplicationStore
	Placements    PlacementResultStore
}

type userAdminServiceImpl struct {
	src      StatsSources
	bus      *access.IdentityBus
	notifier Notifier
	clock    helpers.Clock
	logger   zerolog.Logger
}

// NewUserAdminService creates a new UserAdminService
func NewUserAdminService(src StatsSources, bus *access.IdentityBus, notifier Notifier, clock helpers.Clock, logger zerolog.Logger) UserAdminService {
	if clock == nil {
		clock = helpers.SystemClock
	}
	return &userAdminServiceImpl{src: src, bus: bus, notifier: notifier, clock: clock, logger: logger}
}

// ListUsers pages through users matching the filter
func (s *userAdminServiceImpl) ListUsers(ctx context.Context, actor auth.Actor, filter dto.UserFilterRequest, page helpers.Page) (*dto.PaginatedResponse, error) {
	if err := auth.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}

	f := repositories.UserListFilter{
		Search: strings.TrimSpace(filter.Search),
		Limit:  page.Limit(),
		Offset: page.Offset(),
	}
	if filter.Role != "" {
		role, err := models.ParseRole(filter.Role)
		if err != nil {
			return nil, err
		}
		f.Role = role
	}

	rows, total, err := s.src.Users.ListUsers(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	items := make([]dto.UserWithRoles, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.UserWithRoles{
			UserID:     row.UserID,
			Email:      row.Email,
			Name:       row.Name,
			StudentID:  row.StudentID,
			Department: row.Department,
			IsActive:   row.IsActive,
			Roles:      s.parseRoles(row.UserID, row.Roles),
			CreatedAt:  row.CreatedAt,
		})
	}

	return &dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page),
	}, nil
}

func (s *userAdminServiceImpl) parseRoles(userID int64, values []string) []models.Role {
	roles := make([]models.Role, 0, len(values))
	for _, v := range values {
		role, err := models.ParseRole(v)
		if err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Skipping invalid stored role")
			continue
		}
		roles = append(roles, role)
	}
	return roles
}

// AddRole grants role to a user. Granting a role the user already has is a no-op.
func (s *userAdminServiceImpl) AddRole(ctx context.Context, actor auth.Actor, userID int64, role models.Role) ([]models.Role, error) {
	if err := s.checkRoleChange(ctx, actor, userID, role); err != nil {
		return nil, err
	}

	current, err := s.currentRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.Has(role) {
		return current.Roles(), nil
	}

	if err := s.src.Roles.AddRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("failed to add role: %w", err)
	}
	return s.afterRoleChange(ctx, actor, userID, role, "granted")
}

// RemoveRole revokes role from a user. Revoking a missing role is a no-op.
// A super admin cannot revoke their own super_admin role.
func (s *userAdminServiceImpl) RemoveRole(ctx context.Context, actor auth.Actor, userID int64, role models.Role) ([]models.Role, error) {
	if err := s.checkRoleChange(ctx, actor, userID, role); err != nil {
		return nil, err
	}
	if userID == actor.UserID && role == models.RoleSuperAdmin {
		return nil, apperrors.NewForbiddenError("you cannot remove your own super_admin role")
	}

	current, err := s.currentRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !current.Has(role) {
		return current.Roles(), nil
	}

	if err := s.src.Roles.RemoveRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("failed to remove role: %w", err)
	}
	return s.afterRoleChange(ctx, actor, userID, role, "revoked")
}

func (s *userAdminServiceImpl) checkRoleChange(ctx context.Context, actor auth.Actor, userID int64, role models.Role) error {
	if err := auth.RequireSuperAdmin(actor); err != nil {
		return err
	}
	if !role.Valid() {
		return apperrors.NewCustomError(apperrors.ErrUnknownRole, "unknown role: "+string(role))
	}
	if _, err := s.src.Users.GetUserByID(ctx, userID); err != nil {
		return err
	}
	return nil
}

func (s *userAdminServiceImpl) currentRoles(ctx context.Context, userID int64) (access.RoleSet, error) {
	rows, err := s.src.Roles.ListUserRoles(ctx, userID)
	if err != nil {
		return access.RoleSet{}, fmt.Errorf("failed to list roles: %w", err)
	}
	set, invalid := access.ResolveRoles(rows)
	for _, e := range invalid {
		s.logger.Warn().Err(e).Int64("userID", userID).Msg("Ignoring invalid role assignment")
	}
	return set, nil
}

func (s *userAdminServiceImpl) afterRoleChange(ctx context.Context, actor auth.Actor, userID int64, role models.Role, verb string) ([]models.Role, error) {
	updated, err := s.currentRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("actorID", actor.UserID).
		Int64("userID", userID).
		Str("role", string(role)).
		Str("change", verb).
		Msg("Role assignment changed")

	if s.bus != nil {
		s.bus.Publish(access.IdentityChange{Kind: access.Refreshed, UserID: userID, At: s.clock()})
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, Notification{
			UserID: userID,
			Kind:   NotifyRolesChanged,
			Title:  "Your roles have changed",
			Body:   fmt.Sprintf("The %s role was %s on your account.", role, verb),
			Link:   access.DefaultDestination(primaryOf(updated)),
			Data:   map[string]interface{}{"roles": updated.Roles()},
		})
	}
	return updated.Roles(), nil
}

func primaryOf(set access.RoleSet) models.Role {
	if r, ok := set.Primary(); ok {
		return r
	}
	return models.RoleStudent
}

// Stats gathers the dashboard counts
func (s *userAdminServiceImpl) Stats(ctx context.Context, actor auth.Actor) (*dto.SystemStats, error) {
	if err := auth.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}

	var (
		stats dto.SystemStats
		err   error
	)
	counters := []struct {
		name string
		dst  *int64
		fn   func(context.Context) (int64, error)
	}{
		{"users", &stats.Users, s.src.Users.CountUsers},
		{"events", &stats.Events, s.src.Events.CountEvents},
		{"sub-events", &stats.SubEvents, s.src.Events.CountSubEvents},
		{"registrations", &stats.Registrations, s.src.Registrations.CountRegistrations},
		{"companies", &stats.Companies, s.src.Companies.CountCompanies},
		{"jobs", &stats.Jobs, s.src.Jobs.CountJobs},
		{"applications", &stats.Applications, s.src.Applications.CountApplications},
		{"placements", &stats.Placements, s.src.Placements.CountPlacements},
	}
	for _, c := range counters {
		if *c.dst, err = c.fn(ctx); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.name, err)
		}
	}

	if stats.RoleCounts, err = s.src.Roles.CountByRole(ctx); err != nil {
		return nil, fmt.Errorf("failed to count roles: %w", err)
	}
	return &stats, nil
}
