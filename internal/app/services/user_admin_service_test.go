package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/access"
	"github.com/yigit/campushub/internal/app/auth"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

var superAdmin = auth.Actor{UserID: 1, Roles: access.NewRoleSet(models.RoleSuperAdmin)}

func newUserAdminFixture() (UserAdminService, *fakeRoleStore, *access.IdentityBus) {
	users := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, Email: "root@campus.edu", IsActive: true},
		7: {ID: 7, Email: "asha@campus.edu", IsActive: true},
	}}
	roles := &fakeRoleStore{rows: map[int64][]models.Role{
		1: {models.RoleSuperAdmin},
		7: {models.RoleStudent},
	}}
	bus := access.NewIdentityBus()
	svc := NewUserAdminService(StatsSources{Users: users, Roles: roles}, bus, nil, fixedClock, zerolog.Nop())
	return svc, roles, bus
}

func TestAddThenRemoveRoleRestoresOriginal(t *testing.T) {
	svc, _, _ := newUserAdminFixture()
	ctx := context.Background()
	original := []models.Role{models.RoleStudent}

	afterAdd, err := svc.AddRole(ctx, superAdmin, 7, models.RoleEventAdmin)
	if err != nil {
		t.Fatalf("AddRole() error = %v", err)
	}
	if !access.NewRoleSet(afterAdd...).Has(models.RoleEventAdmin) {
		t.Errorf("after add = %v, want event_admin present", afterAdd)
	}

	afterRemove, err := svc.RemoveRole(ctx, superAdmin, 7, models.RoleEventAdmin)
	if err != nil {
		t.Fatalf("RemoveRole() error = %v", err)
	}
	if access.NewRoleSet(afterRemove...).Has(models.RoleEventAdmin) {
		t.Errorf("after remove = %v, want event_admin absent", afterRemove)
	}
	if !reflect.DeepEqual(afterRemove, original) {
		t.Errorf("roles = %v, want %v", afterRemove, original)
	}
}

func TestRoleChangesAreIdempotent(t *testing.T) {
	svc, roles, _ := newUserAdminFixture()
	ctx := context.Background()

	if _, err := svc.AddRole(ctx, superAdmin, 7, models.RoleStudent); err != nil {
		t.Fatalf("AddRole() error = %v", err)
	}
	if _, err := svc.RemoveRole(ctx, superAdmin, 7, models.RolePlacementCell); err != nil {
		t.Fatalf("RemoveRole() error = %v", err)
	}
	if roles.writes != 0 {
		t.Errorf("writes = %d, want 0 for no-op changes", roles.writes)
	}
}

func TestRoleChangePublishesRefresh(t *testing.T) {
	svc, _, bus := newUserAdminFixture()
	var got []access.IdentityChange
	bus.Subscribe(func(c access.IdentityChange) { got = append(got, c) })

	if _, err := svc.AddRole(context.Background(), superAdmin, 7, models.RolePlacementCell); err != nil {
		t.Fatalf("AddRole() error = %v", err)
	}
	if len(got) != 1 || got[0].Kind != access.Refreshed || got[0].UserID != 7 {
		t.Errorf("changes = %+v", got)
	}
}

func TestRoleChangeGuards(t *testing.T) {
	svc, _, _ := newUserAdminFixture()
	ctx := context.Background()

	tests := []struct {
		name   string
		actor  auth.Actor
		userID int64
		role   models.Role
		remove bool
		want   error
	}{
		{"non super admin", student(7), 7, models.RoleEventAdmin, false, apperrors.ErrForbidden},
		{"unknown role", superAdmin, 7, models.Role("dean"), false, apperrors.ErrUnknownRole},
		{"missing user", superAdmin, 99, models.RoleEventAdmin, false, apperrors.ErrResourceNotFound},
		{"own super admin role", superAdmin, 1, models.RoleSuperAdmin, true, apperrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.remove {
				_, err = svc.RemoveRole(ctx, tt.actor, tt.userID, tt.role)
			} else {
				_, err = svc.AddRole(ctx, tt.actor, tt.userID, tt.role)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
