package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/campushub/internal/app/models"
	appRepos "github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/campushub/internal/pkg/auth"
)

// Admin is the account granted super_admin on first start.
type Admin struct {
	Email    string
	Password string
	Name     string
}

// AccountStore is the slice of the user repository seeding needs.
type AccountStore interface {
	GetUserByEmail(ctx context.Context, email string) (*appModels.User, error)
	CreateAccount(ctx context.Context, acc appRepos.NewAccount) (*appModels.User, *appModels.Profile, error)
}

// RoleGranter adds a role idempotently.
type RoleGranter interface {
	AddRole(ctx context.Context, userID int64, role appModels.Role) error
}

// CreateDefaultData makes sure the configured super admin exists and holds the
// super_admin role. An existing account keeps its password.
func CreateDefaultData(ctx context.Context, users AccountStore, roles RoleGranter, admin Admin, lgr zerolog.Logger) error {
	if strings.TrimSpace(admin.Email) == "" {
		lgr.Info().Msg("No seed admin configured, skipping default data")
		return nil
	}

	lgr.Info().Str("email", admin.Email).Msg("Checking/Creating default super admin...")

	existing, err := users.GetUserByEmail(ctx, admin.Email)
	switch {
	case err == nil:
		if err := roles.AddRole(ctx, existing.ID, appModels.RoleSuperAdmin); err != nil {
			lgr.Error().Err(err).Int64("userID", existing.ID).Msg("Error granting super_admin to existing user")
			return err
		}
		lgr.Info().Int64("userID", existing.ID).Msg("Super admin already exists, role ensured")
		return nil
	case !errors.Is(err, apperrors.ErrResourceNotFound):
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}

	if admin.Password == "" {
		return errors.New("seed admin password is required to create the account")
	}
	hash, err := pkgAuth.HashPassword(admin.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	name := admin.Name
	if name == "" {
		name = "System Administrator"
	}
	user, _, err := users.CreateAccount(ctx, appRepos.NewAccount{
		Email:        admin.Email,
		PasswordHash: hash,
		Name:         name,
		Roles:        []appModels.Role{appModels.RoleStudent, appModels.RoleSuperAdmin},
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("adminID", user.ID).Msg("Default super admin created successfully")
	return nil
}
