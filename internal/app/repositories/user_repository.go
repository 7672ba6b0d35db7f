package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/dberrors"
	"github.com/yigit/campushub/internal/pkg/logger"
)

// NewAccount is what sign-up and seeding write in one transaction.
type NewAccount struct {
	Email        string
	PasswordHash string
	Name         string
	StudentID    *string
	Department   *string
	Year         *int32
	Roles        []models.Role
}

// UserListFilter narrows the user table.
type UserListFilter struct {
	Search string
	Role   models.Role
	Limit  uint64
	Offset uint64
}

// UserRepository handles users and their profiles
type UserRepository struct {
	tx       db.Transactor
	users    *Table[models.User]
	profiles *Table[models.Profile]
	roles    *Table[models.UserRole]
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(conn db.DBTX, tx db.Transactor) *UserRepository {
	return &UserRepository{
		tx:       tx,
		users:    NewTable[models.User](conn, "users", "user", true),
		profiles: NewTable[models.Profile](conn, "profiles", "profile", true),
		roles:    NewTable[models.UserRole](conn, "user_roles", "role assignment", false),
	}
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.users.GetByID(ctx, id)
}

// GetUserByEmail retrieves a user by email, ignoring case
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.users.QueryOne(ctx, squirrel.Expr("lower(email) = lower(?)", strings.TrimSpace(email)))
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.users.Exists(ctx, squirrel.Expr("lower(email) = lower(?)", strings.TrimSpace(email)))
}

// CreateAccount inserts the user, its profile and its roles atomically.
func (r *UserRepository) CreateAccount(ctx context.Context, acc NewAccount) (*models.User, *models.Profile, error) {
	var (
		user    *models.User
		profile *models.Profile
	)

	err := r.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		user, err = r.users.WithDB(tx).Insert(ctx, map[string]interface{}{
			"email":         strings.TrimSpace(acc.Email),
			"password_hash": acc.PasswordHash,
			"is_active":     true,
		})
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
				return apperrors.ErrEmailAlreadyExists
			}
			return err
		}

		profile, err = r.profiles.WithDB(tx).Insert(ctx, map[string]interface{}{
			"user_id":    user.ID,
			"name":       strings.TrimSpace(acc.Name),
			"email":      user.Email,
			"student_id": acc.StudentID,
			"department": acc.Department,
			"year":       acc.Year,
		})
		if err != nil {
			return err
		}

		for _, role := range acc.Roles {
			if err := insertRole(ctx, tx, user.ID, role); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return user, profile, nil
}

// UpdateLastLogin stamps the last successful sign-in.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	_, err := r.users.Update(ctx, userID, map[string]interface{}{
		"last_login_at": squirrel.Expr("now()"),
	})
	return err
}

// UpdatePassword replaces the stored hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	_, err := r.users.Update(ctx, userID, map[string]interface{}{"password_hash": hash})
	return err
}

// GetProfileByUserID retrieves the profile of a user
func (r *UserRepository) GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	return r.profiles.QueryOne(ctx, squirrel.Eq{"user_id": userID})
}

// UpdateProfile writes the given profile columns for a user.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, fields map[string]interface{}) (*models.Profile, error) {
	profile, err := r.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.profiles.Update(ctx, profile.ID, fields)
}

// ListUsers returns users with their profile basics and roles, newest first, plus the total.
func (r *UserRepository) ListUsers(ctx context.Context, f UserListFilter) ([]models.UserSummary, int64, error) {
	where := squirrel.And{}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		where = append(where, squirrel.Or{
			squirrel.Expr("lower(p.name) LIKE ?", pattern),
			squirrel.Expr("lower(u.email) LIKE ?", pattern),
		})
	}
	if f.Role != "" {
		where = append(where, squirrel.Expr("EXISTS (SELECT 1 FROM user_roles fr WHERE fr.user_id = u.id AND fr.role = ?)", string(f.Role)))
	}

	q := psql.Select(
		"u.id AS user_id", "u.email", "COALESCE(p.name, '') AS name", "p.student_id", "p.department",
		"u.is_active", "u.created_at",
		"COALESCE(array_agg(ur.role ORDER BY ur.role) FILTER (WHERE ur.role IS NOT NULL), '{}') AS roles",
	).
		From("users u").
		LeftJoin("profiles p ON p.user_id = u.id").
		LeftJoin("user_roles ur ON ur.user_id = u.id").
		Where(where).
		GroupBy("u.id", "p.id").
		OrderBy("u.created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	items, err := selectRows[models.UserSummary](ctx, r.users.db, q)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, 0, err
	}

	total, err := scalar[int64](ctx, r.users.db, psql.Select("COUNT(*)").
		From("users u").
		LeftJoin("profiles p ON p.user_id = u.id").
		Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	return items, total, nil
}

// CountUsers returns the number of accounts.
func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.users.Count(ctx, nil)
}
