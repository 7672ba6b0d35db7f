package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
	"github.com/yigit/campushub/internal/pkg/dberrors"
)

// RoleRepository handles role assignments
type RoleRepository struct {
	roles *Table[models.UserRole]
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(conn db.DBTX) *RoleRepository {
	return &RoleRepository{roles: NewTable[models.UserRole](conn, "user_roles", "role assignment", false)}
}

// WithDB binds the repository to conn.
func (r *RoleRepository) WithDB(conn db.DBTX) *RoleRepository {
	return &RoleRepository{roles: r.roles.WithDB(conn)}
}

// ListUserRoles returns the raw role rows of a user.
func (r *RoleRepository) ListUserRoles(ctx context.Context, userID int64) ([]models.UserRole, error) {
	return r.roles.Query(ctx, ListOptions{
		Where:   squirrel.Eq{"user_id": userID},
		OrderBy: []string{"id"},
	})
}

// AddRole grants role. Granting a held role is a no-op.
func (r *RoleRepository) AddRole(ctx context.Context, userID int64, role models.Role) error {
	return insertRole(ctx, r.roles.db, userID, role)
}

// RemoveRole revokes role. Revoking a role that is not held is a no-op.
func (r *RoleRepository) RemoveRole(ctx context.Context, userID int64, role models.Role) error {
	_, err := r.roles.DeleteWhere(ctx, squirrel.Eq{"user_id": userID, "role": string(role)})
	return err
}

// CountByRole returns how many users hold each role.
func (r *RoleRepository) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	sql, args, err := psql.Select("role", "COUNT(*)").From("user_roles").GroupBy("role").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build role count query: %w", err)
	}
	rows, err := r.roles.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count roles: %w", err)
	}

	counts := make(map[models.Role]int64, len(models.RolePriority))
	for _, role := range models.RolePriority {
		counts[role] = 0
	}

	var (
		role  string
		count int64
	)
	_, err = pgx.ForEachRow(rows, []any{&role, &count}, func() error {
		if parsed, err := models.ParseRole(role); err == nil {
			counts[parsed] = count
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan role counts: %w", err)
	}
	return counts, nil
}

func insertRole(ctx context.Context, conn db.DBTX, userID int64, role models.Role) error {
	sql, args, err := psql.Insert("user_roles").
		Columns("user_id", "role").
		Values(userID, string(role)).
		Suffix("ON CONFLICT (user_id, role) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build role insert: %w", err)
	}
	if _, err := conn.Exec(ctx, sql, args...); err != nil {
		return dberrors.AsConstraintViolation(err)
	}
	return nil
}
