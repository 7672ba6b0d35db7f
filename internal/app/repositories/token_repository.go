package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/dberrors"
	"github.com/yigit/campushub/internal/pkg/logger"
)

// TokenRepository handles refresh token database operations
type TokenRepository struct {
	tokens *Table[models.RefreshToken]
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(conn db.DBTX) *TokenRepository {
	return &TokenRepository{tokens: NewTable[models.RefreshToken](conn, "refresh_tokens", "refresh token", false)}
}

// CreateToken creates a new refresh token
func (r *TokenRepository) CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	_, err := r.tokens.Insert(ctx, map[string]interface{}{
		"token":       token,
		"user_id":     userID,
		"expiry_date": expiryDate,
	})
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "refresh_tokens_token_key") {
			logger.Warn().Int64("userID", userID).Msg("Attempted to create duplicate token")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error creating refresh token")
		return err
	}
	return nil
}

// GetToken retrieves a stored refresh token by value
func (r *TokenRepository) GetToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, err := r.tokens.QueryOne(ctx, squirrel.Eq{"token": token})
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, apperrors.ErrTokenNotFound
	}
	return rt, err
}

// RevokeToken marks a single refresh token revoked
func (r *TokenRepository) RevokeToken(ctx context.Context, token string) error {
	rt, err := r.GetToken(ctx, token)
	if err != nil {
		return err
	}
	_, err = r.tokens.Update(ctx, rt.ID, map[string]interface{}{"is_revoked": true})
	return err
}

// RevokeAllUserTokens revokes every live refresh token of a user
func (r *TokenRepository) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	sql, args, err := psql.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"user_id": userID, "is_revoked": false}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.tokens.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error revoking user tokens")
		return err
	}
	return nil
}

// DeleteExpired removes tokens past their expiry and reports how many went.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.tokens.DeleteWhere(ctx, squirrel.Lt{"expiry_date": now})
}
