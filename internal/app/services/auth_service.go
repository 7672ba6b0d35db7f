package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/access"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/auth"
	"github.com/yigit/campushub/internal/pkg/cache"
	"github.com/yigit/campushub/internal/pkg/helpers"
	"github.com/yigit/campushub/internal/pkg/validation"
)

// AuthService handles authentication operations
type AuthService struct {
	users      UserStore
	tokens     TokenStore
	jwtService *auth.JWTService
	blacklist  cache.TokenBlacklist
	bus        *access.IdentityBus
	sessions   *SessionFactory
	clock      helpers.Clock
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserStore,
	tokens TokenStore,
	jwtService *auth.JWTService,
	blacklist cache.TokenBlacklist,
	bus *access.IdentityBus,
	sessions *SessionFactory,
	clock helpers.Clock,
	logger zerolog.Logger,
) *AuthService {
	if clock == nil {
		clock = helpers.SystemClock
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		jwtService: jwtService,
		blacklist:  blacklist,
		bus:        bus,
		sessions:   sessions,
		clock:      clock,
		logger:     logger,
	}
}

// validatePassword checks if password meets requirements
func validatePassword(password string) error {
	if len(password) < validation.PasswordMinLength {
		return apperrors.NewCustomError(apperrors.ErrInvalidPassword, "password must be at least 8 characters long")
	}

	var hasLetter, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasLetter {
		return apperrors.NewCustomError(apperrors.ErrInvalidPassword, "password must contain at least one letter")
	}
	if !hasDigit {
		return apperrors.NewCustomError(apperrors.ErrInvalidPassword, "password must contain at least one digit")
	}
	return nil
}

// SignUp creates the identity, its profile and the student role, then signs in.
func (s *AuthService) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validation.IsEmail(email) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidEmail, "invalid email format")
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if req.StudentID != nil && !validation.CompiledPatterns.StudentID.MatchString(*req.StudentID) {
		return nil, apperrors.NewValidationError("invalid student ID format")
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, _, err := s.users.CreateAccount(ctx, repositories.NewAccount{
		Email:        email,
		PasswordHash: hash,
		Name:         req.Name,
		StudentID:    req.StudentID,
		Department:   req.Department,
		Year:         req.Year,
		Roles:        []models.Role{models.RoleStudent},
	})
	if err != nil {
		return nil, fmt.Errorf("account creation error: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Account created")
	return s.issue(ctx, user, access.SignedIn)
}

// SignIn authenticates a user
func (s *AuthService) SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.AuthResponse, error) {
	if req.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record last login")
	}
	return s.issue(ctx, user, access.SignedIn)
}

// Refresh rotates a refresh token: the old one is revoked and a new pair issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	stored, err := s.tokens.GetToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored.IsRevoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if !s.clock().Before(stored.ExpiryDate) {
		_ = s.tokens.RevokeToken(ctx, refreshToken)
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.users.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokens.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}
	return s.issue(ctx, user, access.Refreshed)
}

// SignOut revokes every refresh token of the identity, blacklists the access
// token that made the request and tells subscribers the identity is gone.
func (s *AuthService) SignOut(ctx context.Context, identity *access.Identity) error {
	if identity == nil {
		return apperrors.ErrAuthRequired
	}

	if err := s.tokens.RevokeAllUserTokens(ctx, identity.UserID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	if identity.TokenID != "" && s.blacklist != nil {
		ttl := identity.ExpiresAt.Sub(s.clock())
		if err := s.blacklist.Blacklist(ctx, identity.TokenID, ttl); err != nil {
			return err
		}
	}

	if s.bus != nil {
		s.bus.Publish(access.IdentityChange{Kind: access.SignedOut, UserID: identity.UserID, At: s.clock()})
	}
	s.logger.Info().Int64("userID", identity.UserID).Msg("Signed out")
	return nil
}

// issue creates and stores a token pair and resolves the session for the response.
func (s *AuthService) issue(ctx context.Context, user *models.User, kind access.ChangeKind) (*dto.AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}
	if err := s.tokens.CreateToken(ctx, pair.RefreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	resp := &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           pair.AccessToken,
			TokenType:             "Bearer",
			ExpiresIn:             int64(pair.ExpiresIn),
			RefreshToken:          pair.RefreshToken,
			RefreshTokenExpiresIn: int64(pair.RefreshExpiresIn),
		},
	}

	if s.sessions != nil {
		session, err := s.sessions.Open(ctx, &access.Identity{UserID: user.ID, Email: user.Email})
		if err != nil {
			s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Session could not be resolved after sign-in")
		} else {
			resp.Session = DescribeSession(session.Snapshot())
		}
		session.Close()
	}

	if s.bus != nil {
		s.bus.Publish(access.IdentityChange{Kind: kind, UserID: user.ID, At: s.clock()})
	}
	return resp, nil
}
