package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/access"
	"github.com/yigit/campushub/internal/app/auth"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	jwtauth "github.com/yigit/campushub/internal/pkg/auth"
	"github.com/yigit/campushub/internal/pkg/cache"
)

// Context keys set by the auth middleware.
const (
	ContextUserID  = "userID"
	ContextEmail   = "email"
	ContextSession = "session"
)

// TokenValidator verifies access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwtauth.Claims, error)
}

// SessionOpener builds the loaded session of a request identity.
type SessionOpener interface {
	Open(ctx context.Context, identity *access.Identity) (*access.Session, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	tokens    TokenValidator
	blacklist cache.TokenBlacklist
	sessions  SessionOpener
	gate      *access.Gate
	logger    zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens TokenValidator, blacklist cache.TokenBlacklist, sessions SessionOpener, gate *access.Gate, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:    tokens,
		blacklist: blacklist,
		sessions:  sessions,
		gate:      gate,
		logger:    logger,
	}
}

// JWTAuth rejects requests without a valid, unrevoked access token and opens
// the request session.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return m.authenticate(true)
}

// OptionalAuth opens an anonymous session when no token is sent. A token that
// is sent must still be valid.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return m.authenticate(false)
}

func (m *AuthMiddleware) authenticate(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := m.identify(c)
		if err != nil && (required || !errors.Is(err, apperrors.ErrAuthRequired)) {
			HandleAPIError(c, err)
			return
		}

		ctx := c.Request.Context()
		session, err := m.sessions.Open(ctx, identity)
		if session != nil {
			defer session.Close()
		}
		if err != nil {
			HandleAPIError(c, fmt.Errorf("failed to load session: %w", err))
			return
		}

		c.Set(ContextSession, session)
		if identity != nil {
			c.Set(ContextUserID, identity.UserID)
			c.Set(ContextEmail, identity.Email)
			c.Request = c.Request.WithContext(access.WithIdentity(ctx, identity))
		}

		c.Next()
	}
}

// identify returns ErrAuthRequired when no token was sent at all.
func (m *AuthMiddleware) identify(c *gin.Context) (*access.Identity, error) {
	raw, err := bearerToken(c)
	if err != nil {
		return nil, err
	}

	claims, err := m.tokens.ValidateToken(raw)
	if err != nil {
		return nil, err
	}

	revoked, err := m.blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
	if err != nil {
		m.logger.Error().Err(err).Str("jti", claims.ID).Msg("Failed to check token blacklist")
		return nil, fmt.Errorf("error checking token blacklist: %w", err)
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	identity := &access.Identity{
		UserID:  claims.UserID,
		Email:   claims.Email,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// websocket upgrades, so a token query parameter is accepted as well.
func bearerToken(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		return jwtauth.ExtractBearerToken(header)
	}
	if token := c.Query("token"); token != "" {
		return token, nil
	}
	return "", apperrors.ErrAuthRequired
}

// RequireDestination guards a route group with the gate rule declared for
// pattern in the destination table. API callers get 401 or 403 where a browser
// would be redirected.
func (m *AuthMiddleware) RequireDestination(pattern string) gin.HandlerFunc {
	dest, ok := m.gate.Destinations().Lookup(pattern)
	if !ok {
		panic(fmt.Sprintf("middleware: no destination declared for %q", pattern))
	}

	return func(c *gin.Context) {
		var snap access.Snapshot
		if session, ok := CurrentSession(c); ok {
			snap = session.Snapshot()
		}

		decision := m.gate.Evaluate(snap, dest, c.Request.URL.Path)
		switch decision.State {
		case access.StateAllowed:
			c.Next()
		case access.StateUnauthenticated:
			HandleAPIError(c, apperrors.ErrAuthRequired)
		case access.StateDenied:
			HandleAPIError(c, apperrors.NewForbiddenError("you don't have access to this area"))
		default:
			// the session was loaded before this runs, so waiting states mean it never settled
			m.logger.Warn().Str("state", string(decision.State)).Str("path", decision.Path).Msg("Session not settled at gate")
			detail := dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, "Session is still loading")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponse(detail))
		}
	}
}

// CurrentSession returns the session opened for this request.
func CurrentSession(c *gin.Context) (*access.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	session, ok := v.(*access.Session)
	return session, ok && session != nil
}

// CurrentActor returns the signed-in caller, if any.
func CurrentActor(c *gin.Context) (auth.Actor, bool) {
	session, ok := CurrentSession(c)
	if !ok {
		return auth.Actor{}, false
	}
	return auth.ActorFromSnapshot(session.Snapshot())
}

// OptionalActor is CurrentActor as a pointer, nil for anonymous callers.
func OptionalActor(c *gin.Context) *auth.Actor {
	actor, ok := CurrentActor(c)
	if !ok {
		return nil
	}
	return &actor
}

// RequireActor returns the signed-in caller or writes a 401 and returns false.
func RequireActor(c *gin.Context) (auth.Actor, bool) {
	actor, ok := CurrentActor(c)
	if !ok {
		HandleAPIError(c, apperrors.ErrAuthRequired)
		return auth.Actor{}, false
	}
	return actor, true
}
