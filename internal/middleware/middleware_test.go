package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/access"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	jwtauth "github.com/yigit/campushub/internal/pkg/auth"
	"github.com/yigit/campushub/internal/pkg/cache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubLoaders struct {
	roles map[int64][]models.Role
}

func (s stubLoaders) GetProfileByUserID(_ context.Context, userID int64) (*models.Profile, error) {
	return &models.Profile{UserID: userID, Name: "User"}, nil
}

func (s stubLoaders) ListUserRoles(_ context.Context, userID int64) ([]models.UserRole, error) {
	var rows []models.UserRole
	for i, r := range s.roles[userID] {
		rows = append(rows, models.UserRole{ID: int64(i + 1), UserID: userID, Role: string(r)})
	}
	return rows, nil
}

type stubSessions struct{ loaders stubLoaders }

func (s stubSessions) Open(ctx context.Context, identity *access.Identity) (*access.Session, error) {
	session := access.NewSession(identity, s.loaders, s.loaders, zerolog.Nop())
	return session, session.Load(ctx)
}

type authHarness struct {
	jwt       *jwtauth.JWTService
	blacklist *cache.MemoryBlacklist
	mw        *AuthMiddleware
}

func newAuthHarness() *authHarness {
	h := &authHarness{
		jwt: jwtauth.NewJWTService(jwtauth.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenExp:  15 * time.Minute,
			RefreshTokenExp: time.Hour,
			TokenIssuer:     "campushub-test",
		}),
		blacklist: cache.NewMemoryBlacklist(),
	}
	sessions := stubSessions{loaders: stubLoaders{roles: map[int64][]models.Role{
		1: {models.RoleSuperAdmin},
		2: {models.RoleEventAdmin},
		7: {models.RoleStudent},
	}}}
	h.mw = NewAuthMiddleware(h.jwt, h.blacklist, sessions, access.NewGate(access.DefaultDestinations()), zerolog.Nop())
	return h
}

func (h *authHarness) token(t *testing.T, userID int64) string {
	t.Helper()
	pair, err := h.jwt.GenerateTokenPair(userID, fmt.Sprintf("user%d@campus.edu", userID))
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}
	return pair.AccessToken
}

func (h *authHarness) router() *gin.Engine {
	r := gin.New()
	whoami := func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		c.JSON(http.StatusOK, gin.H{"signedIn": ok, "userID": actor.UserID})
	}
	r.GET("/private", h.mw.JWTAuth(), whoami)
	r.GET("/public", h.mw.OptionalAuth(), whoami)
	r.GET("/admin/events", h.mw.JWTAuth(), h.mw.RequireDestination("/admin/*"), whoami)
	return r
}

func doGet(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	h := newAuthHarness()
	r := h.router()

	if w := doGet(r, "/private", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
	if w := doGet(r, "/private", "not-a-jwt"); w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", w.Code)
	}

	token := h.token(t, 7)
	w := doGet(r, "/private", token)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"userID":7`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestJWTAuthRejectsBlacklistedToken(t *testing.T) {
	h := newAuthHarness()
	token := h.token(t, 7)
	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if err := h.blacklist.Blacklist(context.Background(), claims.ID, time.Minute); err != nil {
		t.Fatalf("Blacklist() error = %v", err)
	}

	w := doGet(h.router(), "/private", token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	h := newAuthHarness()
	r := h.router()

	w := doGet(r, "/public", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"signedIn":false`) {
		t.Errorf("anonymous: status = %d, body = %s", w.Code, w.Body.String())
	}
	w = doGet(r, "/public", h.token(t, 7))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"signedIn":true`) {
		t.Errorf("signed in: status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := doGet(r, "/public", "broken"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token on optional route: status = %d, want 401", w.Code)
	}
}

func TestRequireDestination(t *testing.T) {
	h := newAuthHarness()
	r := h.router()

	tests := []struct {
		name   string
		userID int64
		want   int
	}{
		{"student denied", 7, http.StatusForbidden},
		{"event admin allowed", 2, http.StatusOK},
		{"super admin allowed", 1, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doGet(r, "/admin/events", h.token(t, tt.userID)); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequireDestinationUnknownPatternPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an undeclared pattern")
		}
	}()
	newAuthHarness().mw.RequireDestination("/nowhere/*")
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"auth required", apperrors.ErrAuthRequired, 401, dto.ErrorCodeUnauthorized, ""},
		{"expired token", apperrors.ErrTokenExpired, 401, dto.ErrorCodeExpiredToken, ""},
		{"forbidden", apperrors.NewForbiddenError("no access"), 403, dto.ErrorCodeForbidden, "no access"},
		{"not found", apperrors.NewResourceNotFoundError("event not found"), 404, dto.ErrorCodeResourceNotFound, "event not found"},
		{"validation", apperrors.NewValidationError("name is required"), 400, dto.ErrorCodeValidationFailed, "name is required"},
		{"unknown status", apperrors.NewCustomError(apperrors.ErrUnknownStatus, "unknown job status"), 400, dto.ErrorCodeValidationFailed, "unknown job status"},
		{"constraint", apperrors.NewConstraintError("events_slug_key", "duplicate key value"), 422, dto.ErrorCodeConstraintViolation, "duplicate key value"},
		{"conflict", apperrors.NewConflictError("stale"), 409, dto.ErrorCodeConflict, "stale"},
		{"transition", &apperrors.TransitionError{Entity: "job", From: "closed", To: "open"}, 409, dto.ErrorCodeInvalidTransition, `job status cannot change from "closed" to "open"`},
		{"already exists", apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "already registered"), 409, dto.ErrorCodeResourceAlreadyExists, "already registered"},
		{"wrapped", fmt.Errorf("loading: %w", apperrors.ErrResourceNotFound), 404, dto.ErrorCodeResourceNotFound, ""},
		{"unknown", errors.New("boom"), 500, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			var resp dto.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Success || resp.Error == nil || resp.Error.Code != tt.code {
				t.Fatalf("response = %+v", resp)
			}
			if tt.message != "" && resp.Error.Message != tt.message {
				t.Errorf("message = %q, want %q", resp.Error.Message, tt.message)
			}
		})
	}
}

func TestBindAndValidate(t *testing.T) {
	type body struct {
		Name string `json:"name" binding:"required"`
		Slug string `json:"slug" binding:"required,slug"`
	}

	tests := []struct {
		name    string
		payload string
		ok      bool
	}{
		{"valid", `{"name":"TechFest","slug":"tech-fest-2025"}`, true},
		{"bad slug", `{"name":"TechFest","slug":"Tech Fest"}`, false},
		{"missing name", `{"slug":"techfest"}`, false},
		{"malformed json", `{"name":`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			c.Request.Header.Set("Content-Type", "application/json")

			var b body
			if got := BindAndValidate(c, &b); got != tt.ok {
				t.Fatalf("BindAndValidate() = %v, want %v", got, tt.ok)
			}
			if !tt.ok && w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin must not be allowed")
	}
}
