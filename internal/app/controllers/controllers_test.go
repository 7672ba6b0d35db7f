package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/access"
	"github.com/yigit/campushub/internal/app/auth"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/services"
	"github.com/yigit/campushub/internal/middleware"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubLoaders map[int64][]models.Role

func (s stubLoaders) GetProfileByUserID(_ context.Context, userID int64) (*models.Profile, error) {
	return &models.Profile{UserID: userID, Name: "User"}, nil
}

func (s stubLoaders) ListUserRoles(_ context.Context, userID int64) ([]models.UserRole, error) {
	var rows []models.UserRole
	for i, r := range s[userID] {
		rows = append(rows, models.UserRole{ID: int64(i + 1), UserID: userID, Role: string(r)})
	}
	return rows, nil
}

var testRoles = stubLoaders{
	1: {models.RoleSuperAdmin},
	2: {models.RoleEventAdmin},
	7: {models.RoleStudent},
}

// withSession stands in for the auth middleware. userID 0 is anonymous.
func withSession(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		var identity *access.Identity
		if userID != 0 {
			identity = &access.Identity{UserID: userID, Email: "user@campus.edu", TokenID: "jti"}
			c.Set(middleware.ContextUserID, userID)
			c.Request = c.Request.WithContext(access.WithIdentity(c.Request.Context(), identity))
		}
		session := access.NewSession(identity, testRoles, testRoles, zerolog.Nop())
		if err := session.Load(c.Request.Context()); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		defer session.Close()
		c.Set(middleware.ContextSession, session)
		c.Next()
	}
}

func serve(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid response body %q: %v", w.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("invalid data %s: %v", env.Data, err)
		}
	}
	return env
}

func TestNavigationResolve(t *testing.T) {
	nav := NewNavigationController(access.NewGate(access.DefaultDestinations()))

	tests := []struct {
		name         string
		userID       int64
		path         string
		wantStatus   int
		wantState    string
		wantRedirect string
	}{
		{"anonymous on admin page", 0, "/admin/dashboard", http.StatusOK, "UNAUTHENTICATED", "/auth?from=%2Fadmin%2Fdashboard"},
		{"student on admin page", 7, "/admin/dashboard", http.StatusOK, "DENIED", access.StudentHome},
		{"event admin on admin page", 2, "/admin/dashboard", http.StatusOK, "ALLOWED", ""},
		{"super admin on placement page", 1, "/placement-admin/jobs", http.StatusOK, "ALLOWED", ""},
		{"anonymous on public page", 0, "/events/techfest", http.StatusOK, "ALLOWED", ""},
		{"unknown page", 7, "/nowhere", http.StatusNotFound, "", ""},
		{"missing path", 7, "", http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/navigation/resolve", withSession(tt.userID), nav.Resolve)

			target := "/navigation/resolve"
			if tt.path != "" {
				target += "?path=" + tt.path
			}
			w := serve(r, http.MethodGet, target, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var got dto.NavigationDecision
			decode(t, w, &got)
			if got.State != tt.wantState {
				t.Errorf("state = %q, want %q", got.State, tt.wantState)
			}
			if got.RedirectURL != tt.wantRedirect {
				t.Errorf("redirectUrl = %q, want %q", got.RedirectURL, tt.wantRedirect)
			}
		})
	}
}

func TestNavigationHome(t *testing.T) {
	nav := NewNavigationController(access.NewGate(access.DefaultDestinations()))

	tests := []struct {
		userID      int64
		wantStatus  int
		wantLanding string
	}{
		{1, http.StatusOK, access.SuperAdminHome},
		{2, http.StatusOK, access.EventAdminHome},
		{7, http.StatusOK, access.StudentHome},
		{0, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		r := gin.New()
		r.GET("/navigation/home", withSession(tt.userID), nav.Home)

		w := serve(r, http.MethodGet, "/navigation/home", "")
		if w.Code != tt.wantStatus {
			t.Fatalf("user %d: status = %d, want %d", tt.userID, w.Code, tt.wantStatus)
		}
		if tt.wantStatus != http.StatusOK {
			continue
		}
		var got dto.HomeResponse
		decode(t, w, &got)
		if got.Landing != tt.wantLanding {
			t.Errorf("user %d: landing = %q, want %q", tt.userID, got.Landing, tt.wantLanding)
		}
	}
}

type fakeAuth struct {
	Authenticator
	signedOut *access.Identity
}

func (f *fakeAuth) SignOut(_ context.Context, identity *access.Identity) error {
	f.signedOut = identity
	return nil
}

func TestAuthMeAndSignOut(t *testing.T) {
	svc := &fakeAuth{}
	ctrl := NewAuthController(svc, zerolog.Nop())

	r := gin.New()
	r.GET("/me", withSession(2), ctrl.Me)
	r.POST("/signout", withSession(2), ctrl.SignOut)
	r.GET("/anon/me", withSession(0), ctrl.Me)

	w := serve(r, http.MethodGet, "/me", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Me status = %d, body %s", w.Code, w.Body.String())
	}
	var me dto.SessionResponse
	decode(t, w, &me)
	if me.UserID != 2 || me.PrimaryRole != models.RoleEventAdmin || me.Landing != access.EventAdminHome {
		t.Errorf("Me = %+v", me)
	}

	if w := serve(r, http.MethodGet, "/anon/me", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous Me status = %d, want 401", w.Code)
	}

	w = serve(r, http.MethodPost, "/signout", "")
	if w.Code != http.StatusOK {
		t.Fatalf("SignOut status = %d", w.Code)
	}
	if svc.signedOut == nil || svc.signedOut.UserID != 2 {
		t.Errorf("SignOut identity = %+v", svc.signedOut)
	}
}

type fakeEvents struct {
	services.EventService
	viewer *auth.Actor
	err    error
}

func (f *fakeEvents) GetEventDetail(_ context.Context, slug string, viewer *auth.Actor) (*dto.EventDetailResponse, error) {
	f.viewer = viewer
	if f.err != nil {
		return nil, f.err
	}
	return &dto.EventDetailResponse{Event: models.Event{ID: 3, Slug: slug, Name: "TechFest", Status: models.EventStatusUpcoming}}, nil
}

func TestGetEventDetail(t *testing.T) {
	t.Run("anonymous viewer", func(t *testing.T) {
		svc := &fakeEvents{}
		r := gin.New()
		r.GET("/events/:slug", withSession(0), NewEventController(svc).GetEventDetail)

		w := serve(r, http.MethodGet, "/events/techfest", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if svc.viewer != nil {
			t.Errorf("viewer = %+v, want nil", svc.viewer)
		}
		var got dto.EventDetailResponse
		decode(t, w, &got)
		if got.Event.Slug != "techfest" {
			t.Errorf("slug = %q", got.Event.Slug)
		}
	})

	t.Run("signed-in viewer", func(t *testing.T) {
		svc := &fakeEvents{}
		r := gin.New()
		r.GET("/events/:slug", withSession(7), NewEventController(svc).GetEventDetail)

		if w := serve(r, http.MethodGet, "/events/techfest", ""); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if svc.viewer == nil || svc.viewer.UserID != 7 || !svc.viewer.Roles.Has(models.RoleStudent) {
			t.Errorf("viewer = %+v", svc.viewer)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeEvents{err: apperrors.NewResourceNotFoundError("event not found")}
		r := gin.New()
		r.GET("/events/:slug", withSession(0), NewEventController(svc).GetEventDetail)

		w := serve(r, http.MethodGet, "/events/missing", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
		if env := decode(t, w, nil); env.Success || env.Error == nil {
			t.Errorf("envelope = %+v", env)
		}
	})
}

func TestInvalidIDParam(t *testing.T) {
	r := gin.New()
	r.GET("/events/:id/coordinators", withSession(1), NewEventController(&fakeEvents{}).ListCoordinators)

	for _, id := range []string{"abc", "0", "-4"} {
		w := serve(r, http.MethodGet, "/events/"+id+"/coordinators", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", id, w.Code)
		}
	}
}

type fakeUserAdmin struct {
	services.UserAdminService
	removed models.Role
	added   models.Role
}

func (f *fakeUserAdmin) AddRole(_ context.Context, _ auth.Actor, _ int64, role models.Role) ([]models.Role, error) {
	if !role.Valid() {
		return nil, apperrors.ErrUnknownRole
	}
	f.added = role
	return []models.Role{models.RoleStudent, role}, nil
}

func (f *fakeUserAdmin) RemoveRole(_ context.Context, actor auth.Actor, userID int64, role models.Role) ([]models.Role, error) {
	if actor.UserID == userID && role == models.RoleSuperAdmin {
		return nil, apperrors.NewForbiddenError("you cannot remove your own super_admin role")
	}
	f.removed = role
	return []models.Role{models.RoleStudent}, nil
}

func TestUserRoleChanges(t *testing.T) {
	svc := &fakeUserAdmin{}
	ctrl := NewUserController(svc)
	r := gin.New()
	r.POST("/users/:id/roles", withSession(1), ctrl.AddRole)
	r.DELETE("/users/:id/roles/:role", withSession(1), ctrl.RemoveRole)

	w := serve(r, http.MethodPost, "/users/7/roles", `{"role":"placement_cell"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("AddRole status = %d, body %s", w.Code, w.Body.String())
	}
	if svc.added != models.RolePlacementCell {
		t.Errorf("added = %q", svc.added)
	}

	if w := serve(r, http.MethodPost, "/users/7/roles", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("AddRole without role status = %d, want 400", w.Code)
	}

	if w := serve(r, http.MethodDelete, "/users/7/roles/event_admin", ""); w.Code != http.StatusOK {
		t.Fatalf("RemoveRole status = %d", w.Code)
	}
	if svc.removed != models.RoleEventAdmin {
		t.Errorf("removed = %q", svc.removed)
	}

	if w := serve(r, http.MethodDelete, "/users/1/roles/super_admin", ""); w.Code != http.StatusForbidden {
		t.Errorf("self demotion status = %d, want 403", w.Code)
	}
}
