package access

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

type fakeProfiles struct {
	mu      sync.Mutex
	profile *models.Profile
	err     error
	gate    chan struct{} // when set, loads block until it is closed
	started chan struct{}
}

func (f *fakeProfiles) GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.profile == nil {
		return nil, apperrors.ErrResourceNotFound
	}
	cp := *f.profile
	return &cp, nil
}

type fakeRoles struct {
	mu   sync.Mutex
	rows []models.UserRole
	err  error
}

func (f *fakeRoles) ListUserRoles(ctx context.Context, userID int64) ([]models.UserRole, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.UserRole(nil), f.rows...), f.err
}

func TestSessionLoadLifecycle(t *testing.T) {
	profiles := &fakeProfiles{profile: &models.Profile{UserID: 3, Name: "Ravi"}}
	roles := &fakeRoles{rows: []models.UserRole{{ID: 1, UserID: 3, Role: "event_admin"}}}
	s := NewSession(&Identity{UserID: 3}, profiles, roles, testLogger())

	if snap := s.Snapshot(); !snap.Loading || snap.RolesLoaded {
		t.Fatalf("new session = %+v, want loading", snap)
	}

	var seen []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) { seen = append(seen, snap) })
	defer unsubscribe()

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.Loading || !snap.RolesLoaded || snap.Profile == nil || snap.Profile.Name != "Ravi" {
		t.Fatalf("loaded snapshot = %+v", snap)
	}
	if snap.PrimaryRole() != models.RoleEventAdmin {
		t.Errorf("PrimaryRole() = %q", snap.PrimaryRole())
	}

	// loading, profile loaded (roles pending), roles loaded
	if len(seen) != 3 {
		t.Fatalf("notifications = %d, want 3", len(seen))
	}
	if seen[1].Loading || seen[1].RolesLoaded {
		t.Errorf("intermediate snapshot should be profile-ready, roles pending: %+v", seen[1])
	}
}

func TestSessionMissingProfileIsNotAnError(t *testing.T) {
	s := NewSession(&Identity{UserID: 9}, &fakeProfiles{}, &fakeRoles{}, testLogger())
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	snap := s.Snapshot()
	if !snap.Authenticated() || snap.Profile != nil || !snap.RolesLoaded {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSessionFetchFailureLeavesIdentityAbsent(t *testing.T) {
	boom := errors.New("connection refused")
	s := NewSession(&Identity{UserID: 4}, &fakeProfiles{err: boom}, &fakeRoles{}, testLogger())

	if err := s.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Load() error = %v, want %v", err, boom)
	}
	snap := s.Snapshot()
	if snap.Authenticated() || snap.Loading || !errors.Is(snap.Err, boom) {
		t.Errorf("snapshot after failure = %+v", snap)
	}
}

func TestSessionDiscardsStaleFetchAfterSignOut(t *testing.T) {
	profiles := &fakeProfiles{
		profile: &models.Profile{UserID: 5},
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := NewSession(&Identity{UserID: 5}, profiles, &fakeRoles{}, testLogger())

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()

	<-profiles.started
	s.SignOut()
	close(profiles.gate)

	if err := <-done; err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	snap := s.Snapshot()
	if snap.Authenticated() || snap.Profile != nil || snap.RolesLoaded {
		t.Errorf("stale fetch leaked into signed-out session: %+v", snap)
	}
}

func TestSessionSignOutViaBus(t *testing.T) {
	bus := NewIdentityBus()
	s := NewSession(&Identity{UserID: 6}, &fakeProfiles{profile: &models.Profile{UserID: 6}}, &fakeRoles{}, testLogger())
	s.Attach(context.Background(), bus)
	defer s.Close()

	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	notified := false
	s.Subscribe(func(snap Snapshot) { notified = !snap.Authenticated() })

	bus.Publish(IdentityChange{Kind: SignedOut, UserID: 99})
	if !s.Snapshot().Authenticated() {
		t.Fatal("sign-out of another user must not clear the session")
	}

	bus.Publish(IdentityChange{Kind: SignedOut, UserID: 6})
	if s.Snapshot().Authenticated() || !notified {
		t.Error("session should be cleared and subscribers notified")
	}

	s.Close()
	if bus.Subscribers() != 0 {
		t.Errorf("Close() left %d bus subscribers", bus.Subscribers())
	}
}

func TestSessionRefreshPicksUpRoleChanges(t *testing.T) {
	roles := &fakeRoles{}
	s := NewSession(&Identity{UserID: 8}, &fakeProfiles{profile: &models.Profile{UserID: 8}}, roles, testLogger())
	ctx := context.Background()
	if err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Roles.Has(models.RoleEventAdmin) {
		t.Fatal("unexpected role before refresh")
	}

	roles.mu.Lock()
	roles.rows = []models.UserRole{{ID: 1, UserID: 8, Role: "event_admin"}}
	roles.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if !s.Snapshot().Roles.Has(models.RoleEventAdmin) {
		t.Error("Refresh() did not pick up the new role")
	}
}

func TestSessionRefreshedViaBus(t *testing.T) {
	bus := NewIdentityBus()
	roles := &fakeRoles{}
	s := NewSession(&Identity{UserID: 9}, &fakeProfiles{profile: &models.Profile{UserID: 9}}, roles, testLogger())
	ctx := context.Background()
	s.Attach(ctx, bus)
	defer s.Close()

	if err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}

	roles.mu.Lock()
	roles.rows = []models.UserRole{{ID: 1, UserID: 9, Role: "placement_cell"}}
	roles.mu.Unlock()

	bus.Publish(IdentityChange{Kind: Refreshed, UserID: 42})
	if s.Snapshot().Roles.Has(models.RolePlacementCell) {
		t.Fatal("a refresh of another user must not re-fetch this session")
	}

	bus.Publish(IdentityChange{Kind: Refreshed, UserID: 9})
	snap := s.Snapshot()
	if !snap.Roles.Has(models.RolePlacementCell) || snap.PrimaryRole() != models.RolePlacementCell {
		t.Errorf("roles after refresh = %v, want placement_cell", snap.Roles.Roles())
	}
	if !snap.Authenticated() {
		t.Error("refresh must keep the identity")
	}
}

func TestAnonymousSessionSettles(t *testing.T) {
	s := NewSession(nil, &fakeProfiles{}, &fakeRoles{}, testLogger())
	if s.Snapshot().Loading {
		t.Fatal("anonymous session must not start loading")
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Authenticated() {
		t.Error("anonymous session became authenticated")
	}
}
