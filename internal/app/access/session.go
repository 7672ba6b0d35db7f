package access

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// ProfileLoader fetches the profile record of an identity.
type ProfileLoader interface {
	GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error)
}

// RoleLoader fetches the role-assignment rows of an identity.
type RoleLoader interface {
	ListUserRoles(ctx context.Context, userID int64) ([]models.UserRole, error)
}

// Snapshot is an immutable view of a Session at one version.
type Snapshot struct {
	Version     uint64
	Loading     bool
	Identity    *Identity
	Profile     *models.Profile
	Roles       RoleSet
	RolesLoaded bool
	Err         error
}

// Authenticated reports whether an identity is present.
func (s Snapshot) Authenticated() bool {
	return s.Identity != nil
}

// PrimaryRole is the highest-priority role. A signed-in identity without roles
// counts as a student; no identity means no role.
func (s Snapshot) PrimaryRole() models.Role {
	if s.Identity == nil {
		return ""
	}
	if r, ok := s.Roles.Primary(); ok {
		return r
	}
	return models.RoleStudent
}

// Landing is the default dashboard for the snapshot's primary role.
func (s Snapshot) Landing() string {
	return DefaultDestination(s.PrimaryRole())
}

// Session holds the identity, profile and roles behind one client session.
// It is built explicitly and handed to whoever needs it; there is no global instance.
type Session struct {
	profiles ProfileLoader
	roles    RoleLoader
	logger   zerolog.Logger

	mu          sync.RWMutex
	identity    *Identity
	profile     *models.Profile
	roleSet     RoleSet
	rolesLoaded bool
	loading     bool
	err         error
	version     uint64 // bumped on every state change
	fetchGen    uint64 // identifies the newest in-flight fetch

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(Snapshot)

	detach func()
}

// NewSession creates a session for identity, which may be nil. A session with
// an identity starts in the loading state until Load completes.
func NewSession(identity *Identity, profiles ProfileLoader, roles RoleLoader, logger zerolog.Logger) *Session {
	return &Session{
		profiles: profiles,
		roles:    roles,
		logger:   logger,
		identity: identity,
		loading:  identity != nil,
		roleSet:  NewRoleSet(),
		subs:     make(map[int]func(Snapshot)),
	}
}

// Attach subscribes the session to identity changes of its own identity: a
// sign-out elsewhere clears it, and a refresh (new roles, new profile) re-fetches
// profile and roles using ctx. Close detaches.
func (s *Session) Attach(ctx context.Context, bus *IdentityBus) {
	if bus == nil {
		return
	}
	unsubscribe := bus.Subscribe(func(change IdentityChange) {
		s.mu.RLock()
		same := s.identity != nil && s.identity.UserID == change.UserID
		s.mu.RUnlock()
		if !same {
			return
		}

		switch change.Kind {
		case SignedOut:
			s.SignOut()
		case Refreshed:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn().Err(err).Int64("userID", change.UserID).Msg("Failed to refresh session after identity change")
			}
		}
	})

	s.mu.Lock()
	prev := s.detach
	s.detach = unsubscribe
	s.mu.Unlock()
	if prev != nil {
		prev()
	}
}

// Close releases the bus subscription and drops all subscribers.
func (s *Session) Close() {
	s.mu.Lock()
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()
	if detach != nil {
		detach()
	}

	s.subMu.Lock()
	s.subs = make(map[int]func(Snapshot))
	s.subMu.Unlock()
}

// Subscribe registers fn to receive a snapshot after every state change.
func (s *Session) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Version returns the current state version.
func (s *Session) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Session) snapshotLocked() Snapshot {
	var id *Identity
	if s.identity != nil {
		cp := *s.identity
		id = &cp
	}
	return Snapshot{
		Version:     s.version,
		Loading:     s.loading,
		Identity:    id,
		Profile:     s.profile,
		Roles:       s.roleSet,
		RolesLoaded: s.rolesLoaded,
		Err:         s.err,
	}
}

func (s *Session) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Load fetches profile and roles for the session identity, entering the loading
// state first. Without an identity it settles immediately.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.identity == nil {
		s.loading = false
		s.version++
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		return nil
	}
	s.fetchGen++
	gen := s.fetchGen
	identity := *s.identity
	s.loading = true
	s.rolesLoaded = false
	s.err = nil
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	return s.fetch(ctx, gen, identity)
}

// Refresh re-fetches profile and roles after a mutation, keeping the current
// state visible until the new data arrives.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return nil
	}
	s.fetchGen++
	gen := s.fetchGen
	identity := *s.identity
	s.mu.Unlock()

	return s.fetch(ctx, gen, identity)
}

// SignOut clears the session and notifies subscribers. Fetches still in flight
// are discarded when they complete.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.identity = nil
	s.profile = nil
	s.roleSet = NewRoleSet()
	s.rolesLoaded = false
	s.loading = false
	s.err = nil
	s.fetchGen++
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Session) fetch(ctx context.Context, gen uint64, identity Identity) error {
	profile, err := s.profiles.GetProfileByUserID(ctx, identity.UserID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		s.fail(gen, identity, err)
		return err
	}
	if err != nil {
		profile = nil
	}

	if !s.apply(gen, func() {
		s.profile = profile
		s.loading = false
	}) {
		return nil
	}

	rows, err := s.roles.ListUserRoles(ctx, identity.UserID)
	if err != nil {
		s.fail(gen, identity, err)
		return err
	}

	roleSet, invalid := ResolveRoles(rows)
	for _, e := range invalid {
		s.logger.Warn().Err(e).Int64("userID", identity.UserID).Msg("Ignoring invalid role assignment")
	}

	s.apply(gen, func() {
		s.roleSet = roleSet
		s.rolesLoaded = true
	})
	return nil
}

// apply runs mutate only if gen is still the newest fetch, then notifies.
func (s *Session) apply(gen uint64, mutate func()) bool {
	s.mu.Lock()
	if gen != s.fetchGen {
		s.mu.Unlock()
		s.logger.Debug().Uint64("generation", gen).Msg("Discarding stale session fetch")
		return false
	}
	mutate()
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return true
}

// fail leaves the identity absent, not loading, and records err.
func (s *Session) fail(gen uint64, identity Identity, err error) {
	s.logger.Error().Err(err).Int64("userID", identity.UserID).Msg("Failed to load session")
	s.apply(gen, func() {
		s.identity = nil
		s.profile = nil
		s.roleSet = NewRoleSet()
		s.rolesLoaded = false
		s.loading = false
		s.err = err
	})
}
