package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/access"
	"github.com/yigit/campushub/internal/app/models/dto"
)

// SessionFactory builds a loaded access.Session for a request identity.
type SessionFactory struct {
	profiles access.ProfileLoader
	roles    access.RoleLoader
	bus      *access.IdentityBus
	logger   zerolog.Logger
}

// NewSessionFactory creates a SessionFactory. bus may be nil.
func NewSessionFactory(profiles access.ProfileLoader, roles access.RoleLoader, bus *access.IdentityBus, logger zerolog.Logger) *SessionFactory {
	return &SessionFactory{profiles: profiles, roles: roles, bus: bus, logger: logger}
}

// Open creates a session for identity (nil for anonymous), attaches it to the
// identity bus and loads it. The caller must Close the session. A load failure
// is recorded in the snapshot and also returned.
func (f *SessionFactory) Open(ctx context.Context, identity *access.Identity) (*access.Session, error) {
	s := access.NewSession(identity, f.profiles, f.roles, f.logger)
	s.Attach(ctx, f.bus)
	if err := s.Load(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// DescribeSession renders a snapshot for API callers.
func DescribeSession(snap access.Snapshot) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		Profile:     snap.Profile,
		Roles:       snap.Roles.Roles(),
		PrimaryRole: snap.PrimaryRole(),
		Landing:     snap.Landing(),
	}
	if snap.Identity != nil {
		resp.UserID = snap.Identity.UserID
		resp.Email = snap.Identity.Email
	}
	return resp
}
