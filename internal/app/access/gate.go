package access

import (
	"context"
	"net/url"

	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// State is the outcome of one gate evaluation.
type State string

const (
	StateLoading         State = "LOADING"
	StateUnauthenticated State = "UNAUTHENTICATED"
	StateRolePending     State = "ROLE_PENDING"
	StateDenied          State = "DENIED"
	StateAllowed         State = "ALLOWED"
)

// Redirect targets.
const (
	SignInPath    = "/auth"
	FallbackPath  = StudentHome
	ReturnToParam = "from"
)

// Decision is what the client should do with a navigation attempt.
type Decision struct {
	State      State  `json:"state"`
	Path       string `json:"path"`
	RedirectTo string `json:"redirectTo,omitempty"`
	ReturnTo   string `json:"returnTo,omitempty"`
}

// Settled reports whether the decision is final rather than a waiting state.
func (d Decision) Settled() bool {
	return d.State != StateLoading && d.State != StateRolePending
}

// RedirectURL is RedirectTo with the return path encoded as a query parameter.
func (d Decision) RedirectURL() string {
	if d.RedirectTo == "" || d.ReturnTo == "" {
		return d.RedirectTo
	}
	return d.RedirectTo + "?" + url.Values{ReturnToParam: []string{d.ReturnTo}}.Encode()
}

// Gate evaluates navigation attempts against the destination table.
type Gate struct {
	destinations *Destinations
	observe      func(State)
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithObserver calls fn with every settled or waiting state the gate produces.
func WithObserver(fn func(State)) GateOption {
	return func(g *Gate) { g.observe = fn }
}

// NewGate creates a gate over destinations.
func NewGate(destinations *Destinations, opts ...GateOption) *Gate {
	g := &Gate{destinations: destinations}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Destinations returns the table the gate consults.
func (g *Gate) Destinations() *Destinations {
	return g.destinations
}

// Evaluate applies dest's rule to one snapshot. It is a pure function of its inputs.
func (g *Gate) Evaluate(snap Snapshot, dest Destination, requested string) Decision {
	d := evaluate(snap, dest, requested)
	if g != nil && g.observe != nil {
		g.observe(d.State)
	}
	return d
}

func evaluate(snap Snapshot, dest Destination, requested string) Decision {
	if snap.Loading {
		return Decision{State: StateLoading, Path: requested}
	}

	gatedByRole := len(dest.AllowedRoles) > 0
	if (dest.RequireAuth || gatedByRole) && !snap.Authenticated() {
		return Decision{
			State:      StateUnauthenticated,
			Path:       requested,
			RedirectTo: SignInPath,
			ReturnTo:   requested,
		}
	}

	if !gatedByRole {
		return Decision{State: StateAllowed, Path: requested}
	}

	// Roles not loaded yet is different from loaded and empty: keep waiting.
	if !snap.RolesLoaded {
		return Decision{State: StateRolePending, Path: requested}
	}

	if snap.Roles.HasAny(dest.AllowedRoles...) {
		return Decision{State: StateAllowed, Path: requested}
	}

	return Decision{State: StateDenied, Path: requested, RedirectTo: FallbackPath}
}

// Resolve looks up the destination for path and evaluates it.
func (g *Gate) Resolve(snap Snapshot, path string) (Decision, error) {
	dest, ok := g.destinations.Match(path)
	if !ok {
		return Decision{}, apperrors.NewResourceNotFoundError("no such page: " + path)
	}
	return g.Evaluate(snap, dest, path), nil
}

// Decide evaluates path against the live session. When the session changes
// between taking the snapshot and reaching a decision, the stale decision is
// dropped and evaluation restarts from the new state.
func (g *Gate) Decide(ctx context.Context, session *Session, path string) (Decision, error) {
	dest, ok := g.destinations.Match(path)
	if !ok {
		return Decision{}, apperrors.NewResourceNotFoundError("no such page: " + path)
	}

	for {
		snap := session.Snapshot()
		d := evaluate(snap, dest, path)
		if session.Version() == snap.Version {
			if g.observe != nil {
				g.observe(d.State)
			}
			return d, nil
		}
		if err := ctx.Err(); err != nil {
			return Decision{State: StateLoading, Path: path}, err
		}
	}
}
