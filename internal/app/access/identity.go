package access

import (
	"context"
	"sync"
	"time"
)

// Identity is the authenticated subject behind a request.
type Identity struct {
	UserID    int64
	Email     string
	TokenID   string    // jti of the access token that proved it
	ExpiresAt time.Time // expiry of that token
}

// ChangeKind says what happened to an identity.
type ChangeKind string

const (
	SignedIn  ChangeKind = "signed_in"
	SignedOut ChangeKind = "signed_out"
	Refreshed ChangeKind = "refreshed"
)

// IdentityChange is published on the IdentityBus.
type IdentityChange struct {
	Kind   ChangeKind
	UserID int64
	At     time.Time
}

// IdentityBus fans identity changes out to subscribers. Subscribers are called
// synchronously, outside the bus lock, in no particular order.
type IdentityBus struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(IdentityChange)
}

// NewIdentityBus creates an empty bus.
func NewIdentityBus() *IdentityBus {
	return &IdentityBus{subs: make(map[int]func(IdentityChange))}
}

// Subscribe registers fn and returns a function that removes it.
func (b *IdentityBus) Subscribe(fn func(IdentityChange)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers change to every current subscriber.
func (b *IdentityBus) Publish(change IdentityChange) {
	if change.At.IsZero() {
		change.At = time.Now()
	}

	b.mu.RLock()
	fns := make([]func(IdentityChange), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(change)
	}
}

// Subscribers returns the number of live subscriptions.
func (b *IdentityBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

type identityKey struct{}

// WithIdentity stores the request identity in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// CurrentIdentity returns the identity stored in ctx, if any.
func CurrentIdentity(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
