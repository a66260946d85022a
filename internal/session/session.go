// Package session holds per-cashier state for the lifetime of a login: the
// auth token for the external API, the operator's identity and permissions,
// and the multi-cart checkout state. The original front-end kept all of this
// in browser-local storage; here it is an explicit object with a
// load-at-login / clear-on-logout lifecycle.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bakeflow/pos-checkout/internal/checkout"
	"github.com/bakeflow/pos-checkout/internal/permissions"
)

var (
	// ErrNotFound means the session id is unknown or was cleared.
	ErrNotFound = errors.New("session not found")
	// ErrExpired means the session's upstream token has lapsed.
	ErrExpired = errors.New("session token expired")
)

// Session is one cashier login. Checkout state is only mutated through
// Registry.Update so concurrent requests always work against the latest
// snapshot.
type Session struct {
	ID          string
	Token       string
	FullName    string
	Role        string
	Permissions permissions.Set
	TokenExpiry time.Time // zero when the token carries no exp claim

	Checkout *checkout.Session
	SaleCtx  checkout.SaleContext
	Discount float64 // standing discount percentage for the attached client
}

// Registry is an in-memory session store. All access goes through the mutex;
// Update applies mutations as a single read-modify-write step so rapid
// successive cart operations cannot lose updates.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	nowFunc  func() time.Time
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: map[string]*Session{},
		nowFunc:  time.Now,
	}
}

// Create registers a new session from a successful upstream login and
// returns it. The token's exp claim, when present, bounds the session
// lifetime; the signature is not checked here since the external API is the
// one verifying it on every forwarded call.
func (r *Registry) Create(token, fullName, role, permissionStr string) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		Token:       token,
		FullName:    fullName,
		Role:        role,
		Permissions: permissions.ParseSet(permissionStr),
		TokenExpiry: tokenExpiry(token),
		Checkout:    checkout.NewSession(),
		SaleCtx:     checkout.StandardSale(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns a snapshot copy of the session, or ErrNotFound/ErrExpired.
// The checkout state is deep-copied so callers can read it while concurrent
// requests mutate the live session through Update. Expired sessions are
// dropped on access.
func (r *Registry) Get(id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if r.expired(s) {
		delete(r.sessions, id)
		return Session{}, ErrExpired
	}
	snap := *s
	snap.Checkout = s.Checkout.Clone()
	return snap, nil
}

// Update applies fn to the live session under the registry lock. fn sees and
// mutates the current state, never a stale captured copy.
func (r *Registry) Update(id string, fn func(*Session)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if r.expired(s) {
		delete(r.sessions, id)
		return ErrExpired
	}
	fn(s)
	return nil
}

// Clear removes the session (logout). Clearing an unknown id is a no-op.
func (r *Registry) Clear(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) expired(s *Session) bool {
	return !s.TokenExpiry.IsZero() && r.nowFunc().After(s.TokenExpiry)
}

// tokenExpiry peeks at the exp claim without verifying the signature.
// Opaque or claimless tokens yield a zero time (no local expiry).
func tokenExpiry(token string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
