package tree

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cartable/internal/auth"
	"cartable/internal/domain/services"
	"cartable/internal/metrics"

	"golang.org/x/sync/singleflight"
)

// DefaultIdleTimeout is how long an unused controller is kept.
const DefaultIdleTimeout = 30 * time.Minute

type registryEntry struct {
	ctrl      *Controller
	session   *auth.Session
	lastUsed  time.Time
	expiresAt time.Time // zero when the token carries no readable expiry
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTimeout evicts controllers unused for d. Zero keeps them until Drop
// or token expiry.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d >= 0 {
			r.idleTimeout = d
		}
	}
}

// WithControllerOptions applies opts to every controller the registry creates.
func WithControllerOptions(opts ...Option) RegistryOption {
	return func(r *Registry) {
		r.ctrlOpts = append(r.ctrlOpts, opts...)
	}
}

// Registry holds one Controller per user key for the gateway.
//
// Keys must be unforgeable: a verified token subject, or auth.UserKey (a
// digest of the whole token). A token is only ever stored under its own key.
type Registry struct {
	client      services.HierarchyClient
	labels      Labels
	logger      *slog.Logger
	ctrlOpts    []Option
	idleTimeout time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
	loads   singleflight.Group
}

// NewRegistry creates an empty registry.
func NewRegistry(client services.HierarchyClient, labels Labels, logger *slog.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		client:      client,
		labels:      labels,
		logger:      logger,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		entries:     make(map[string]*registryEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the user's controller, creating it on first use and loading
// the progressions once. Concurrent first requests share a single load.
// Idle and expired controllers of other users are evicted on the way.
func (r *Registry) Get(ctx context.Context, userKey, token string) (services.TreeController, error) {
	r.mu.Lock()
	now := r.now()
	r.evictLocked(now, userKey)

	e, ok := r.entries[userKey]
	if !ok {
		session := auth.NewSession(token, nil)
		e = &registryEntry{
			ctrl:    NewController(r.client, session, r.labels, r.logger.With("user", userKey), r.ctrlOpts...),
			session: session,
		}
		r.entries[userKey] = e
		metrics.SetTreeSessions(len(r.entries))
		r.logger.Debug("tree session created", "user", userKey)
	} else if token != "" && token != e.session.Token() {
		// Only reachable with verified keys: a refreshed token for the same subject.
		e.session.SetToken(token)
	}
	e.lastUsed = now
	e.expiresAt = tokenExpiry(token)
	r.mu.Unlock()

	if e.ctrl.Loaded() {
		return e.ctrl, nil
	}

	// The load outlives the request that triggered it: other callers wait on it.
	_, err, _ := r.loads.Do(userKey, func() (interface{}, error) {
		if e.ctrl.Loaded() {
			return nil, nil
		}
		return nil, e.ctrl.Load(context.WithoutCancel(ctx))
	})
	return e.ctrl, err
}

// Drop forgets the user's controller.
func (r *Registry) Drop(userKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[userKey]; ok {
		e.session.Clear()
		delete(r.entries, userKey)
		metrics.SetTreeSessions(len(r.entries))
	}
}

// Lookup returns the user's controller if one exists.
func (r *Registry) Lookup(userKey string) (services.TreeController, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[userKey]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.ctrl, true
}

// evictLocked removes controllers whose token has expired or that sat unused
// past the idle timeout. Controllers with subscribers and the keep entry stay.
func (r *Registry) evictLocked(now time.Time, keep string) {
	evicted := 0
	for key, e := range r.entries {
		if key == keep || e.ctrl.Watched() {
			continue
		}
		expired := !e.expiresAt.IsZero() && !e.expiresAt.After(now)
		idle := r.idleTimeout > 0 && now.Sub(e.lastUsed) > r.idleTimeout
		if !expired && !idle {
			continue
		}
		// The session is left intact: a request may still be using this controller.
		delete(r.entries, key)
		evicted++
		r.logger.Debug("tree session evicted", "user", key, "expired", expired)
	}
	if evicted > 0 {
		metrics.SetTreeSessions(len(r.entries))
	}
}

func tokenExpiry(token string) time.Time {
	claims, err := auth.ParseClaims(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
