// internal/tenant/resolver.go
//
// Resolver owns the long-lived collaborators needed to classify requests.
//
// Context
// -------
// A Resolver is built once at boot and shared by every request.  For each
// request it hands out a *Context (see context.go) which carries the host,
// the session handle, and the memoised lookup result.  The Resolver itself
// holds no per-request state, so it is safe for concurrent use.
//
// Lookup outcomes
// ---------------
// Internally a lookup ends in one of four states: found, not found, storage
// not ready, or failed.  Only "found" yields a course at the public
// boundary.  The other three collapse to nil but stay visible to logs and
// the `coursehost_lookup_total` counter.
package tenant

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/yanizio/coursehost/internal/course"
	"github.com/yanizio/coursehost/internal/metrics"
)

// Store is the read-only view of the domain-mapping tables.
// *course.Repository and *Cache both satisfy it.
type Store interface {
	// ByHost returns course.ErrNotFound when no mapping exists and
	// course.ErrSchemaNotReady when the tables are missing.
	ByHost(ctx context.Context, host string) (*course.Course, error)
	SchemaReady(ctx context.Context) (bool, error)
}

// Session is the per-user key-value store used for contextualisation.
// Get reports ok == false for a missing key; that is not an error.
type Session interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// RegisterFunc binds course-scoped services when a course is contextualised
// with register == true.  Errors are logged and otherwise ignored.
type RegisterFunc func(ctx context.Context, c *course.Course) error

// Resolver classifies hosts.  Zero value is unusable; use NewResolver.
type Resolver struct {
	store    Store
	backend  BackendMatcher
	register RegisterFunc
	log      *zap.Logger
	ready    atomic.Bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegisterFunc installs the hook run by Contextualize(…, true).
func WithRegisterFunc(fn RegisterFunc) Option {
	return func(r *Resolver) { r.register = fn }
}

// WithLogger overrides the global zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// NewResolver wires a Store and a BackendMatcher.
func NewResolver(store Store, backend BackendMatcher, opts ...Option) *Resolver {
	r := &Resolver{
		store:   store,
		backend: backend,
		log:     zap.L(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// For builds the per-request Context for r.  sess may be nil when the
// request carries no session; contextualisation is then unavailable.
func (res *Resolver) For(r *http.Request, sess Session) *Context {
	return res.NewContext(r.Context(), stripPort(r.Host), sess)
}

// NewContext builds a Context for callers outside net/http, such as the
// CLI.  host must not carry a port.
func (res *Resolver) NewContext(ctx context.Context, host string, sess Session) *Context {
	return &Context{
		ctx:     ctx,
		res:     res,
		rawHost: host,
		sess:    sess,
	}
}

// Classify is a one-shot helper: no session, one lookup.
func (res *Resolver) Classify(ctx context.Context, host string) (Origin, *course.Course) {
	c := res.NewContext(ctx, host, nil)
	return c.Origin(), c.Course()
}

//
// Lookup
//

type lookupStatus int

const (
	lookupFound lookupStatus = iota
	lookupNotFound
	lookupNotReady
	lookupFailed
)

func (s lookupStatus) String() string {
	switch s {
	case lookupFound:
		return "found"
	case lookupNotFound:
		return "not_found"
	case lookupNotReady:
		return "not_ready"
	default:
		return "failed"
	}
}

type lookupResult struct {
	status lookupStatus
	course *course.Course
	err    error
}

// lookup runs the domain-mapping query for a normalised host.
func (res *Resolver) lookup(ctx context.Context, host string) lookupResult {
	out := res.doLookup(ctx, host)
	metrics.LookupTotal.WithLabelValues(out.status.String()).Inc()

	switch out.status {
	case lookupNotReady:
		res.log.Debug("course schema not ready", zap.String("host", host), zap.Error(out.err))
	case lookupFailed:
		res.log.Warn("course lookup failed", zap.String("host", host), zap.Error(out.err))
	}
	return out
}

func (res *Resolver) doLookup(ctx context.Context, host string) lookupResult {
	if !res.schemaReady(ctx) {
		return lookupResult{status: lookupNotReady}
	}

	c, err := res.store.ByHost(ctx, host)
	switch {
	case err == nil && c != nil:
		return lookupResult{status: lookupFound, course: c}
	case err == nil, errors.Is(err, course.ErrNotFound):
		return lookupResult{status: lookupNotFound}
	case errors.Is(err, course.ErrSchemaNotReady):
		// Tables vanished after the probe succeeded; probe again next time.
		res.ready.Store(false)
		return lookupResult{status: lookupNotReady, err: err}
	default:
		return lookupResult{status: lookupFailed, err: err}
	}
}

// schemaReady probes the store until the tables exist, then remembers it.
func (res *Resolver) schemaReady(ctx context.Context) bool {
	if res.ready.Load() {
		return true
	}
	ok, err := res.store.SchemaReady(ctx)
	if err != nil {
		res.log.Debug("course schema probe failed", zap.Error(err))
		return false
	}
	if ok {
		res.ready.Store(true)
	}
	return ok
}
