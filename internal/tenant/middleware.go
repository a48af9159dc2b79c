// internal/tenant/middleware.go
//
// Chi-compatible middleware that attaches a *Context to every request, plus
// small guards for route groups that only make sense on one origin.
//
// Workflow
// --------
//  1. session.Middleware (earlier in the chain) attaches the session.
//  2. Middleware asks SessionFunc for it, builds the *Context, classifies
//     the request once for metrics, and stores the Context in r.Context().
//  3. Handlers and guards read it back with FromContext.
package tenant

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/coursehost/internal/metrics"
	"github.com/yanizio/coursehost/internal/ua"
)

// SessionFunc returns the session bound to r, or nil when there is none.
type SessionFunc func(r *http.Request) Session

// ctxKey is unexported to avoid context-key collisions.
type ctxKey struct{}

// WithContext returns a copy of ctx carrying tc.
func WithContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext extracts the resolver Context.  ok is false when Middleware
// did not run for this request.
func FromContext(ctx context.Context) (*Context, bool) {
	tc, ok := ctx.Value(ctxKey{}).(*Context)
	return tc, ok && tc != nil
}

// MustFromContext panics when Middleware did not run.  Use only below
// Middleware in the chain.
func MustFromContext(ctx context.Context) *Context {
	tc, ok := FromContext(ctx)
	if !ok {
		panic(ErrNoContext)
	}
	return tc
}

// Middleware resolves the request origin and stores the *Context.
// sessions may be nil.
func Middleware(res *Resolver, sessions SessionFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess Session
			if sessions != nil {
				sess = sessions(r)
			}

			tc := res.For(r, sess)
			origin := tc.Origin()
			metrics.ResolutionsTotal.WithLabelValues(origin.String()).Inc()

			res.log.Debug("origin resolved",
				zap.String("host", tc.Host()),
				zap.Stringer("origin", origin),
				zap.Bool("contextualized", tc.Contextualized()))

			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), tc)))
		})
	}
}

// RequireFrontend answers 404 unless a course is resolved.
func RequireFrontend(next http.Handler) http.Handler {
	return require(func(tc *Context) bool { return tc.IsFrontend() }, next)
}

// RequireBackend answers 404 unless the request is on the main site.
func RequireBackend(next http.Handler) http.Handler {
	return require(func(tc *Context) bool { return tc.IsBackend() }, next)
}

// RejectExternal answers 404 for external origins.  The user-agent is
// logged so robots scanning the bare IP are easy to spot.
func RejectExternal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if tc.IsExternal() {
			info := ua.Parse(r.UserAgent())
			tc.res.log.Info("external origin rejected",
				zap.String("host", tc.Host()),
				zap.String("remote", r.RemoteAddr),
				zap.String("browser", info.Browser),
				zap.Bool("bot", info.IsBot))
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func require(allow func(*Context) bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, ok := FromContext(r.Context())
		if !ok {
			zap.L().Error("tenant guard without middleware", zap.String("path", r.URL.Path))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if !allow(tc) {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
