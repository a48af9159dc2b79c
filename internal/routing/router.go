// internal/routing/router.go
//
// HTTP surface of the course host.
//
// Context
// -------
// Two route trees share one chi router:
//
//   - Infrastructure routes (/healthz, /metrics) run before tenant
//     resolution, so load balancers hitting the bare IP are never rejected
//     as external origins.
//   - Everything else runs behind session.Middleware and
//     tenant.Middleware, in that order, followed by the optional
//     ForceHTTPS and RejectExternal guards.
//
// Routes
// ------
//
//	GET    /                              classification of the request
//	POST   /_pathing/context/{courseID}   pin a course (main site only)
//	DELETE /_pathing/context              unpin (main site only)
//	GET    /healthz                       DB ping
//	GET    /metrics                       Prometheus exposition
package routing

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/coursehost/internal/course"
	"github.com/yanizio/coursehost/internal/middleware"
	"github.com/yanizio/coursehost/internal/session"
	"github.com/yanizio/coursehost/internal/tenant"
)

// CourseFinder loads a course by primary key.  *course.Repository
// satisfies it.
type CourseFinder interface {
	ByID(ctx context.Context, id uint64) (*course.Course, error)
}

// Deps lists what NewRouter needs.  Health may be nil.
type Deps struct {
	Resolver       *tenant.Resolver
	Courses        CourseFinder
	Sessions       session.Store
	Cookie         session.CookieOptions
	Health         func(ctx context.Context) error
	ForceHTTPS     bool
	RejectExternal bool
	Log            *zap.Logger
}

// NewRouter builds the root handler.
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.L()
	}
	h := &handlers{courses: d.Courses, health: d.Health, log: d.Log}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Security(d.ForceHTTPS))

	r.Get("/healthz", h.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(tr chi.Router) {
		tr.Use(session.Middleware(d.Sessions, d.Cookie))
		tr.Use(tenant.Middleware(d.Resolver, sessionOf))
		if d.ForceHTTPS {
			tr.Use(middleware.ForceHTTPS)
		}
		if d.RejectExternal {
			tr.Use(tenant.RejectExternal)
		}

		tr.Get("/", h.classify)

		tr.Route("/_pathing/context", func(cr chi.Router) {
			cr.Use(tenant.RequireBackend)
			cr.Post("/{courseID}", h.contextualize)
			cr.Delete("/", h.decontextualize)
		})
	})

	return r
}

// sessionOf adapts the session handle to tenant.Session.  The explicit nil
// keeps a typed-nil *Handle out of the interface.
func sessionOf(r *http.Request) tenant.Session {
	h, ok := session.FromContext(r.Context())
	if !ok {
		return nil
	}
	return h
}
