// internal/tenant/context.go
//
// Per-request resolver Context.
//
// Context
// -------
// Middleware builds one *Context per request and stores it in the request
// context.  Handlers call the classification methods directly:
//
//	tc := tenant.MustFromContext(r.Context())
//	if tc.IsFrontend() { … tc.Course() … }
//
// A Context is a small state machine with two positions per session:
// uncontextualised, where Course follows the request host, and
// contextualised, where Course returns the course pinned in the session.
// Contextualize and Decontextualize move between them.
//
// Notes
// -----
//   - The host lookup runs at most once per Context and is memoised.
//   - The session is read at most once per Context; later writes through
//     Contextualize / Decontextualize update the in-memory copy as well.
//   - A Context belongs to one request goroutine.  It is not safe for
//     concurrent use.
package tenant

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/yanizio/coursehost/internal/course"
	"github.com/yanizio/coursehost/internal/metrics"
)

// Session keys written by Contextualize.
const (
	KeyCourse         = "coursehost:course"
	KeyContextualized = "coursehost:contextualized"
)

// Context answers frontend / backend / external questions for one request.
type Context struct {
	ctx     context.Context
	res     *Resolver
	rawHost string
	sess    Session

	looked bool
	result lookupResult

	sessLoaded bool
	pinned     *course.Course
}

// Host returns the request host as received, without port.
func (c *Context) Host() string { return c.rawHost }

// NormalizeHost returns the request host minus one leading "www" label.
func (c *Context) NormalizeHost() string { return NormalizeHost(c.rawHost) }

// Course returns the current course or nil.  A course pinned in the session
// wins over the hostname mapping.
func (c *Context) Course() *course.Course {
	if p := c.pinnedCourse(); p != nil {
		return p
	}
	return c.hostLookup().course
}

// IsFrontend reports whether a course is resolved for this request.
func (c *Context) IsFrontend() bool { return c.Course() != nil }

// IsBackend reports whether the normalised host is the main site.
func (c *Context) IsBackend() bool { return c.res.backend.Match(c.NormalizeHost()) }

// IsExternal reports whether the request is neither backend nor frontend,
// e.g. a robot hitting the server by IP.
func (c *Context) IsExternal() bool { return !c.IsBackend() && !c.IsFrontend() }

// Origin folds the three predicates into one value.  Backend wins when a
// host is both the main site and pinned to a course, so administrators who
// contextualise a course keep the backend UI.
func (c *Context) Origin() Origin {
	switch {
	case c.IsBackend():
		return Backend
	case c.IsFrontend():
		return Frontend
	default:
		return External
	}
}

// Contextualized reports whether a course is pinned in the session.
func (c *Context) Contextualized() bool { return c.pinnedCourse() != nil }

// Contextualize pins crs into the session, replacing any previous course.
// When register is true the Resolver's RegisterFunc runs afterwards; its
// error is logged, not returned.
func (c *Context) Contextualize(ctx context.Context, crs *course.Course, register bool) error {
	if crs == nil {
		return ErrNilCourse
	}
	if c.sess == nil {
		return ErrNoSession
	}

	raw, err := json.Marshal(crs)
	if err != nil {
		return err
	}
	if err := c.sess.Set(ctx, KeyCourse, string(raw)); err != nil {
		return err
	}
	if err := c.sess.Set(ctx, KeyContextualized, "1"); err != nil {
		return err
	}

	c.pinned = crs
	c.sessLoaded = true
	metrics.ContextualizeTotal.WithLabelValues("contextualize").Inc()
	c.res.log.Debug("course contextualized",
		zap.Uint64("course_id", crs.ID), zap.String("host", c.rawHost))

	if register && c.res.register != nil {
		if err := c.res.register(ctx, crs); err != nil {
			c.res.log.Warn("course register hook failed",
				zap.Uint64("course_id", crs.ID), zap.Error(err))
		}
	}
	return nil
}

// Decontextualize clears the pinned course.  It is a no-op when nothing is
// pinned or the request has no session.
func (c *Context) Decontextualize(ctx context.Context) error {
	if c.sess == nil {
		return nil
	}
	if err := c.sess.Delete(ctx, KeyCourse, KeyContextualized); err != nil {
		return err
	}
	c.pinned = nil
	c.sessLoaded = true
	metrics.ContextualizeTotal.WithLabelValues("decontextualize").Inc()
	return nil
}

//
// internals
//

// hostLookup memoises the domain-mapping query for this request.
func (c *Context) hostLookup() lookupResult {
	if !c.looked {
		c.result = c.res.lookup(c.ctx, c.NormalizeHost())
		c.looked = true
	}
	return c.result
}

// pinnedCourse reads the session once.  Store errors and undecodable
// payloads are logged and treated as "not contextualised".
func (c *Context) pinnedCourse() *course.Course {
	if c.sessLoaded {
		return c.pinned
	}
	c.sessLoaded = true
	if c.sess == nil {
		return nil
	}

	flag, ok, err := c.sess.Get(c.ctx, KeyContextualized)
	if err != nil {
		c.res.log.Warn("session read failed", zap.String("key", KeyContextualized), zap.Error(err))
		return nil
	}
	if !ok || flag != "1" {
		return nil
	}

	raw, ok, err := c.sess.Get(c.ctx, KeyCourse)
	if err != nil || !ok {
		c.res.log.Warn("contextualized session without course", zap.Error(err))
		return nil
	}
	var crs course.Course
	if err := json.Unmarshal([]byte(raw), &crs); err != nil {
		c.res.log.Warn("pinned course undecodable", zap.Error(err))
		return nil
	}
	c.pinned = &crs
	return c.pinned
}
