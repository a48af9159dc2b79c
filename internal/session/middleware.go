// internal/session/middleware.go
//
// Cookie-identified session handles.
//
// Context
// -------
// Middleware reads the session cookie, mints a fresh UUID when it is
// missing or malformed, and stores a *Handle in the request context.  The
// cookie only carries the ID; every value lives in the Store.
//
// Notes
// -----
//   - New IDs are written to the response before the handler runs, so a
//     handler that contextualises a course on the very first request still
//     ends up with a usable session.
//   - Secure is set only when the request arrived over TLS.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultCookieName names the session cookie when none is configured.
const DefaultCookieName = "coursehost_session"

// Handle binds a Store to one session ID.
type Handle struct {
	id    string
	store Store
}

// NewHandle is used by Middleware and tests.
func NewHandle(store Store, id string) *Handle {
	return &Handle{id: id, store: store}
}

// ID returns the session ID.
func (h *Handle) ID() string { return h.id }

// Get returns the value for key.  ok is false when the key is absent.
func (h *Handle) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := h.store.Get(ctx, h.id, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key.
func (h *Handle) Set(ctx context.Context, key, value string) error {
	return h.store.Set(ctx, h.id, key, value)
}

// Delete removes keys.
func (h *Handle) Delete(ctx context.Context, keys ...string) error {
	return h.store.Delete(ctx, h.id, keys...)
}

// Destroy removes every key of the session.
func (h *Handle) Destroy(ctx context.Context) error {
	return h.store.Destroy(ctx, h.id)
}

//
// Context plumbing
//

type handleKey struct{}

// WithHandle returns a copy of ctx carrying h.
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, handleKey{}, h)
}

// FromContext returns the session handle, if any.
func FromContext(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(handleKey{}).(*Handle)
	return h, ok && h != nil
}

//
// Middleware
//

// CookieOptions tunes the session cookie.
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
}

// Middleware attaches a *Handle for store to every request.
func Middleware(store Store, opts CookieOptions) func(http.Handler) http.Handler {
	if opts.Name == "" {
		opts.Name = DefaultCookieName
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 14 * 24 * time.Hour
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := readID(r, opts.Name)
			if !ok {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     opts.Name,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   r.TLS != nil, // only send over HTTPS
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(opts.MaxAge / time.Second),
				})
			}
			ctx := WithHandle(r.Context(), NewHandle(store, id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// readID returns the cookie value when it parses as a UUID.
func readID(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}
