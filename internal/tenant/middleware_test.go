package tenant

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/coursehost/internal/course"
)

func serve(t *testing.T, h http.Handler, host string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = host
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_AttachesContext(t *testing.T) {
	store := newFakeStore(map[string]*course.Course{"courses.acme.com": tenantA})
	res := newTestResolver(store)
	sess := newFakeSession()

	var got *Context
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = MustFromContext(r.Context())
	})
	mw := Middleware(res, func(*http.Request) Session { return sess })

	serve(t, mw(next), "www.courses.acme.com:8443")

	if got == nil {
		t.Fatalf("no Context attached")
	}
	if got.Host() != "www.courses.acme.com" {
		t.Fatalf("Host = %q, port should be stripped", got.Host())
	}
	if c := got.Course(); c == nil || c.ID != tenantA.ID {
		t.Fatalf("course = %#v, want TenantA", c)
	}
	if got.sess != sess {
		t.Fatalf("session not wired into Context")
	}
}

func TestFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := FromContext(req.Context()); ok {
		t.Fatalf("FromContext ok without middleware")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("MustFromContext did not panic")
		}
	}()
	MustFromContext(req.Context())
}

func TestGuards(t *testing.T) {
	store := newFakeStore(map[string]*course.Course{"courses.acme.com": tenantA})
	mw := Middleware(newTestResolver(store), nil)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		name  string
		guard func(http.Handler) http.Handler
		host  string
		want  int
	}{
		{"frontend on course", RequireFrontend, "courses.acme.com", http.StatusOK},
		{"frontend on admin", RequireFrontend, "admin.acme.com", http.StatusNotFound},
		{"backend on admin", RequireBackend, "admin.acme.com", http.StatusOK},
		{"backend on course", RequireBackend, "courses.acme.com", http.StatusNotFound},
		{"external rejected", RejectExternal, "203.0.113.9", http.StatusNotFound},
		{"course passes reject", RejectExternal, "courses.acme.com", http.StatusOK},
		{"admin passes reject", RejectExternal, "admin.acme.com", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(t, mw(tc.guard(ok)), tc.host)
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestGuardWithoutMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	rr := serve(t, RequireBackend(ok), "admin.acme.com")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}
