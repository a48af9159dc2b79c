// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"strings"

	"github.com/yanizio/coursehost/internal/tenant"
)

// ForceHTTPS issues a 308 Permanent Redirect to the HTTPS version of the
// URL when the request is plain HTTP and the host is recognised, i.e. a
// course frontend or the main site.  External hosts and localhost pass
// through unchanged.  It must run after tenant.Middleware.
//
// The target uses the port-stripped request host, so the redirect always
// lands on the default HTTPS port.  X-Forwarded-Proto is taken at face
// value: deploy behind a proxy that overwrites it, or clients can skip the
// redirect by sending the header themselves.
func ForceHTTPS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			next.ServeHTTP(w, r)
			return
		}

		tc, ok := tenant.FromContext(r.Context())
		if !ok || tc.Host() == "localhost" || tc.IsExternal() {
			next.ServeHTTP(w, r)
			return
		}

		host := tc.Host()
		if strings.Contains(host, ":") { // IPv6 literal
			host = "[" + host + "]"
		}
		target := "https://" + host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}
