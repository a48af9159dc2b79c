// internal/middleware/security.go
//
// Security-header middleware.
//
// Seeds industry-standard headers on every response:
//
//   • Strict-Transport-Security  –  only when HTTPS is enforced
//   • Content-Security-Policy   –  self-only default policy
//   • X-Frame-Options           –  click-jacking defence
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  drops path/query from Referer
//   • Permissions-Policy        –  disables powerful features by default
//
// Headers are set *before* next.ServeHTTP; once a handler writes the
// status line, later header changes are lost.  Handlers may still replace
// any of these values.

package middleware

import "net/http"

var baseHeaders = [][2]string{
	{"Content-Security-Policy", "default-src 'self'; img-src 'self' data:; object-src 'none'; " +
		"base-uri 'self'; frame-ancestors 'none'"},
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "geolocation=(), microphone=(), camera=()"},
}

const hsts = "max-age=63072000; includeSubDomains; preload"

// Security returns middleware that seeds security headers.  withHSTS adds
// Strict-Transport-Security and should follow config http.force_https.
func Security(withHSTS bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range baseHeaders {
				h.Set(kv[0], kv[1])
			}
			if withHSTS {
				h.Set("Strict-Transport-Security", hsts)
			}
			next.ServeHTTP(w, r)
		})
	}
}
