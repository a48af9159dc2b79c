// internal/tenant/host.go
//
// Hostname helpers and backend matching.
//
// Context
// -------
// Domain rows store hosts without the `www.` label, so the request host is
// normalised before every lookup.  Normalisation is deliberately narrow:
// exactly one leading `www` label is dropped and nothing else changes.  No
// case folding, no port stripping.  The middleware strips the port from
// r.Host before the host ever reaches NormalizeHost.
//
// Backend detection compares the normalised host with the configured main
// site, either by exact equality or by membership in a set of hosts.
package tenant

import (
	"fmt"
	"net"
	"strings"
)

// NormalizeHost removes one leading "www" label from h.
//
//	www.acme.com     → acme.com
//	www.www.acme.com → www.acme.com
//	acme.com         → acme.com
func NormalizeHost(h string) string {
	labels := strings.Split(h, ".")
	if labels[0] == "www" {
		labels = labels[1:]
	}
	return strings.Join(labels, ".")
}

// stripPort removes the :port suffix from a Host header when present.
// Bracketed IPv6 literals lose their brackets along with the port.
func stripPort(h string) string {
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return h
}

//
// Backend matching
//

// Match modes accepted by NewBackendMatcher.
const (
	MatchExact = "exact"
	MatchSet   = "set"
)

// BackendMatcher decides whether a normalised host is the main site.
type BackendMatcher interface {
	Match(host string) bool
}

// ExactHost matches one configured hostname by string equality.
type ExactHost string

// Match implements BackendMatcher.
func (e ExactHost) Match(host string) bool { return string(e) == host }

// HostSet matches any of several configured hostnames.
type HostSet map[string]struct{}

// NewHostSet builds a HostSet from hosts.  Empty entries are skipped.
func NewHostSet(hosts ...string) HostSet {
	s := make(HostSet, len(hosts))
	for _, h := range hosts {
		if h != "" {
			s[h] = struct{}{}
		}
	}
	return s
}

// Match implements BackendMatcher.
func (s HostSet) Match(host string) bool {
	_, ok := s[host]
	return ok
}

// NewBackendMatcher picks the matcher for mode.  An empty mode means exact.
func NewBackendMatcher(mode, host string, hosts []string) (BackendMatcher, error) {
	switch mode {
	case "", MatchExact:
		if host == "" {
			return nil, fmt.Errorf("tenant: exact backend match needs a main host")
		}
		return ExactHost(host), nil
	case MatchSet:
		set := NewHostSet(hosts...)
		if len(set) == 0 {
			return nil, fmt.Errorf("tenant: set backend match needs at least one host")
		}
		return set, nil
	default:
		return nil, fmt.Errorf("tenant: unknown backend match mode %q", mode)
	}
}
