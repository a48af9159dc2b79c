// internal/config/model.go
//
// Typed configuration model for coursehost.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   - optional `.env`                              – dotenv values,
//   - `conf/global.yaml`                           – primary static file,
//   - `COURSEHOST_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Notes
// -----
//   - Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml`
//     tags unless configured otherwise.
//   - The `Paths` block is filled at runtime; YAML must not try to set it.
package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"gte=0"`
}

//
// Database section
//

// Database points at the control-plane MySQL schema that holds `courses`
// and `domains`.  DSN may be a `vault:` reference.
type Database struct {
	DSN     string `koanf:"dsn"      validate:"required"`
	MaxOpen int    `koanf:"max_open" validate:"gte=0"`
	MaxIdle int    `koanf:"max_idle" validate:"gte=0"`
}

//
// Site section
//

// Site identifies the main (administrative) site.  BackendMatch selects
// between one canonical host and a set of hosts; both are compared with
// the request host after the leading `www` label is removed.
type Site struct {
	MainHost     string   `koanf:"main_host"     validate:"required_if=BackendMatch exact,nowww"`
	MainHosts    []string `koanf:"main_hosts"    validate:"required_if=BackendMatch set,dive,required,nowww"`
	BackendMatch string   `koanf:"backend_match" validate:"required,oneof=exact set"`
}

//
// Session section
//

// Session selects the session backend and cookie.
type Session struct {
	Driver     string        `koanf:"driver"      validate:"required,oneof=memory redis"`
	RedisURL   string        `koanf:"redis_url"   validate:"required_if=Driver redis"`
	Prefix     string        `koanf:"prefix"`
	TTL        time.Duration `koanf:"ttl"         validate:"gt=0"`
	CookieName string        `koanf:"cookie_name"`
}

//
// Tenant section
//

// Tenant tunes the host lookup cache and the external-origin guard.
// CacheTTL == 0 disables the cache.  CacheMaxAge bounds how long a cached
// mapping is served after it was loaded, whatever the traffic.
type Tenant struct {
	CacheTTL        time.Duration `koanf:"cache_ttl"         validate:"gte=0"`
	CacheMaxAge     time.Duration `koanf:"cache_max_age"     validate:"gte=0"`
	CacheMaxEntries int           `koanf:"cache_max_entries" validate:"gte=0"`
	RejectExternal  bool          `koanf:"reject_external"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // COURSEHOST_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Site     Site     `koanf:"site"`
	Session  Session  `koanf:"session"`
	Tenant   Tenant   `koanf:"tenant"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
