// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `COURSEHOST_`, where `__` maps to “.”
     (e.g., `COURSEHOST_SITE__MAIN_HOST → site.main_host`).

After merging, string values of the form `vault:<mount>/<path>#<key>` are
swapped for the secret they reference, the tree is unmarshalled into
strongly-typed structs, defaults are filled, the result is validated, and
finally cached in an `atomic.Pointer` for lock-free reads.

Instrumentation
---------------
  • DEBUG spans – root discovery, YAML read, env overlay.
  • ERROR spans – YAML parse, env overlay, secret lookup, unmarshal,
    validation failures.
  • INFO  span  – final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix marks environment overrides.
const EnvPrefix = "COURSEHOST_"

// VaultPrefix marks values that must be fetched from Vault.
const VaultPrefix = "vault:"

// SecretFunc resolves a `vault:` reference (prefix already removed).
type SecretFunc func(ctx context.Context, ref string) (string, error)

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// RootDir resolves COURSEHOST_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to the executable heuristic for
// the production layout.
func RootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads configuration from RootDir().  secrets may be nil when no
// value uses a `vault:` reference.
func Load(ctx context.Context, secrets SecretFunc) (*Config, error) {
	return LoadDir(ctx, RootDir(), secrets)
}

// LoadDir reads .env, YAML, env overrides, resolves secrets, validates,
// and caches Config.
func LoadDir(ctx context.Context, root string, secrets SecretFunc) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: COURSEHOST_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, secrets); err != nil {
		zap.S().Errorw("config secret lookup failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	applyDefaults(&cfg)
	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"backend_match", cfg.Site.BackendMatch,
		"session_driver", cfg.Session.Driver,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }

// envKey maps COURSEHOST_SITE__MAIN_HOST to site.main_host.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

// resolveSecrets replaces every `vault:` string in k.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, secrets SecretFunc) error {
	for key, val := range k.All() {
		s, ok := val.(string)
		if !ok || !strings.HasPrefix(s, VaultPrefix) {
			continue
		}
		if secrets == nil {
			return fmt.Errorf("config: %s references %q but no secret store is configured", key, s)
		}
		plain, err := secrets(ctx, strings.TrimPrefix(s, VaultPrefix))
		if err != nil {
			return fmt.Errorf("config: resolve %s: %w", key, err)
		}
		if err := k.Set(key, plain); err != nil {
			return err
		}
	}
	return nil
}

// applyDefaults fills zero values that have a sensible fallback.
func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.Database.MaxOpen == 0 {
		c.Database.MaxOpen = 15
	}
	if c.Database.MaxIdle == 0 {
		c.Database.MaxIdle = 5
	}
	if c.Site.BackendMatch == "" {
		c.Site.BackendMatch = "exact"
	}
	if c.Session.Driver == "" {
		c.Session.Driver = "memory"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 14 * 24 * time.Hour
	}
	if c.Tenant.CacheMaxAge == 0 {
		c.Tenant.CacheMaxAge = 5 * time.Minute
	}
	if c.Tenant.CacheMaxEntries == 0 {
		c.Tenant.CacheMaxEntries = 100
	}
}
