// internal/vault/vault.go
//
// Vault client wrapper used to resolve `vault:` configuration values.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK with KV-v2 reads and a small
//     per-key cache so a reload does not hammer Vault.
//   - `Resolve` has the config.SecretFunc shape, so boot code passes it
//     straight to config.Load.
//   - Optional background token renewal for long-running servers.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, logger)            // during boot.
//  2. cfg, err := config.Load(ctx, cli.Resolve)     // secrets inline.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – initial token (falls back to ~/.vault-token).
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// CacheTTL bounds how long a resolved secret is reused.
const CacheTTL = 5 * time.Minute

// ErrBadRef is returned for references not shaped like mount/path#key.
var ErrBadRef = errors.New("vault: reference must look like <mount>/<path>#<key>")

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api *vault.Client
	log *zap.Logger

	cacheMu sync.RWMutex
	cache   map[string]cached // mount/path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a client from the VAULT_* environment.
func New(log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.L()
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	return &Client{
		api:   apiCli,
		log:   log,
		cache: make(map[string]cached),
	}, nil
}

// Resolve fetches the secret named by ref ("<mount>/<path>#<key>").
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	path, key, ok := strings.Cut(ref, "#")
	if !ok || path == "" || key == "" || !strings.Contains(path, "/") {
		return "", fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	return c.GetKV(ctx, path, key, CacheTTL)
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result
// is cached for that duration.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		cv, ok := c.cache[canonical]
		c.cacheMu.RUnlock()
		if ok && time.Now().Before(cv.exp) {
			return cv.val, nil
		}
	}

	mount, rel, _ := strings.Cut(secretPath, "/")
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("vault: key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault: value at %s is not a string", canonical)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(ttl)}
		c.cacheMu.Unlock()
	}
	c.log.Debug("vault secret resolved", zap.String("path", secretPath), zap.String("key", key))
	return sval, nil
}

// KeepTokenAlive renews the client token until ctx ends.  Non-renewable
// tokens are left alone.
func (c *Client) KeepTokenAlive(ctx context.Context) {
	for {
		sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
		if err != nil {
			c.log.Warn("vault token renew failed", zap.Error(err))
			if !sleep(ctx, 30*time.Second) {
				return
			}
			continue
		}
		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			c.log.Info("vault token is not renewable")
			return
		}

		watcher, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{
			Secret: sec,
			Grace:  15 * time.Second,
		})
		if err != nil {
			c.log.Warn("vault watcher init failed", zap.Error(err))
			if !sleep(ctx, 30*time.Second) {
				return
			}
			continue
		}

		go watcher.Start()
		if !c.watch(ctx, watcher) {
			return
		}
	}
}

// watch drains watcher events.  It returns false when ctx ended.
func (c *Client) watch(ctx context.Context, w *vault.LifetimeWatcher) bool {
	defer w.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case err := <-w.DoneCh():
			if err != nil {
				c.log.Warn("vault token renewal stopped", zap.Error(err))
			}
			return sleep(ctx, 15*time.Second)
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.log.Debug("vault token renewed", zap.Int("ttl_s", ev.Secret.Auth.LeaseDuration))
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
