// internal/session/store.go
//
// Session key-value storage.
//
// Context
// -------
// A session is identified by an opaque ID carried in a cookie.  The store
// keeps string values under (id, key) pairs and nothing else; callers
// encode richer values themselves.  Two backends ship with the package:
//
//   - memory – patrickmn/go-cache, single process, dev and tests.
//   - redis  – redis/go-redis v9, one hash per session with a TTL.
//
// Both give read-your-writes consistency for a single session, which is
// all the tenant resolver relies on.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by Store.Get when the key is absent or the
	// session has expired.
	ErrNotFound = errors.New("session: key not found")

	// ErrNoSession is returned when a request carries no session.
	ErrNoSession = errors.New("session: no session in context")
)

// Store persists session values.  Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, id, key string) (string, error)
	Set(ctx context.Context, id, key, value string) error
	Delete(ctx context.Context, id string, keys ...string) error
	// Destroy removes every key of a session.
	Destroy(ctx context.Context, id string) error
}

// Drivers accepted by NewStore.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Options selects and tunes a backend.
type Options struct {
	Driver   string
	RedisURL string
	Prefix   string
	TTL      time.Duration
}

// NewStore builds the backend named by opts.Driver.  The returned close
// function releases backend resources and is never nil.
func NewStore(ctx context.Context, opts Options) (Store, func() error, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryStore(opts.TTL), func() error { return nil }, nil
	case DriverRedis:
		rs, err := DialRedis(ctx, opts.RedisURL, opts.Prefix, opts.TTL)
		if err != nil {
			return nil, func() error { return nil }, err
		}
		return rs, rs.Close, nil
	default:
		return nil, func() error { return nil }, fmt.Errorf("session: unknown driver %q", opts.Driver)
	}
}
