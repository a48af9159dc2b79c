// internal/tenant/cache.go
//
// In-process host → course cache in front of a Store.
//
// Context
// -------
// Domain mappings change rarely, while every request needs one.  Cache
// keeps found mappings in a sync.Map, de-duplicates concurrent misses with
// singleflight, and lets evictor.go drop idle or surplus entries.
//
// Only positive results are cached.  Not-found, schema-not-ready, and
// driver errors always go to the backing Store so a freshly added domain
// or a freshly migrated schema is picked up on the next request.
//
// Every entry also carries its load time.  Past maxAge a hit counts as a
// miss, so a removed or remapped domain stops resolving within maxAge
// even when the host keeps receiving traffic.
package tenant

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/coursehost/internal/course"
	"github.com/yanizio/coursehost/internal/metrics"
)

// Static defaults.  Override via config.
const (
	IdleTTL       = 30 * time.Minute
	MaxAge        = 5 * time.Minute
	MaxEntries    = 100
	EvictInterval = 5 * time.Minute
)

// Cache wraps a Store.  It satisfies Store itself.
type Cache struct {
	next        Store
	sfg         singleflight.Group
	m           sync.Map
	evictTicker *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
	idleTTL     time.Duration
	maxAge      time.Duration
	maxEntries  int
	log         *zap.Logger
	now         func() time.Time
}

// NewCache constructs a Cache and starts the background evictor.  Call
// Close to stop it.  maxAge <= 0 selects MaxAge.
func NewCache(next Store, idleTTL, maxAge time.Duration, maxEntries int, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.L()
	}
	if maxAge <= 0 {
		maxAge = MaxAge
	}
	c := &Cache{
		next:       next,
		idleTTL:    idleTTL,
		maxAge:     maxAge,
		maxEntries: maxEntries,
		log:        log,
		done:       make(chan struct{}),
		now:        time.Now,
	}
	c.evictTicker = time.NewTicker(EvictInterval)
	go c.evictLoop()
	return c
}

// ByHost returns the course for host, loading it on demand.
func (c *Cache) ByHost(ctx context.Context, host string) (*course.Course, error) {
	if crs, ok := c.load(host); ok {
		return crs, nil
	}

	v, err, _ := c.sfg.Do(host, func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if crs, ok := c.load(host); ok {
			return crs, nil
		}
		// Shared across waiters, so detach from the first caller's cancel.
		crs, err := c.next.ByHost(context.WithoutCancel(ctx), host)
		if err != nil {
			return nil, err
		}
		if crs == nil {
			return nil, course.ErrNotFound
		}
		now := c.now().UnixNano()
		if _, loaded := c.m.Swap(host, &entry{course: crs, loadedAt: now, lastSeen: now}); !loaded {
			metrics.CachedHosts.Inc()
		}
		return crs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*course.Course), nil
}

// load returns a fresh cached course.  A stale entry is dropped and
// reported as a miss.
func (c *Cache) load(host string) (*course.Course, bool) {
	v, ok := c.m.Load(host)
	if !ok {
		return nil, false
	}
	ent := v.(*entry)
	now := c.now().UnixNano()
	if time.Duration(now-ent.loadedAt) > c.maxAge {
		if c.m.CompareAndDelete(host, ent) {
			metrics.CachedHosts.Dec()
			c.log.Debug("host entry expired", zap.String("host", host))
		}
		return nil, false
	}
	ent.touch(now)
	return ent.course, true
}

// SchemaReady passes through; the Resolver memoises the positive answer.
func (c *Cache) SchemaReady(ctx context.Context) (bool, error) {
	return c.next.SchemaReady(ctx)
}

// Forget drops host from the cache, e.g. after its domain row changed.
func (c *Cache) Forget(host string) {
	if _, ok := c.m.LoadAndDelete(host); ok {
		metrics.CachedHosts.Dec()
	}
}

// Len reports the number of cached hosts.
func (c *Cache) Len() int {
	n := 0
	c.m.Range(func(_, _ any) bool { n++; return true })
	return n
}

// Close stops the evictor.  Safe to call more than once.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		c.evictTicker.Stop()
		close(c.done)
	})
}
