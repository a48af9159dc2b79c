// evictor.go houses the eviction loop for Cache.  Every EvictInterval it
// scans the map and removes:
//
//   - hosts idle longer than idleTTL
//   - hosts loaded longer than maxAge ago
//   - least-recently-used hosts when map size exceeds maxEntries
//
// Each eviction event is logged and updates Prometheus counters.
package tenant

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/coursehost/internal/metrics"
)

func (c *Cache) evictLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.evictTicker.C:
			c.evictOnce(c.now().UnixNano())
		}
	}
}

// evictOnce runs one idle pass and one LRU pass against the clock value now.
// It returns the number of evicted hosts.
func (c *Cache) evictOnce(now int64) int {
	var count, evicted int

	// ----------------------------------------------------------------
	// Idle eviction pass
	// ----------------------------------------------------------------
	c.m.Range(func(key, value any) bool {
		ent := value.(*entry)
		idle := time.Duration(now - ent.seen())
		stale := time.Duration(now-ent.loadedAt) > c.maxAge
		if stale || (c.idleTTL > 0 && idle > c.idleTTL) {
			if !c.m.CompareAndDelete(key, ent) {
				return true
			}
			evicted++
			c.log.Debug("host evicted",
				zap.String("host", key.(string)),
				zap.Duration("idle", idle.Truncate(time.Second)),
				zap.Bool("stale", stale))
			metrics.CacheEvictTotal.Inc()
			metrics.CachedHosts.Dec()
			return true
		}
		count++
		return true
	})

	// ----------------------------------------------------------------
	// LRU eviction pass
	// ----------------------------------------------------------------
	if c.maxEntries > 0 && count > c.maxEntries {
		type kv struct {
			key string
			at  int64
		}
		all := make([]kv, 0, count)
		c.m.Range(func(key, value any) bool {
			all = append(all, kv{key: key.(string), at: value.(*entry).seen()})
			return true
		})
		sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
		for i := 0; i < len(all)-c.maxEntries; i++ {
			if _, ok := c.m.LoadAndDelete(all[i].key); ok {
				evicted++
				c.log.Debug("host evicted (LRU pressure)", zap.String("host", all[i].key))
				metrics.CacheEvictTotal.Inc()
				metrics.CachedHosts.Dec()
			}
		}
	}
	return evicted
}
