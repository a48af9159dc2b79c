// internal/tenant/entry.go
//
// Host cache entry.
//
// The cache stores a pointer to the resolved course inside `entry`, along
// with a `lastSeen` UnixNano timestamp used by the evictor for idle and
// LRU eviction, and a `loadedAt` timestamp that bounds how long the
// mapping is trusted.  Courses are treated as immutable once cached.
package tenant

import (
	"sync/atomic"

	"github.com/yanizio/coursehost/internal/course"
)

type entry struct {
	course   *course.Course
	loadedAt int64 // UnixNano, set once
	lastSeen int64 // UnixNano
}

func (e *entry) touch(now int64) { atomic.StoreInt64(&e.lastSeen, now) }

func (e *entry) seen() int64 { return atomic.LoadInt64(&e.lastSeen) }
