package tenant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/coursehost/internal/course"
)

func newTestCache(t *testing.T, next Store, idle time.Duration, max int) *Cache {
	t.Helper()
	c := NewCache(next, idle, 24*time.Hour, max, zap.NewNop())
	t.Cleanup(c.Close)
	return c
}

func TestCache_HitAfterMiss(t *testing.T) {
	store := newFakeStore(map[string]*course.Course{"courses.acme.com": tenantA})
	c := newTestCache(t, store, time.Hour, 10)

	for i := 0; i < 3; i++ {
		got, err := c.ByHost(context.Background(), "courses.acme.com")
		if err != nil || got.ID != tenantA.ID {
			t.Fatalf("ByHost #%d = %#v, %v", i, got, err)
		}
	}
	if n := store.callCount(); n != 1 {
		t.Fatalf("backing store hit %d times, want 1", n)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestCache_NegativeNotCached(t *testing.T) {
	store := newFakeStore(map[string]*course.Course{})
	c := newTestCache(t, store, time.Hour, 10)

	if _, err := c.ByHost(context.Background(), "new.acme.com"); !errors.Is(err, course.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// Domain added after the first miss.
	store.mu.Lock()
	store.hosts["new.acme.com"] = tenantB
	store.mu.Unlock()

	got, err := c.ByHost(context.Background(), "new.acme.com")
	if err != nil || got.ID != tenantB.ID {
		t.Fatalf("ByHost after insert = %#v, %v", got, err)
	}
}

func TestCache_Singleflight(t *testing.T) {
	store := newFakeStore(map[string]*course.Course{"courses.acme.com": tenantA})
	c := newTestCache(t, store, time.Hour, 10)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.ByHost(context.Background(), "courses.acme.com"); err != nil {
				t.Errorf("ByHost: %v", err)
			}
		}()
	}
	wg.Wait()

	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestCache_Forget(t *testing.T) {
	store := newFakeStore(map[string]*course.Course{"courses.acme.com": tenantA})
	c := newTestCache(t, store, time.Hour, 10)

	_, _ = c.ByHost(context.Background(), "courses.acme.com")
	c.Forget("courses.acme.com")
	c.Forget("courses.acme.com")
	if c.Len() != 0 {
		t.Fatalf("Len = %d after Forget", c.Len())
	}
}

func TestCache_EvictIdle(t *testing.T) {
	store := newFakeStore(map[string]*course.Course{
		"a.acme.com": tenantA,
		"b.acme.com": tenantB,
	})
	c := newTestCache(t, store, time.Minute, 10)

	base := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return base }
	_, _ = c.ByHost(context.Background(), "a.acme.com")

	c.now = func() time.Time { return base.Add(50 * time.Second) }
	_, _ = c.ByHost(context.Background(), "b.acme.com")

	if n := c.evictOnce(base.Add(90 * time.Second).UnixNano()); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
	if _, ok := c.m.Load("a.acme.com"); ok {
		t.Fatalf("idle host a.acme.com not evicted")
	}
	if _, ok := c.m.Load("b.acme.com"); !ok {
		t.Fatalf("recent host b.acme.com evicted")
	}
}

func TestCache_EvictLRU(t *testing.T) {
	hosts := map[string]*course.Course{}
	for _, h := range []string{"a", "b", "c", "d"} {
		hosts[h+".acme.com"] = tenantA
	}
	store := newFakeStore(hosts)
	c := newTestCache(t, store, 0, 2)

	base := time.Unix(1_700_000_000, 0)
	for i, h := range []string{"a", "b", "c", "d"} {
		at := base.Add(time.Duration(i) * time.Second)
		c.now = func() time.Time { return at }
		_, _ = c.ByHost(context.Background(), h+".acme.com")
	}

	if n := c.evictOnce(base.Add(time.Hour).UnixNano()); n != 2 {
		t.Fatalf("evicted %d, want 2", n)
	}
	for _, h := range []string{"a", "b"} {
		if _, ok := c.m.Load(h + ".acme.com"); ok {
			t.Errorf("%s.acme.com should be evicted as least recently used", h)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestCache_RemovedDomainExpires(t *testing.T) {
	store := newFakeStore(map[string]*course.Course{"courses.acme.com": tenantA})
	c := NewCache(store, time.Hour, time.Minute, 10, zap.NewNop())
	t.Cleanup(c.Close)

	base := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return base }
	if _, err := c.ByHost(context.Background(), "courses.acme.com"); err != nil {
		t.Fatalf("ByHost: %v", err)
	}

	// Domain row deleted while the host keeps receiving traffic.
	store.mu.Lock()
	delete(store.hosts, "courses.acme.com")
	store.mu.Unlock()

	c.now = func() time.Time { return base.Add(30 * time.Second) }
	if got, err := c.ByHost(context.Background(), "courses.acme.com"); err != nil || got.ID != tenantA.ID {
		t.Fatalf("within max age: %#v, %v", got, err)
	}

	c.now = func() time.Time { return base.Add(90 * time.Second) }
	if _, err := c.ByHost(context.Background(), "courses.acme.com"); !errors.Is(err, course.ErrNotFound) {
		t.Fatalf("after max age err = %v, want ErrNotFound", err)
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0", c.Len())
	}
}

func TestCache_RemappedDomainReloads(t *testing.T) {
	store := newFakeStore(map[string]*course.Course{"courses.acme.com": tenantA})
	c := NewCache(store, time.Hour, time.Minute, 10, zap.NewNop())
	t.Cleanup(c.Close)

	base := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return base }
	_, _ = c.ByHost(context.Background(), "courses.acme.com")

	store.mu.Lock()
	store.hosts["courses.acme.com"] = tenantB
	store.mu.Unlock()

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	got, err := c.ByHost(context.Background(), "courses.acme.com")
	if err != nil || got.ID != tenantB.ID {
		t.Fatalf("after remap = %#v, %v; want TenantB", got, err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestCache_EvictStale(t *testing.T) {
	store := newFakeStore(map[string]*course.Course{"courses.acme.com": tenantA})
	c := NewCache(store, time.Hour, time.Minute, 10, zap.NewNop())
	t.Cleanup(c.Close)

	base := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return base }
	_, _ = c.ByHost(context.Background(), "courses.acme.com")

	// Seen recently, but loaded too long ago.
	if v, ok := c.m.Load("courses.acme.com"); ok {
		v.(*entry).touch(base.Add(2 * time.Minute).UnixNano())
	}
	if n := c.evictOnce(base.Add(2 * time.Minute).UnixNano()); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
}

func TestCache_AsResolverStore(t *testing.T) {
	store := newFakeStore(map[string]*course.Course{"courses.acme.com": tenantA})
	res := newTestResolver(newTestCache(t, store, time.Hour, 10))

	for i := 0; i < 3; i++ {
		if !res.NewContext(context.Background(), "www.courses.acme.com", nil).IsFrontend() {
			t.Fatalf("request %d not frontend", i)
		}
	}
	if n := store.callCount(); n != 1 {
		t.Fatalf("backing store hit %d times across requests, want 1", n)
	}
}
