package session

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory.  Every Set refreshes the
// TTL of the written key only.
type MemoryStore struct {
	c   *gocache.Cache
	ttl time.Duration
}

// NewMemoryStore returns a store whose keys expire after ttl.  A ttl <= 0
// means keys never expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryStore{c: gocache.New(ttl, time.Minute), ttl: ttl}
}

func memKey(id, key string) string { return id + "\x00" + key }

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id, key string) (string, error) {
	v, ok := m.c.Get(memKey(id, key))
	if !ok {
		return "", ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, id, key, value string) error {
	m.c.Set(memKey(id, key), value, m.ttl)
	return nil
}

// Delete implements Store.  Missing keys are ignored.
func (m *MemoryStore) Delete(_ context.Context, id string, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(memKey(id, k))
	}
	return nil
}

// Destroy implements Store.
func (m *MemoryStore) Destroy(_ context.Context, id string) error {
	prefix := id + "\x00"
	for k := range m.c.Items() {
		if strings.HasPrefix(k, prefix) {
			m.c.Delete(k)
		}
	}
	return nil
}
