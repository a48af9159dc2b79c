package tenant

import (
	"context"
	"sync"

	"github.com/yanizio/coursehost/internal/course"
)

// fakeStore satisfies Store with injectable mappings and failures.
type fakeStore struct {
	mu        sync.Mutex
	hosts     map[string]*course.Course
	ready     bool
	readyErr  error
	byHostErr error
	calls     int
	probes    int
}

func newFakeStore(hosts map[string]*course.Course) *fakeStore {
	return &fakeStore{hosts: hosts, ready: true}
}

func (f *fakeStore) ByHost(_ context.Context, host string) (*course.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.byHostErr != nil {
		return nil, f.byHostErr
	}
	if c, ok := f.hosts[host]; ok {
		return c, nil
	}
	return nil, course.ErrNotFound
}

func (f *fakeStore) SchemaReady(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	return f.ready, f.readyErr
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeSession is a map-backed Session shared across Contexts to model one
// user session spanning several requests.
type fakeSession struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
}

func newFakeSession() *fakeSession { return &fakeSession{data: map[string]string{}} }

func (s *fakeSession) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fakeSession) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *fakeSession) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}
