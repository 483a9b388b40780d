package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	resp      *StoredResponse // nil while reserved
	expiresAt time.Time
}

// InMemoryResponseStore implements ResponseStore with a map. It suits
// single-instance deployments and tests.
type InMemoryResponseStore struct {
	mu        sync.Mutex
	entries   map[string]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryResponseStore creates the store and starts a goroutine that
// evicts expired keys every cleanupInterval.
func NewInMemoryResponseStore(cleanupInterval time.Duration) *InMemoryResponseStore {
	s := &InMemoryResponseStore{
		entries:  make(map[string]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		s.wg.Add(1)
		go s.cleanupLoop(cleanupInterval)
	}
	return s
}

// Reserve implements ResponseStore
func (s *InMemoryResponseStore) Reserve(_ context.Context, key string, ttl time.Duration) (*StoredResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return e.resp, false, nil
	}
	s.entries[key] = entry{expiresAt: now.Add(ttl)}
	return nil, true, nil
}

// Complete implements ResponseStore
func (s *InMemoryResponseStore) Complete(_ context.Context, key string, resp StoredResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.resp != nil {
		return ErrNotReserved
	}
	s.entries[key] = entry{resp: &resp, expiresAt: s.now().Add(ttl)}
	return nil
}

// Release implements ResponseStore
func (s *InMemoryResponseStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.resp != nil {
		return ErrNotReserved
	}
	delete(s.entries, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryResponseStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of keys held, expired ones included
func (s *InMemoryResponseStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *InMemoryResponseStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryResponseStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

var _ ResponseStore = (*InMemoryResponseStore)(nil)
