package api

import (
	"sync"
	"time"
)

// MemoryClientStore is a thread-safe in-memory ClientStore.
// Clients are lost on server restart and start again Anonymous. Idle
// clients are evicted when looked up and by a sweep that runs on Put at
// most once per idle timeout, so clients that never return are reclaimed.
type MemoryClientStore struct {
	mu          sync.Mutex
	data        map[string]*Client
	idleTimeout time.Duration
	lastSweep   time.Time
	now         func() time.Time
}

var _ ClientStore = (*MemoryClientStore)(nil)

// NewMemoryClientStore creates an in-memory client store.
// idleTimeout of 0 disables idle eviction.
func NewMemoryClientStore(idleTimeout time.Duration) *MemoryClientStore {
	return &MemoryClientStore{
		data:        make(map[string]*Client),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (s *MemoryClientStore) Get(id string) (*Client, bool) {
	s.mu.Lock()
	c, ok := s.data[id]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	now := s.now()
	if s.idle(c, now) {
		delete(s.data, id)
		s.mu.Unlock()
		closeClient(c)
		return nil, false
	}
	c.LastAccessedAt = now
	s.mu.Unlock()
	return c, true
}

func (s *MemoryClientStore) Put(c *Client) {
	s.mu.Lock()
	var evicted []*Client
	if now := s.now(); s.idleTimeout > 0 && now.Sub(s.lastSweep) >= s.idleTimeout {
		evicted = s.sweepLocked(now)
	}
	prev, replaced := s.data[c.ID]
	s.data[c.ID] = c
	s.mu.Unlock()

	if replaced && prev != c {
		evicted = append(evicted, prev)
	}
	for _, e := range evicted {
		closeClient(e)
	}
}

func (s *MemoryClientStore) Delete(id string) {
	s.mu.Lock()
	c, ok := s.data[id]
	delete(s.data, id)
	s.mu.Unlock()
	if ok {
		closeClient(c)
	}
}

// Len reports the number of live clients. Idle clients are evicted first.
func (s *MemoryClientStore) Len() int {
	s.mu.Lock()
	evicted := s.sweepLocked(s.now())
	n := len(s.data)
	s.mu.Unlock()
	for _, c := range evicted {
		closeClient(c)
	}
	return n
}

// Clear removes every client and closes their shells.
func (s *MemoryClientStore) Clear() {
	s.mu.Lock()
	data := s.data
	s.data = make(map[string]*Client)
	s.mu.Unlock()
	for _, c := range data {
		closeClient(c)
	}
}

func (s *MemoryClientStore) idle(c *Client, now time.Time) bool {
	return s.idleTimeout > 0 && now.Sub(c.LastAccessedAt) > s.idleTimeout
}

// sweepLocked removes idle clients and returns them for closing outside
// the lock.
func (s *MemoryClientStore) sweepLocked(now time.Time) []*Client {
	s.lastSweep = now
	if s.idleTimeout <= 0 {
		return nil
	}
	var evicted []*Client
	for id, c := range s.data {
		if s.idle(c, now) {
			delete(s.data, id)
			evicted = append(evicted, c)
		}
	}
	return evicted
}

func closeClient(c *Client) {
	if c.Shell != nil {
		c.Shell.Close()
	}
}
