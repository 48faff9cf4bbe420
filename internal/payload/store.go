package payload

import (
	"sort"
	"sync"
	"time"
)

// Store is the keyed payload store. Ingestion happens on the transport
// goroutine while the render loop reads, so all access is mutex-guarded.
//
// Lifetime follows the legacy semantics exactly: ttl>0 stamps expiry that far
// in the future, ttl<=0 stamps expiry "now" — zero or negative TTL never
// means persistent, and refreshing an id with the same non-positive TTL
// re-stamps "now" again rather than extending anything.
type Store struct {
	mu    sync.Mutex
	items map[string]*Item
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{items: make(map[string]*Item)}
}

// Set inserts or replaces the item under its key and stamps its expiry.
func (s *Store) Set(item *Item, now time.Time) {
	if item.TTL > 0 {
		item.Expiry = now.Add(time.Duration(item.TTL * float64(time.Second)))
	} else {
		item.Expiry = now
	}

	s.mu.Lock()
	s.items[item.Key()] = item
	s.mu.Unlock()
}

// Clear removes the item under key unconditionally.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// Purge removes every item whose expiry has passed and returns how many were
// dropped. The render loop calls this at least once per repaint pass.
func (s *Store) Purge(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped int
	for key, item := range s.items {
		if !item.Expiry.After(now) {
			delete(s.items, key)
			dropped++
		}
	}
	return dropped
}

// DrainLive returns the current non-expired items in stable key order, so
// repeated passes over an unchanged store render identically.
func (s *Store) DrainLive(now time.Time) []*Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := make([]*Item, 0, len(s.items))
	for _, item := range s.items {
		if item.Expiry.After(now) {
			live = append(live, item)
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].Key() < live[j].Key() })
	return live
}

// Len returns the number of stored items, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
