package window

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps every set in process memory. State is lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	sets map[string]*memorySet
}

type memorySet struct {
	mu      sync.Mutex
	members map[string]time.Time
	// removed is set once the set has been dropped from the store.
	removed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string]*memorySet)}
}

func (s *MemoryStore) set(name string, create bool) *memorySet {
	s.mu.RLock()
	ms, ok := s.sets[name]
	s.mu.RUnlock()
	if ok || !create {
		return ms
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ms, ok = s.sets[name]; !ok {
		ms = &memorySet{members: make(map[string]time.Time)}
		s.sets[name] = ms
	}
	return ms
}

func (s *MemoryStore) Write(ctx context.Context, writes ...Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(writes); err != nil {
		return err
	}

	for _, w := range writes {
		ms := s.lockedSet(w.Set)
		if _, exists := ms.members[w.Member]; !exists || w.Overwrite {
			ms.members[w.Member] = truncate(w.At)
		}
		ms.mu.Unlock()
	}
	return nil
}

// lockedSet returns the live set for name with its lock held, retrying when
// a concurrent Prune drops the set in between.
func (s *MemoryStore) lockedSet(name string) *memorySet {
	for {
		ms := s.set(name, true)
		ms.mu.Lock()
		if !ms.removed {
			return ms
		}
		ms.mu.Unlock()
	}
}

func (s *MemoryStore) Prune(ctx context.Context, set string, cutoff time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ms := s.set(set, false)
	if ms == nil {
		return nil
	}

	cutoff = truncate(cutoff)
	ms.mu.Lock()
	for member, at := range ms.members {
		if !at.After(cutoff) {
			delete(ms.members, member)
		}
	}
	empty := len(ms.members) == 0
	ms.mu.Unlock()
	if empty {
		s.drop(set, ms)
	}
	return nil
}

// drop removes ms from the store if it is still registered and still empty.
func (s *MemoryStore) drop(name string, ms *memorySet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.members) > 0 || s.sets[name] != ms {
		return
	}
	ms.removed = true
	delete(s.sets, name)
}

func (s *MemoryStore) Range(ctx context.Context, set string, after, upTo time.Time) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ms := s.set(set, false)
	if ms == nil {
		return nil, nil
	}

	if !after.IsZero() {
		after = truncate(after)
	}
	if !upTo.IsZero() {
		upTo = truncate(upTo)
	}

	ms.mu.Lock()
	entries := make([]Entry, 0, len(ms.members))
	for member, at := range ms.members {
		if !after.IsZero() && !at.After(after) {
			continue
		}
		if !upTo.IsZero() && at.After(upTo) {
			continue
		}
		entries = append(entries, Entry{Member: member, At: at})
	}
	ms.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].At.Equal(entries[j].At) {
			return entries[i].Member < entries[j].Member
		}
		return entries[i].At.Before(entries[j].At)
	})
	return entries, nil
}
