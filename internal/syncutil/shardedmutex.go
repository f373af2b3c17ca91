// Package syncutil holds small locking helpers shared by the stateful
// trackers.
package syncutil

import (
	"hash/fnv"
	"sort"
	"sync"
)

const shardCount = 256

// ShardedMutex provides a fixed-size pool of mutexes keyed by string.
// Memory stays bounded regardless of how many accounts are seen, at the
// cost of occasional false sharing between keys that hash to the same shard.
type ShardedMutex struct {
	shards [shardCount]sync.Mutex
}

// Lock acquires the mutex for the given key and returns an unlock function.
func (s *ShardedMutex) Lock(key string) func() {
	mu := &s.shards[shardIndex(key)]
	mu.Lock()
	return mu.Unlock
}

// LockAll acquires the mutexes for every key and returns a single unlock
// function. Shards are taken in ascending index order and each shard at most
// once, so two callers locking overlapping key sets cannot deadlock.
func (s *ShardedMutex) LockAll(keys ...string) func() {
	seen := make(map[uint32]struct{}, len(keys))
	idx := make([]int, 0, len(keys))
	for _, k := range keys {
		i := shardIndex(k)
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		idx = append(idx, int(i))
	}
	sort.Ints(idx)

	for _, i := range idx {
		s.shards[i].Lock()
	}
	return func() {
		for j := len(idx) - 1; j >= 0; j-- {
			s.shards[idx[j]].Unlock()
		}
	}
}

func shardIndex(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % shardCount
}
