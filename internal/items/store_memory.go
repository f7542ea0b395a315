package items

import (
	"hash/fnv"
	"sync"
)

const defaultShards = 32

type shard struct {
	mu  sync.RWMutex
	m   map[string]Item
	cap int
}

// MemStore is a sharded in-memory Store. A name always lands in the same
// shard, so operations on one name are linearized by that shard's lock.
// Whole-store operations take every shard lock in index order.
type MemStore struct {
	shards []*shard
	mask   uint32
}

func NewMemStore(capacity int) *MemStore {
	return NewShardedMemStore(capacity, defaultShards)
}

// NewShardedMemStore rounds n up to a power of two.
func NewShardedMemStore(capacity, n int) *MemStore {
	if n < 1 {
		n = 1
	}
	size := 1
	for size < n {
		size <<= 1
	}
	if capacity < 0 {
		capacity = 0
	}

	per := (capacity + size - 1) / size
	s := &MemStore{
		shards: make([]*shard, size),
		mask:   uint32(size - 1),
	}
	for i := range s.shards {
		s.shards[i] = &shard{m: make(map[string]Item, per), cap: per}
	}
	return s
}

func NewStore() Store {
	return NewMemStore(DefaultCapacity)
}

func (s *MemStore) shardFor(name string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return s.shards[h.Sum32()&s.mask]
}

func (s *MemStore) Get(name string) (Item, bool) {
	sh := s.shardFor(name)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	it, ok := sh.m[name]
	return it, ok
}

func (s *MemStore) Contains(name string) bool {
	_, ok := s.Get(name)
	return ok
}

func (s *MemStore) Insert(it Item) (Item, bool) {
	sh := s.shardFor(it.Name)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	prev, ok := sh.m[it.Name]
	sh.put(it)
	return prev, ok
}

func (s *MemStore) InsertIfAbsent(it Item) (Item, bool) {
	sh := s.shardFor(it.Name)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if existing, ok := sh.m[it.Name]; ok {
		return existing, false
	}
	sh.put(it)
	return it, true
}

func (s *MemStore) Remove(name string) (Item, bool) {
	sh := s.shardFor(name)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	it, ok := sh.m[name]
	if ok {
		delete(sh.m, name)
	}
	return it, ok
}

func (s *MemStore) Keys() []string {
	s.rlockAll()
	defer s.runlockAll()

	out := make([]string, 0, s.lenLocked())
	for _, sh := range s.shards {
		for name := range sh.m {
			out = append(out, name)
		}
	}
	return out
}

func (s *MemStore) Snapshot() []Item {
	s.rlockAll()
	defer s.runlockAll()

	out := make([]Item, 0, s.lenLocked())
	for _, sh := range s.shards {
		for _, it := range sh.m {
			out = append(out, it)
		}
	}
	return out
}

func (s *MemStore) Len() int {
	s.rlockAll()
	defer s.runlockAll()
	return s.lenLocked()
}

func (s *MemStore) Capacity() int {
	s.rlockAll()
	defer s.runlockAll()

	n := 0
	for _, sh := range s.shards {
		n += sh.cap
	}
	return n
}

func (s *MemStore) Clear() int {
	for _, sh := range s.shards {
		sh.mu.Lock()
	}
	defer func() {
		for i := len(s.shards) - 1; i >= 0; i-- {
			s.shards[i].mu.Unlock()
		}
	}()

	n := 0
	for _, sh := range s.shards {
		n += len(sh.m)
		sh.m = make(map[string]Item, sh.cap)
	}
	return n
}

func (s *MemStore) lenLocked() int {
	n := 0
	for _, sh := range s.shards {
		n += len(sh.m)
	}
	return n
}

func (s *MemStore) rlockAll() {
	for _, sh := range s.shards {
		sh.mu.RLock()
	}
}

func (s *MemStore) runlockAll() {
	for i := len(s.shards) - 1; i >= 0; i-- {
		s.shards[i].mu.RUnlock()
	}
}

// put must be called with sh.mu held for writing.
func (sh *shard) put(it Item) {
	sh.m[it.Name] = it
	for len(sh.m) > sh.cap {
		if sh.cap == 0 {
			sh.cap = 1
			continue
		}
		sh.cap *= 2
	}
}
