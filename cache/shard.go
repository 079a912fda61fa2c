package cache

import (
	"sync"
	"sync/atomic"

	"github.com/hupe1980/lsmkit/resource"
)

// shard is one independently locked slice of the cache: a hash table for
// residency plus a policy for eviction order.
type shard struct {
	mu sync.Mutex

	capacity int64
	strict   bool

	table  map[string]*entry
	policy policy

	// usage is the total charge of every entry the shard still owns,
	// including pinned entries that already left the table.
	usage int64

	// evictableUsage is the charge currently linked into the policy:
	// resident, unpinned entries. usage - evictableUsage is pinned usage.
	evictableUsage int64

	rc *resource.Controller

	hits      atomic.Int64
	misses    atomic.Int64
	inserts   atomic.Int64
	evictions atomic.Int64
}

func newShard(capacity int64, strict bool, pol policy, rc *resource.Controller) *shard {
	return &shard{
		capacity: capacity,
		strict:   strict,
		table:    make(map[string]*entry),
		policy:   pol,
		rc:       rc,
	}
}

func (s *shard) insert(key []byte, value any, charge int64, pri Priority, deleter Deleter) error {
	if !s.rc.TryAcquireMemory(charge) {
		return ErrCacheFull
	}

	e := &entry{
		key:     append([]byte(nil), key...),
		value:   value,
		charge:  charge,
		deleter: deleter,
	}
	if pri == PriorityHigh {
		e.set(entryHighPri)
	}

	var free []*entry

	s.mu.Lock()
	if s.strict && s.usage+charge-s.evictableUsage > s.capacity {
		// Even evicting every unpinned entry would not make room. Fail
		// before touching anything so the shard state is unchanged.
		s.mu.Unlock()
		s.rc.ReleaseMemory(charge)
		return ErrCacheFull
	}

	if old, ok := s.table[string(key)]; ok {
		s.detachLocked(old, &free)
	}

	for s.usage+charge > s.capacity {
		victim := s.policy.evictOne()
		if victim == nil {
			break
		}
		s.detachLocked(victim, &free)
		s.evictions.Add(1)
	}

	s.table[string(e.key)] = e
	e.set(entryInCache)
	s.usage += charge
	s.evictableUsage += charge
	s.policy.admit(e)
	s.inserts.Add(1)
	s.mu.Unlock()

	s.freeEntries(free)
	return nil
}

func (s *shard) lookup(key []byte) (*Handle, bool) {
	s.mu.Lock()
	e, ok := s.table[string(key)]
	if !ok {
		s.mu.Unlock()
		s.misses.Add(1)
		return nil, false
	}
	if e.refs == 0 {
		s.policy.pin(e)
		s.evictableUsage -= e.charge
	}
	e.refs++
	s.policy.touch(e)
	s.mu.Unlock()

	s.hits.Add(1)
	return &Handle{e: e, s: s}, true
}

func (s *shard) release(e *entry) {
	var freeIt bool

	s.mu.Lock()
	if e.refs <= 0 {
		s.mu.Unlock()
		panic("cache: handle released twice")
	}
	e.refs--
	if e.refs == 0 {
		switch {
		case !e.has(entryInCache):
			// Erased or displaced while pinned; the last release frees it.
			s.usage -= e.charge
			freeIt = true
		case s.usage > s.capacity:
			// Over capacity: drop the entry instead of re-admitting it, so
			// usage converges back under the limit as pins drain.
			delete(s.table, string(e.key))
			e.clear(entryInCache)
			s.policy.remove(e)
			s.usage -= e.charge
			s.evictions.Add(1)
			freeIt = true
		default:
			s.policy.unpin(e)
			s.evictableUsage += e.charge
		}
	}
	s.mu.Unlock()

	if freeIt {
		s.freeEntry(e)
	}
}

func (s *shard) erase(key []byte) {
	var free []*entry

	s.mu.Lock()
	if e, ok := s.table[string(key)]; ok {
		s.detachLocked(e, &free)
	}
	s.mu.Unlock()

	s.freeEntries(free)
}

func (s *shard) setCapacity(capacity int64) {
	var free []*entry

	s.mu.Lock()
	s.capacity = capacity
	s.policy.setCapacity(capacity)
	for s.usage > s.capacity {
		victim := s.policy.evictOne()
		if victim == nil {
			break
		}
		s.detachLocked(victim, &free)
		s.evictions.Add(1)
	}
	s.mu.Unlock()

	s.freeEntries(free)
}

// purge detaches every resident entry. Unpinned entries are freed; pinned
// ones are handed over to their final release.
func (s *shard) purge() {
	var free []*entry

	s.mu.Lock()
	for _, e := range s.table {
		e.clear(entryInCache)
		s.policy.remove(e)
		if e.refs == 0 {
			s.usage -= e.charge
			s.evictableUsage -= e.charge
			free = append(free, e)
		}
	}
	clear(s.table)
	s.mu.Unlock()

	s.freeEntries(free)
}

// detachLocked removes a resident entry from the table and policy. Unpinned
// entries stop counting toward usage and are queued for freeing; pinned
// entries keep their charge until the final release.
func (s *shard) detachLocked(e *entry, free *[]*entry) {
	delete(s.table, string(e.key))
	e.clear(entryInCache)
	s.policy.remove(e)
	if e.refs == 0 {
		s.usage -= e.charge
		s.evictableUsage -= e.charge
		*free = append(*free, e)
	}
}

// freeEntry runs outside the shard lock: deleters may be arbitrarily slow
// and may not re-enter the cache for the same key anyway.
func (s *shard) freeEntry(e *entry) {
	if e.deleter != nil {
		e.deleter(e.key, e.value)
	}
	s.rc.ReleaseMemory(e.charge)
}

func (s *shard) freeEntries(entries []*entry) {
	for _, e := range entries {
		s.freeEntry(e)
	}
}

func (s *shard) capacitySnapshot() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity
}

func (s *shard) usageSnapshot() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

func (s *shard) pinnedSnapshot() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage - s.evictableUsage
}
