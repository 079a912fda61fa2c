package cache

// lruPolicy is a doubly-linked recency list with an optional high-priority
// pool.
//
// The list is circular around a sentinel: sentinel.next is the eviction end
// (least recently used), sentinel.prev the insertion end. lowPriTail marks
// the newest low-priority entry; everything between lowPriTail and the
// sentinel's insertion end forms the high-priority pool. When
// highPriPoolRatio is zero the boundary tracks the insertion end and the
// list degenerates to plain LRU.
//
// Pinned entries are unlinked entirely. On unpin they are re-admitted, and
// entries that saw a hit while pinned re-enter through the pool, which is
// what promotes hot entries under a configured ratio.
type lruPolicy struct {
	sentinel entry

	// lowPriTail is the newest low-priority entry, or &sentinel when the
	// low-priority segment is empty.
	lowPriTail *entry

	highPriPoolRatio    float64
	highPriPoolCapacity int64
	highPriPoolUsage    int64
}

var _ policy = (*lruPolicy)(nil)

func newLRUPolicy(capacity int64, highPriPoolRatio float64) *lruPolicy {
	p := &lruPolicy{highPriPoolRatio: highPriPoolRatio}
	p.sentinel.prev = &p.sentinel
	p.sentinel.next = &p.sentinel
	p.lowPriTail = &p.sentinel
	p.setCapacity(capacity)
	return p
}

func (p *lruPolicy) name() string { return "lru" }

func (p *lruPolicy) admit(e *entry) { p.link(e) }

func (p *lruPolicy) touch(e *entry) { e.set(entryWasHit) }

func (p *lruPolicy) pin(e *entry) { p.unlink(e) }

func (p *lruPolicy) unpin(e *entry) { p.link(e) }

func (p *lruPolicy) remove(e *entry) {
	if e.has(entryInPolicy) {
		p.unlink(e)
	}
}

func (p *lruPolicy) evictOne() *entry {
	victim := p.sentinel.next
	if victim == &p.sentinel {
		return nil
	}
	p.unlink(victim)
	return victim
}

func (p *lruPolicy) setCapacity(capacity int64) {
	p.highPriPoolCapacity = int64(float64(capacity) * p.highPriPoolRatio)
	p.maintainPoolSize()
}

func (p *lruPolicy) link(e *entry) {
	if p.highPriPoolRatio > 0 && (e.has(entryHighPri) || e.has(entryWasHit)) {
		// Newest position overall, inside the protected pool.
		e.prev = p.sentinel.prev
		e.next = &p.sentinel
		e.prev.next = e
		e.next.prev = e
		e.set(entryInPool)
		p.highPriPoolUsage += e.charge
		p.maintainPoolSize()
	} else {
		// Newest low-priority position, just below the pool boundary.
		e.prev = p.lowPriTail
		e.next = p.lowPriTail.next
		e.prev.next = e
		e.next.prev = e
		e.clear(entryInPool)
		p.lowPriTail = e
	}
	e.set(entryInPolicy)
}

func (p *lruPolicy) unlink(e *entry) {
	if p.lowPriTail == e {
		p.lowPriTail = e.prev
	}
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
	if e.has(entryInPool) {
		p.highPriPoolUsage -= e.charge
		e.clear(entryInPool)
	}
	e.clear(entryInPolicy)
}

// maintainPoolSize demotes the oldest pool entries to the top of the low
// priority segment until the pool fits its capacity again.
func (p *lruPolicy) maintainPoolSize() {
	for p.highPriPoolUsage > p.highPriPoolCapacity {
		p.lowPriTail = p.lowPriTail.next
		demoted := p.lowPriTail
		demoted.clear(entryInPool)
		p.highPriPoolUsage -= demoted.charge
	}
}
