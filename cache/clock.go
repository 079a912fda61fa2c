package cache

// clockPolicy approximates LRU with a second-chance ring.
//
// Entries join the ring in insertion order and keep their position for
// life, pinned or not; the hand sweeps the ring cyclically. A swept entry
// with its reference bit set gets the bit cleared and survives the pass.
// Pinned entries are skipped. The first unpinned entry without a reference
// bit is the victim.
//
// New entries start with a clear reference bit; only a lookup sets it.
type clockPolicy struct {
	sentinel entry
	hand     *entry
	size     int
}

var _ policy = (*clockPolicy)(nil)

func newClockPolicy() *clockPolicy {
	p := &clockPolicy{}
	p.sentinel.prev = &p.sentinel
	p.sentinel.next = &p.sentinel
	p.hand = &p.sentinel
	return p
}

func (p *clockPolicy) name() string { return "clock" }

func (p *clockPolicy) admit(e *entry) {
	e.prev = p.sentinel.prev
	e.next = &p.sentinel
	e.prev.next = e
	e.next.prev = e
	e.set(entryInPolicy)
	p.size++
}

func (p *clockPolicy) touch(e *entry) { e.set(entryClockRef) }

// pin and unpin are no-ops: pinned entries keep their ring position and the
// sweep skips them while refs > 0.
func (p *clockPolicy) pin(e *entry)   {}
func (p *clockPolicy) unpin(e *entry) {}

func (p *clockPolicy) remove(e *entry) {
	if !e.has(entryInPolicy) {
		return
	}
	if p.hand == e {
		p.hand = e.next
	}
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
	e.clear(entryInPolicy)
	e.clear(entryClockRef)
	p.size--
}

func (p *clockPolicy) evictOne() *entry {
	if p.size == 0 {
		return nil
	}
	// Two full passes suffice: the first clears reference bits, the second
	// finds a victim. If every entry is pinned there is none.
	for scanned := 0; scanned < 2*p.size; {
		if p.hand == &p.sentinel {
			p.hand = p.hand.next
			continue
		}
		e := p.hand
		p.hand = e.next
		scanned++

		if e.refs > 0 {
			continue
		}
		if e.has(entryClockRef) {
			e.clear(entryClockRef)
			continue
		}
		p.remove(e)
		return e
	}
	return nil
}

func (p *clockPolicy) setCapacity(capacity int64) {}
