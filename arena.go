package ospf

// LSAHandle is a stable, generation-checked reference to an lsaEntry
// owned by the LSDB's arena. Grounded on spec.md §9's "pointer-soup to
// ownership" guidance: cross-references (retransmission lists, candidate
// Dijkstra nodes, routing-table back-references) store a handle instead
// of a raw pointer, so a stale reference to an already-freed LSA is
// detected (Get returns ok=false) instead of dereferencing freed memory
// the way the original's manual reference counts only partially guarded
// against.
type LSAHandle struct {
	index uint32
	gen   uint32
}

// Valid reports whether h was ever issued (the zero Handle is never
// valid, so a zero-valued struct field reliably means "no reference").
func (h LSAHandle) Valid() bool { return h.gen != 0 }

type arenaSlot struct {
	gen   uint32
	entry *lsaEntry
}

// lsaArena owns every lsaEntry in one Ospf instance. LSAs are created on
// receipt or self-origination, and freed only when (a) at MaxAge, (b) not
// on any retransmission list, and (c) not referenced by the routing
// calculation — tracked via lsaEntry.refcount / lsaEntry.inDatabase, per
// spec.md §3 "Lifecycles".
type lsaArena struct {
	slots    []arenaSlot
	freeList []uint32
}

func (a *lsaArena) alloc(e *lsaEntry) LSAHandle {
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		slot := &a.slots[idx]
		slot.entry = e
		return LSAHandle{index: idx, gen: slot.gen}
	}
	idx := uint32(len(a.slots))
	a.slots = append(a.slots, arenaSlot{gen: 1, entry: e})
	return LSAHandle{index: idx, gen: 1}
}

func (a *lsaArena) get(h LSAHandle) (*lsaEntry, bool) {
	if !h.Valid() || int(h.index) >= len(a.slots) {
		return nil, false
	}
	slot := &a.slots[h.index]
	if slot.gen != h.gen || slot.entry == nil {
		return nil, false
	}
	return slot.entry, true
}

// free releases the slot for reuse, bumping its generation so any
// lingering LSAHandle values referencing it become invalid rather than
// aliasing whatever gets allocated into the slot next.
func (a *lsaArena) free(h LSAHandle) {
	if !h.Valid() || int(h.index) >= len(a.slots) {
		return
	}
	slot := &a.slots[h.index]
	if slot.gen != h.gen {
		return
	}
	slot.entry = nil
	slot.gen++
	a.freeList = append(a.freeList, h.index)
}
