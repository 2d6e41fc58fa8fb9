package ospf

import "fmt"

// lsaEntry is the database's private record for one LSA instance: header,
// raw body (kept for reflooding and checksum re-verification), and the
// lazily-typed native body every downstream consumer (Dijkstra,
// origination) actually wants. Grounded on spec.md §3 "Lifecycles":
// refcount and inDatabase gate deletion exactly as the spec requires.
type lsaEntry struct {
	header LSAHeader
	body   []byte
	native interface{} // *RouterLSA / *NetworkLSA / *SummaryLSA / *ASExternalLSA / *GraceLSA / nil

	refcount   int
	inDatabase bool
	selfOrig   bool

	// dbScope/scopeID identify which scoped table this entry lives in
	// (area ID for area scope, interface index for link-local scope, 0
	// for AS scope), so removal can find its way back to the same table
	// it was inserted into without re-deriving scope from LS type alone.
	dbScope scope
	scopeID uint32

	// Aging-bin intrusive list membership. binIndex == -1 means "not in
	// the aging ring" (DoNotAge); -2 means "on the MaxAge list".
	binIndex         int
	binNext, binPrev LSAHandle

	// Refresh-bin intrusive list membership for self-originated LSAs.
	refreshIndex         int
	refreshNext, refreshPrev LSAHandle

	handle LSAHandle
}

// lsdbKey identifies one (scope, area-or-interface, type) database.
type lsdbKey struct {
	sc     scope
	scopeID uint32 // area ID for scopeArea, interface index for scopeLinkLocal, 0 for scopeAS
	lsType LSType
}

// LSDB is the link-state database of one area (each Area owns one, see
// newArea): its scoped tables, the aging-bin ring, the refresh-bin ring, and the rolling
// checksum used as a cheap whole-database integrity summary (spec.md
// §3 "LSDB indexing", §4.2).
type LSDB struct {
	owner *Ospf

	arena  lsaArena
	tables map[lsdbKey]*Tree[LSAHandle]

	// Aging bins: circular ring of size MaxAge+1. bin0 rotates once per
	// second; an LSA's age is (bin0-binIndex) mod (MaxAge+1).
	bins    [MaxAge + 1]LSAHandle // head of each bin's intrusive list (zero Handle = empty)
	bin0    int
	maxAgeList []LSAHandle

	// Refresh bins: circular ring of size MaxAgeDiff for self-originated
	// LSAs awaiting LSRefreshTime refresh.
	refreshBins [MaxAgeDiff]LSAHandle
	refresh0    int

	xorChecksum uint16
}

func newLSDB(o *Ospf) *LSDB {
	return &LSDB{owner: o, tables: make(map[lsdbKey]*Tree[LSAHandle])}
}

func (db *LSDB) table(k lsdbKey) *Tree[LSAHandle] {
	t, ok := db.tables[k]
	if !ok {
		t = &Tree[LSAHandle]{}
		db.tables[k] = t
	}
	return t
}

func dbKeyFor(lsType LSType, areaID uint32, ifIndex uint32) lsdbKey {
	switch lsType.scope() {
	case scopeAS:
		return lsdbKey{sc: scopeAS, scopeID: 0, lsType: lsType}
	case scopeLinkLocal:
		return lsdbKey{sc: scopeLinkLocal, scopeID: ifIndex, lsType: lsType}
	default:
		return lsdbKey{sc: scopeArea, scopeID: areaID, lsType: lsType}
	}
}

func entryKey(h LSAHeader) Key { return Key{K1: h.LinkState, K2: h.AdvRouter} }

// Lookup finds the current instance of (lsType, linkStateID, advRouter)
// within the given scope context.
func (db *LSDB) Lookup(lsType LSType, areaID, ifIndex, linkStateID, advRouter uint32) (*lsaEntry, bool) {
	t := db.table(dbKeyFor(lsType, areaID, ifIndex))
	h, ok := t.Find(Key{K1: linkStateID, K2: advRouter})
	if !ok {
		return nil, false
	}
	e, ok := db.arena.get(h)
	return e, ok
}

// ageOf returns an entry's current age: derived from the bin ring unless
// the entry has DoNotAge set or already sits on the MaxAge list, in which
// case the stored header age is authoritative.
func (db *LSDB) ageOf(e *lsaEntry) uint16 {
	if e.header.DoNotAgeSet() {
		return e.header.PlainAge()
	}
	if e.binIndex < 0 {
		return e.header.PlainAge()
	}
	diff := db.bin0 - e.binIndex
	if diff < 0 {
		diff += MaxAge + 1
	}
	return uint16(diff)
}

// InstallResult reports what Install actually did, so flooding.go can
// decide whether to reflood, ack, or refuse.
type InstallResult int

const (
	InstallNewer InstallResult = iota
	InstallEqual
	InstallOlder
	InstallRejected
)

// Install attempts to insert a received or self-built LSA (header + raw
// body) into the correct scoped table, per spec.md §4.2. receivedAge is
// the age the LSA arrived with (or, for self-origination, 0).
func (db *LSDB) Install(lsType LSType, areaID, ifIndex uint32, hdr LSAHeader, body []byte, receivedAge uint16, selfOriginated bool) (InstallResult, *lsaEntry) {
	t := db.table(dbKeyFor(lsType, areaID, ifIndex))
	key := Key{K1: hdr.LinkState, K2: hdr.AdvRouter}

	if oldHandle, ok := t.Find(key); ok {
		old, ok := db.arena.get(oldHandle)
		if !ok {
			// Stale tree entry pointing at a freed slot: treat as absent.
		} else {
			oldAge := db.ageOf(old)
			if !newerInstance(hdr, receivedAge, old.header, oldAge) {
				if hdr.SeqNum == old.header.SeqNum && hdr.Checksum == old.header.Checksum {
					return InstallEqual, old
				}
				return InstallOlder, old
			}
			db.detachFromBins(old)
			db.xorChecksum ^= old.header.Checksum
			native, _ := parseLSABody(lsType, body)
			old.header = hdr
			old.body = body
			old.native = native
			old.selfOrig = selfOriginated
			db.bucketEntry(old, receivedAge)
			db.xorChecksum ^= hdr.Checksum
			return InstallNewer, old
		}
	}

	native, _ := parseLSABody(lsType, body)
	k := dbKeyFor(lsType, areaID, ifIndex)
	e := &lsaEntry{header: hdr, body: body, native: native, inDatabase: true, selfOrig: selfOriginated,
		binIndex: -1, refreshIndex: -1, dbScope: k.sc, scopeID: k.scopeID}
	e.handle = db.arena.alloc(e)
	t.Insert(key, e.handle)
	db.bucketEntry(e, receivedAge)
	db.xorChecksum ^= hdr.Checksum
	return InstallNewer, e
}

func parseLSABody(lsType LSType, body []byte) (interface{}, error) {
	switch lsType {
	case LSTypeRouter:
		return parseRouterLSA(body)
	case LSTypeNetwork:
		return parseNetworkLSA(body)
	case LSTypeSummaryNet, LSTypeSummaryASBR:
		return parseSummaryLSA(body)
	case LSTypeASExternal, LSTypeNSSA:
		return parseASExternalLSA(body)
	case LSTypeOpaqueArea:
		return parseGraceLSA(body)
	default:
		return nil, nil
	}
}

// bucketEntry places e into the aging ring at (bin0 - receivedAge) mod
// (MaxAge+1), or the MaxAge list if it's already at MaxAge, or nowhere if
// DoNotAge is set; self-originated LSAs are additionally scheduled into
// the refresh ring.
func (db *LSDB) bucketEntry(e *lsaEntry, receivedAge uint16) {
	e.header.Age = receivedAge | e.header.Age&DoNotAge
	if e.selfOrig {
		e.header.Age = receivedAge
	}

	switch {
	case e.header.DoNotAgeSet():
		e.binIndex = -1
	case receivedAge >= MaxAge:
		db.pushMaxAge(e)
	default:
		idx := db.bin0 - int(receivedAge)
		idx = ((idx % (MaxAge + 1)) + (MaxAge + 1)) % (MaxAge + 1)
		db.linkBin(e, idx)
	}

	if e.selfOrig {
		db.scheduleRefresh(e)
	}
}

func (db *LSDB) linkBin(e *lsaEntry, idx int) {
	e.binIndex = idx
	head := db.bins[idx]
	e.binNext = head
	e.binPrev = LSAHandle{}
	if h, ok := db.arena.get(head); ok {
		h.binPrev = e.handle
	}
	db.bins[idx] = e.handle
}

func (db *LSDB) pushMaxAge(e *lsaEntry) {
	e.binIndex = -2 // sentinel: on the MaxAge list, not a ring bin
	db.maxAgeList = append(db.maxAgeList, e.handle)
}

// detachFromBins removes e from whichever aging structure currently holds
// it (a ring bin, the MaxAge list, or neither).
func (db *LSDB) detachFromBins(e *lsaEntry) {
	switch {
	case e.binIndex == -1:
		return
	case e.binIndex == -2:
		for i, h := range db.maxAgeList {
			if h == e.handle {
				db.maxAgeList = append(db.maxAgeList[:i], db.maxAgeList[i+1:]...)
				break
			}
		}
	default:
		if prev, ok := db.arena.get(e.binPrev); ok {
			prev.binNext = e.binNext
		} else {
			db.bins[e.binIndex] = e.binNext
		}
		if next, ok := db.arena.get(e.binNext); ok {
			next.binPrev = e.binPrev
		}
	}
	e.binIndex = -1
	e.binNext, e.binPrev = LSAHandle{}, LSAHandle{}
}

func (db *LSDB) scheduleRefresh(e *lsaEntry) {
	db.unscheduleRefresh(e)
	idx := (db.refresh0 + LSRefreshTime) % MaxAgeDiff
	e.refreshIndex = idx
	head := db.refreshBins[idx]
	e.refreshNext = head
	e.refreshPrev = LSAHandle{}
	if h, ok := db.arena.get(head); ok {
		h.refreshPrev = e.handle
	}
	db.refreshBins[idx] = e.handle
}

func (db *LSDB) unscheduleRefresh(e *lsaEntry) {
	if e.refreshIndex < 0 {
		return
	}
	if prev, ok := db.arena.get(e.refreshPrev); ok {
		prev.refreshNext = e.refreshNext
	} else {
		db.refreshBins[e.refreshIndex] = e.refreshNext
	}
	if next, ok := db.arena.get(e.refreshNext); ok {
		next.refreshPrev = e.refreshPrev
	}
	e.refreshIndex = -1
	e.refreshNext, e.refreshPrev = LSAHandle{}, LSAHandle{}
}

// AgeTick advances the aging ring by one second, per spec.md §4.2:
// LSAs rotating into the vacated Bin0 slot hit MaxAge and are reflooded;
// LSAs CheckAge seconds behind Bin0 are checksum-audited; self-originated
// LSAs in the current refresh slot are re-originated.
func (db *LSDB) AgeTick() {
	db.bin0 = (db.bin0 + 1) % (MaxAge + 1)

	// Bin0 now holds LSAs that have just reached MaxAge.
	for h := db.bins[db.bin0]; h.Valid(); {
		e, ok := db.arena.get(h)
		if !ok {
			break
		}
		next := e.binNext
		db.detachFromBins(e)
		e.header.Age = MaxAge
		db.pushMaxAge(e)
		db.owner.refloodMaxAge(e)
		h = next
	}

	// The bin CheckAge seconds behind bin0 is due for checksum audit.
	auditIdx := ((db.bin0-CheckAge)%(MaxAge+1) + (MaxAge + 1)) % (MaxAge + 1)
	for h := db.bins[auditIdx]; h.Valid(); {
		e, ok := db.arena.get(h)
		if !ok {
			break
		}
		if !VerifyChecksum(e.header, e.body) {
			db.owner.halt(HaltDBCorrupt, fmt.Sprintf("checksum audit failed for LSA type=%d id=%#x adv=%#x",
				e.header.LSType, e.header.LinkState, e.header.AdvRouter))
			return
		}
		h = e.binNext
	}

	// The current refresh slot comes round every MaxAgeDiff seconds; a
	// self-originated LSA in it is re-originated once its age has reached
	// LSRefreshTime, and otherwise stays for the next round.
	db.refresh0 = (db.refresh0 + 1) % MaxAgeDiff
	for h := db.refreshBins[db.refresh0]; h.Valid(); {
		e, ok := db.arena.get(h)
		if !ok {
			break
		}
		next := e.refreshNext
		if db.ageOf(e) >= LSRefreshTime {
			db.owner.reoriginateRefresh(e)
		}
		h = next
	}

	db.tryFreeMaxAged()
}

// Flush sets e's age to MaxAge and reschedules it for reflooding (spec.md
// §4.2 "Flush"), the mechanism used for explicit withdrawal. Nothing
// calls it when a neighbor lacking DoNotAge capability appears, so
// DoNotAge LSAs are not flushed on that event.
func (db *LSDB) Flush(e *lsaEntry) {
	db.detachFromBins(e)
	e.header.Age = MaxAge
	db.pushMaxAge(e)
	db.owner.refloodMaxAge(e)
}

// tryFreeMaxAged releases every MaxAge-list entry with no outstanding
// retransmission or routing-calculation references.
func (db *LSDB) tryFreeMaxAged() {
	kept := db.maxAgeList[:0]
	for _, h := range db.maxAgeList {
		e, ok := db.arena.get(h)
		if !ok {
			continue
		}
		if e.refcount > 0 || db.owner.anyNeighborExchanging() {
			kept = append(kept, h)
			continue
		}
		db.removeEntry(e)
	}
	db.maxAgeList = kept
}

func (db *LSDB) removeEntry(e *lsaEntry) {
	t := db.table(lsdbKey{sc: e.dbScope, scopeID: e.scopeID, lsType: e.header.LSType})
	t.Remove(entryKey(e.header))
	db.unscheduleRefresh(e)
	db.xorChecksum ^= e.header.Checksum
	e.inDatabase = false
	db.arena.free(e.handle)
}

// Ref increments e's retransmission/routing reference count.
func (db *LSDB) Ref(e *lsaEntry) { e.refcount++ }

// Unref decrements e's reference count and, if it has reached zero while
// already at MaxAge, frees it immediately.
func (db *LSDB) Unref(e *lsaEntry) {
	if e.refcount > 0 {
		e.refcount--
	}
	if e.binIndex == -2 && e.refcount == 0 && !db.owner.anyNeighborExchanging() {
		db.removeEntry(e)
	}
}

// Checksum returns the LSDB's rolling XOR of every header checksum
// currently installed, a cheap whole-database integrity summary.
func (db *LSDB) Checksum() uint16 { return db.xorChecksum }
