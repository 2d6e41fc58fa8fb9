package ospf

// AreaRange is a configured address range an ABR aggregates summary-LSAs
// into, per spec.md §3 "Area" / RFC 2328 §12.4.3.
type AreaRange struct {
	Network  uint32
	Mask     uint32
	Advertise bool // false => suppress (DoNotAdvertise range)
}

// Area is one OSPF area: its own link-state database (router, network,
// and summary LSAs are area-scoped), configured ranges, and the
// interfaces attached to it. Grounded on mdlayher-ospf3's flat,
// single-purpose-struct style, generalized from "one link per message"
// to "one LSDB + interface set per area".
type Area struct {
	owner *Ospf
	ID    uint32

	Stub    bool
	StubCost uint32 // default-route cost advertised into a stub area

	lsdb LSDB

	ranges     []AreaRange
	interfaces map[uint32]*Interface // keyed by interface index

	transitCapability bool // true once a virtual link traverses this area
}

func newArea(o *Ospf, id uint32) *Area {
	a := &Area{owner: o, ID: id, interfaces: make(map[uint32]*Interface)}
	a.lsdb = *newLSDB(o)
	return a
}

// AddRange appends a configured aggregation range to the area.
func (a *Area) AddRange(r AreaRange) { a.ranges = append(a.ranges, r) }

// rangeFor returns the most specific configured range containing
// (network, mask), if any — used by spf_interarea.go to decide whether
// an intra-area route should be aggregated or suppressed at the ABR.
func (a *Area) rangeFor(network, mask uint32) (AreaRange, bool) {
	var best AreaRange
	found := false
	for _, r := range a.ranges {
		if r.Mask > mask {
			continue // more specific than the route itself: cannot contain it
		}
		if network&r.Mask == r.Network&r.Mask {
			if !found || r.Mask > best.Mask {
				best, found = r, true
			}
		}
	}
	return best, found
}

// AddInterface attaches intf to the area, replacing area.ID on the
// interface to keep the back-reference consistent.
func (a *Area) AddInterface(intf *Interface) {
	intf.Area = a
	a.interfaces[intf.Index] = intf
}

// withdrawSelfOriginated flushes every self-originated LSA in this
// area's LSDB (router-LSA, any network-LSAs for DR interfaces, any
// summary-LSAs this router originates as ABR), the first step of a
// graceful Shutdown.
func (a *Area) withdrawSelfOriginated() {
	for _, t := range a.lsdb.tables {
		it := t.Iterate()
		for {
			_, h, ok := it.Next()
			if !ok {
				break
			}
			e, ok := a.lsdb.arena.get(h)
			if !ok || !e.selfOrig {
				continue
			}
			a.lsdb.Flush(e)
		}
	}
}

// networkLSAByAddr finds this area's network-LSA for the transit network
// whose Link State ID is addr (the DR's interface address on it), since
// Dijkstra's router-LSA Transit links don't carry the DR's Router ID
// needed for an exact (LinkState, AdvRouter) lookup.
func (a *Area) networkLSAByAddr(addr uint32) (*lsaEntry, bool) {
	t, ok := a.lsdb.tables[lsdbKey{sc: scopeArea, scopeID: a.ID, lsType: LSTypeNetwork}]
	if !ok {
		return nil, false
	}
	it := t.Iterate()
	for {
		_, h, ok := it.Next()
		if !ok {
			return nil, false
		}
		if e, ok := a.lsdb.arena.get(h); ok && e.header.LinkState == addr {
			return e, true
		}
	}
}

// isABR reports whether this router has active interfaces in more than
// one area (or one area plus the backbone), the RFC 2328 definition of
// an Area Border Router.
func (o *Ospf) isABR() bool {
	nonEmpty := 0
	for _, a := range o.areas {
		if len(a.interfaces) > 0 {
			nonEmpty++
		}
	}
	return nonEmpty > 1
}
