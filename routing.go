package ospf

// NextHop is one element of a multipath set: the outgoing interface's own
// address, the physical interface index it belongs to, and the gateway
// (next-hop router) address. Grounded on
// original_source/ospfd/src/rte.h's MPath shape.
type NextHop struct {
	OutgoingAddr uint32
	PhyIndex     uint32
	Gateway      uint32
}

// MPath is an interned set of up to MaxPath next hops. Two MPath values
// with the same next-hop set always resolve to the same *MPath pointer
// (see mpathTable below), so routing.go and spf.go compare multipath
// identity with pointer equality rather than a deep comparison — this is
// the invariant spec.md §8 calls out explicitly.
type MPath struct {
	hops []NextHop
}

// NumPaths returns the number of next hops in the set.
func (m *MPath) NumPaths() int {
	if m == nil {
		return 0
	}
	return len(m.hops)
}

// Hops returns the set's next hops. Callers must not mutate the result;
// MPath values are shared by every route that interns to the same set.
func (m *MPath) Hops() []NextHop { return m.hops }

func (m *MPath) equalSet(hops []NextHop) bool {
	if len(m.hops) != len(hops) {
		return false
	}
	for i := range hops {
		if m.hops[i] != hops[i] {
			return false
		}
	}
	return true
}

// mpathKey produces the sorted byte image of a next-hop array used as the
// Patricia trie interning key, per spec.md §3 "Multipath": "a Patricia
// trie keyed by the sorted byte-image of the next-hop array, so pointer
// equality implies set equality."
func mpathKey(hops []NextHop) []byte {
	sorted := append([]NextHop(nil), hops...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && nextHopLess(sorted[j], sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	b := make([]byte, 0, 12*len(sorted))
	for _, h := range sorted {
		b = append(b,
			byte(h.OutgoingAddr>>24), byte(h.OutgoingAddr>>16), byte(h.OutgoingAddr>>8), byte(h.OutgoingAddr),
			byte(h.PhyIndex>>24), byte(h.PhyIndex>>16), byte(h.PhyIndex>>8), byte(h.PhyIndex),
			byte(h.Gateway>>24), byte(h.Gateway>>16), byte(h.Gateway>>8), byte(h.Gateway))
	}
	return b
}

func nextHopLess(a, b NextHop) bool {
	if a.PhyIndex != b.PhyIndex {
		return a.PhyIndex < b.PhyIndex
	}
	if a.Gateway != b.Gateway {
		return a.Gateway < b.Gateway
	}
	return a.OutgoingAddr < b.OutgoingAddr
}

// MPathTable interns multipath sets via a Patricia trie keyed by their
// sorted byte image.
type MPathTable struct {
	trie PatriciaTrie
}

// Intern returns the canonical *MPath for hops, creating it if this exact
// set has never been seen before. The input is capped at MaxPath entries
// (callers are expected to have already merged/deduplicated down to
// MaxPath, per spec.md's "Equal-cost paths are merged via multipath
// interning, capped at MAXPATH").
func (t *MPathTable) Intern(hops []NextHop) *MPath {
	if len(hops) > MaxPath {
		hops = hops[:MaxPath]
	}
	key := mpathKey(hops)
	if v, ok := t.trie.Find(key); ok {
		return v
	}
	m := &MPath{hops: append([]NextHop(nil), hops...)}
	t.trie.Add(key, m)
	return m
}

// Merge unions a and b's next-hop sets (deduplicated), capped at MaxPath,
// and interns the result.
func (t *MPathTable) Merge(a, b *MPath) *MPath {
	merged := append([]NextHop(nil), a.hops...)
	for _, h := range b.hops {
		if !containsHop(merged, h) {
			merged = append(merged, h)
		}
	}
	return t.Intern(merged)
}

// AddGateway returns the interned set formed by appending gw to a's
// next-hop set, if not already present.
func (t *MPathTable) AddGateway(a *MPath, gw NextHop) *MPath {
	if containsHop(a.hops, gw) {
		return a
	}
	return t.Intern(append(append([]NextHop(nil), a.hops...), gw))
}

// PrunePhysical returns the interned set formed by removing every next
// hop on physical interface phy from a (e.g. on InterfaceDown).
func (t *MPathTable) PrunePhysical(a *MPath, phy uint32) *MPath {
	var kept []NextHop
	for _, h := range a.hops {
		if h.PhyIndex != phy {
			kept = append(kept, h)
		}
	}
	return t.Intern(kept)
}

func containsHop(hops []NextHop, h NextHop) bool {
	for _, x := range hops {
		if x == h {
			return true
		}
	}
	return false
}

// RouteType classifies how a routing-table entry was computed (spec.md
// §3 "Routing table").
type RouteType int

const (
	RouteNone RouteType = iota
	RouteDirect
	RouteIntraArea
	RouteInterArea
	RouteExternalType1
	RouteExternalType2
	RouteReject
	RouteStatic
)

// faEntry is a resolved forwarding-address: the cost and next hops to
// reach an ASBR or forwarding address, cached by spf_interarea.go and
// consumed by spf_external.go when the target isn't a direct routing
// table entry (e.g. an ASBR reachable only through a summary-LSA).
type faEntry struct {
	Cost  uint32
	MPath *MPath
}

// RouteEntry is one entry of the routing table, keyed by (network, mask).
type RouteEntry struct {
	Network uint32
	Mask    uint32

	Type   RouteType
	Cost   uint32
	Type2Cost uint32 // meaningful only for RouteExternalType2
	Area   uint32
	MPath  *MPath

	// originLSA identifies the LSA this route was computed from, used to
	// invalidate the route when that LSA is replaced or flushed.
	originType   LSType
	originLSID   uint32
	originAdv    uint32

	changed  bool
	lastMPath *MPath
}

// RoutingTable is the ordered map of (network,mask) -> RouteEntry
// (spec.md §3 "Routing table"), plus the shared multipath intern table.
type RoutingTable struct {
	tree   Tree[*RouteEntry]
	mpaths MPathTable
}

func routeKey(network, mask uint32) Key { return Key{K1: network, K2: mask} }

// Lookup returns the current route for (network, mask), if present.
func (rt *RoutingTable) Lookup(network, mask uint32) (*RouteEntry, bool) {
	return rt.tree.Find(routeKey(network, mask))
}

// Upsert installs or replaces the route for (network, mask), marking it
// changed if its type, cost, or multipath identity actually differs from
// what was there before — the "changed" flag spec.md §3 says drives
// kernel installation.
func (rt *RoutingTable) Upsert(e *RouteEntry) {
	old, existed := rt.tree.Find(routeKey(e.Network, e.Mask))
	if existed && old.Type == e.Type && old.Cost == e.Cost && old.Type2Cost == e.Type2Cost && old.MPath == e.MPath && old.Area == e.Area {
		e.changed = false
		e.lastMPath = old.lastMPath
	} else {
		e.changed = true
	}
	rt.tree.Insert(routeKey(e.Network, e.Mask), e)
}

// Remove deletes the route for (network, mask).
func (rt *RoutingTable) Remove(network, mask uint32) {
	rt.tree.Remove(routeKey(network, mask))
}

// Iterate returns an iterator over every routing-table entry in
// (network, mask) order.
func (rt *RoutingTable) Iterate() *Iterator[*RouteEntry] { return rt.tree.Iterate() }
