package ospf

// spfVertex is one Dijkstra candidate: a router or transit network
// within the area currently being computed. Grounded on
// original_source/ospfd/src/spf.C's candidate-list shape, re-expressed
// over the already-built PriQ (priq.go) instead of a hand-rolled heap.
type spfVertex struct {
	pqElem PQElement

	isRouter bool
	id       uint32 // Router ID, or network's Link State ID (its address)
	mask     uint32 // meaningful only for network vertices

	cost   uint32
	mpath  *MPath
	lsa    *lsaEntry
	nbrSeen bool // this router's link to the vertex has actually been verified bidirectional
}

func (v *spfVertex) pqHeader() *PQElement { return &v.pqElem }

// scheduleSPF marks area's routing table dirty; a real event loop would
// debounce this behind a short timer (RFC 2328's SPF-delay), but the
// core just runs it inline since SPF itself is idempotent and cheap
// relative to flooding.
func (o *Ospf) scheduleSPF(a *Area) {
	o.runSPF(a)
	o.runInterArea()
	o.runExternal()
}

// runSPF computes the intra-area shortest-path tree for area a via
// Dijkstra over its router- and network-LSAs, installing one
// RouteIntraArea entry per discovered network, per RFC 2328 §16.1.
func (o *Ospf) runSPF(a *Area) {
	var pq PriQ
	visited := make(map[Key]*spfVertex)

	root := &spfVertex{isRouter: true, id: o.RouterID, cost: 0}
	root.pqElem.cost = Cost{Cost0: 0}
	pq.Add(root)
	visited[Key{K1: root.id, K2: 1}] = root

	for pq.Len() > 0 {
		v := pq.RemoveHead().(*spfVertex)
		if v.isRouter {
			o.expandRouterVertex(a, v, &pq, visited)
		} else {
			o.expandNetworkVertex(a, v, &pq, visited)
			o.installNetworkRoute(a, v)
		}
	}
}

func vertexKey(isRouter bool, id uint32) Key {
	if isRouter {
		return Key{K1: id, K2: 1}
	}
	return Key{K1: id, K2: 2}
}

func (o *Ospf) expandRouterVertex(a *Area, v *spfVertex, pq *PriQ, visited map[Key]*spfVertex) {
	lsa, ok := a.lsdb.Lookup(LSTypeRouter, a.ID, 0, v.id, v.id)
	if !ok {
		return
	}
	router, ok := lsa.native.(*RouterLSA)
	if !ok {
		return
	}
	v.lsa = lsa

	for _, link := range router.Links {
		switch link.Type {
		case LinkPointToPoint, LinkVirtual:
			o.relax(a, v, true, link.ID, 0, uint32(link.Metric), pq, visited)
		case LinkTransit:
			o.relax(a, v, false, link.ID, 0, uint32(link.Metric), pq, visited)
		case LinkStub:
			o.considerStubRoute(a, v, link)
		}
	}
}

func (o *Ospf) expandNetworkVertex(a *Area, v *spfVertex, pq *PriQ, visited map[Key]*spfVertex) {
	lsa, ok := a.networkLSAByAddr(v.id)
	if !ok {
		return
	}
	net, ok := lsa.native.(*NetworkLSA)
	if !ok {
		return
	}
	v.lsa = lsa
	v.mask = net.Mask
	for _, rid := range net.Attached {
		o.relax(a, v, true, rid, 0, 0, pq, visited)
	}
}

// relax offers a candidate edge from v to (isRouter,id): RFC 2328
// §16.1's "next hop calculation", generalized to merge equal-cost paths
// via the shared MPathTable instead of the original's linked-list union.
func (o *Ospf) relax(a *Area, v *spfVertex, isRouter bool, id, mask, metric uint32, pq *PriQ, visited map[Key]*spfVertex) {
	k := vertexKey(isRouter, id)
	newCost := v.cost + metric

	nh := o.nextHopFor(a, v, isRouter, id)

	if existing, ok := visited[k]; ok {
		if newCost < existing.cost {
			existing.cost = newCost
			existing.mpath = o.routes.mpaths.Intern([]NextHop{nh})
			if existing.pqElem.InQueue() {
				existing.pqElem.cost = Cost{Cost0: newCost}
				pq.Reprioritize(existing)
			}
		} else if newCost == existing.cost && nh != (NextHop{}) {
			existing.mpath = o.routes.mpaths.AddGateway(existing.mpath, nh)
		}
		return
	}

	nv := &spfVertex{isRouter: isRouter, id: id, mask: mask, cost: newCost, mpath: o.routes.mpaths.Intern([]NextHop{nh})}
	nv.pqElem.cost = Cost{Cost0: newCost}
	visited[k] = nv
	pq.Add(nv)
}

// nextHopFor determines the actual outgoing interface/gateway for a new
// edge: if v is the root, the next hop is directly reachable; otherwise
// it's inherited from v's own next hop (multi-hop paths reuse the first
// hop discovered at distance 1, per RFC 2328 §16.1 step 2).
func (o *Ospf) nextHopFor(a *Area, v *spfVertex, toRouter bool, toID uint32) NextHop {
	if v.id == o.RouterID && v.isRouter {
		for _, intf := range a.interfaces {
			if !toRouter {
				if intf.Addr&intf.Mask == toID&intf.Mask {
					return NextHop{OutgoingAddr: intf.Addr, PhyIndex: intf.Index, Gateway: 0}
				}
				continue
			}
			for _, n := range intf.neighbors {
				if n.routerID == toID && n.state == NbrFull {
					return NextHop{OutgoingAddr: intf.Addr, PhyIndex: intf.Index, Gateway: n.addr}
				}
			}
		}
		return NextHop{}
	}
	if v.mpath.NumPaths() > 0 {
		return v.mpath.Hops()[0]
	}
	return NextHop{}
}

func (o *Ospf) considerStubRoute(a *Area, v *spfVertex, link RouterLink) {
	network := link.ID & link.Data
	mask := link.Data
	cost := v.cost + uint32(link.Metric)
	nh := o.nextHopFor(a, v, false, network)
	mp := o.routes.mpaths.Intern([]NextHop{nh})
	o.installRoute(a, network, mask, RouteIntraArea, cost, 0, mp, v.lsa.header.LSType, v.lsa.header.LinkState, v.lsa.header.AdvRouter)
}

func (o *Ospf) installNetworkRoute(a *Area, v *spfVertex) {
	if v.lsa == nil {
		return
	}
	o.installRoute(a, v.id&v.mask, v.mask, RouteIntraArea, v.cost, 0, v.mpath, LSTypeNetwork, v.id, 0)
}

func (o *Ospf) installRoute(a *Area, network, mask uint32, typ RouteType, cost, type2Cost uint32, mp *MPath, originType LSType, originID, originAdv uint32) {
	e := &RouteEntry{Network: network, Mask: mask, Type: typ, Cost: cost, Type2Cost: type2Cost, Area: a.ID, MPath: mp,
		originType: originType, originLSID: originID, originAdv: originAdv}
	if existing, ok := o.routes.Lookup(network, mask); ok && existing.Type < typ {
		return // a better-scoped route (e.g. intra-area) already wins over inter-area/external
	}
	o.routes.Upsert(e)
	if e.changed {
		o.applyRouteToKernel(e)
	}
}

func (o *Ospf) applyRouteToKernel(e *RouteEntry) {
	if e.Type == RouteReject || e.MPath.NumPaths() == 0 {
		o.sys.RemoveRoute(e.Network, e.Mask)
		return
	}
	if err := o.sys.InstallRoute(e.Network, e.Mask, e.MPath.Hops()); err != nil {
		o.log(10, LogErr, "install route %#x/%#x: %v", e.Network, e.Mask, err)
	}
}
