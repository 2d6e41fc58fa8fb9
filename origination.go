package ospf

// originLimiter tracks, per (area, LSType, LinkState), the last time
// this router originated that LSA, enforcing MinLSInterval — RFC 2328
// §12.4's "an LSA may not be originated more than once every
// MinLSInterval seconds" — grounded on original_source/ospfd/src/lsa.C's
// "new_flood_rate" throttle.
type originLimiter struct {
	last map[Key]Time
}

func (l *originLimiter) allow(now Time, lsID, advRouter uint32) bool {
	if l.last == nil {
		l.last = make(map[Key]Time)
	}
	k := Key{K1: lsID, K2: advRouter}
	if prev, ok := l.last[k]; ok && timeLessEqual(now, addMillis(prev, MinLSInterval*1000)) {
		return false
	}
	l.last[k] = now
	return true
}

// originateRouterLSA (re)builds and installs this router's router-LSA
// for area, aggregating one RouterLink per fully-adjacent neighbor and
// one per configured-but-not-yet-full interface as a stub link, per RFC
// 2328 §12.4.1. Grounded on original_source/ospfd/src/rte.C's link
// aggregation, expressed as a straight Go loop instead of the
// original's manual link-list splicing.
func (o *Ospf) originateRouterLSA(a *Area) {
	if !o.originLimiter.allow(o.lastTick, o.RouterID, o.RouterID) {
		return
	}
	var links []RouterLink
	for _, intf := range a.interfaces {
		links = append(links, o.routerLinksFor(intf)...)
	}

	body := RouterLSA{
		Bits:  RouterLSABits{ABR: o.isABR(), ASBR: o.hasASExternalOrigination()},
		Links: links,
	}
	buf := make([]byte, body.Len())
	body.marshal(buf)
	o.installSelfOriginated(a, LSTypeRouter, o.RouterID, o.RouterID, buf)
}

func (o *Ospf) routerLinksFor(intf *Interface) []RouterLink {
	var links []RouterLink
	switch intf.Type {
	case IfPointToPoint, IfVirtualLink:
		for _, n := range intf.neighbors {
			if n.state != NbrFull {
				continue
			}
			links = append(links, RouterLink{Type: linkTypeForIntf(intf), ID: n.routerID, Data: intf.Addr, Metric: uint16(intf.Cost)})
		}
		if len(links) == 0 {
			links = append(links, RouterLink{Type: LinkStub, ID: intf.Addr & intf.Mask, Data: intf.Mask, Metric: uint16(intf.Cost)})
		}
	case IfBroadcast, IfNBMA:
		if intf.DR != 0 && intf.hasFullAdjacencyToDR() {
			links = append(links, RouterLink{Type: LinkTransit, ID: intf.DR, Data: intf.Addr, Metric: uint16(intf.Cost)})
		} else {
			links = append(links, RouterLink{Type: LinkStub, ID: intf.Addr & intf.Mask, Data: intf.Mask, Metric: uint16(intf.Cost)})
		}
	case IfPointToMultipoint:
		for _, n := range intf.neighbors {
			if n.state != NbrFull {
				continue
			}
			links = append(links, RouterLink{Type: LinkPointToPoint, ID: n.routerID, Data: intf.Addr, Metric: uint16(intf.Cost)})
		}
		links = append(links, RouterLink{Type: LinkStub, ID: intf.Addr, Data: 0xffffffff, Metric: 0})
	case IfLoopback:
		links = append(links, RouterLink{Type: LinkStub, ID: intf.Addr, Data: 0xffffffff, Metric: 0})
	}
	return links
}

func linkTypeForIntf(intf *Interface) RouterLinkType {
	if intf.Type == IfVirtualLink {
		return LinkVirtual
	}
	return LinkPointToPoint
}

func (intf *Interface) hasFullAdjacencyToDR() bool {
	if intf.isDR() {
		return true
	}
	for _, n := range intf.neighbors {
		if n.routerID == intf.DR && n.state == NbrFull {
			return true
		}
	}
	return false
}

// originateNetworkLSA (re)builds the network-LSA this router originates
// as DR on intf, listing every fully-adjacent attached router (plus
// itself), per RFC 2328 §12.4.2.
func (o *Ospf) originateNetworkLSA(intf *Interface) {
	if !o.originLimiter.allow(o.lastTick, intf.Addr, o.RouterID) {
		return
	}
	attached := []uint32{o.RouterID}
	for _, n := range intf.neighbors {
		if n.state == NbrFull {
			attached = append(attached, n.routerID)
		}
	}
	body := NetworkLSA{Mask: intf.Mask, Attached: attached}
	buf := make([]byte, body.Len())
	body.marshal(buf)
	o.installSelfOriginated(intf.Area, LSTypeNetwork, intf.Addr, o.RouterID, buf)
}

// originateSummaryLSA is invoked by spf_interarea.go for every intra-
// area route this ABR advertises into a neighboring area, per RFC 2328
// §12.4.3.
func (o *Ospf) originateSummaryLSA(a *Area, network, mask, cost uint32, asbr bool) {
	if !o.originLimiter.allow(o.lastTick, network, o.RouterID) {
		return
	}
	lsType := LSTypeSummaryNet
	if asbr {
		lsType = LSTypeSummaryASBR
	}
	body := SummaryLSA{Mask: mask, Metric: cost}
	buf := make([]byte, body.Len())
	body.marshal(buf)
	o.installSelfOriginated(a, lsType, network, o.RouterID, buf)
}

// originateASExternalLSA installs or refreshes an AS-external LSA for a
// route imported from outside OSPF (spec.md §3's external-route
// attachment hook), flooded AS-wide.
func (o *Ospf) originateASExternalLSA(network, mask, metric uint32, type2 bool, forwardingAddr uint32) {
	if !o.originLimiter.allow(o.lastTick, network, o.RouterID) {
		return
	}
	metricType := ExternalType1
	if type2 {
		metricType = ExternalType2
	}
	body := ASExternalLSA{Mask: mask, MetricType: metricType, Metric: metric, ForwardingAddr: forwardingAddr}
	anyArea := o.anyNonStubArea()
	if anyArea == nil {
		return
	}
	buf := make([]byte, body.Len())
	body.marshal(buf)
	o.installSelfOriginated(anyArea, LSTypeASExternal, network, o.RouterID, buf)
}

func (o *Ospf) anyNonStubArea() *Area {
	for _, a := range o.areas {
		if !a.Stub {
			return a
		}
	}
	return nil
}

func (o *Ospf) hasASExternalOrigination() bool {
	for _, a := range o.areas {
		t, ok := a.lsdb.tables[lsdbKey{sc: scopeAS, scopeID: 0, lsType: LSTypeASExternal}]
		if !ok {
			continue
		}
		it := t.Iterate()
		for {
			_, h, ok := it.Next()
			if !ok {
				break
			}
			if e, ok := a.lsdb.arena.get(h); ok && e.selfOrig {
				return true
			}
		}
	}
	return false
}

// installSelfOriginated bumps the sequence number past any existing
// instance of (lsType, linkStateID, RouterID) and installs+floods the
// new one, per RFC 2328 §12.4's re-origination sequencing.
func (o *Ospf) installSelfOriginated(a *Area, lsType LSType, linkStateID, advRouter uint32, body []byte) {
	ifIndex := uint32(0)
	if lsType.scope() == scopeLinkLocal {
		ifIndex = linkStateID // linkStateID carries the interface address for link-local opaque LSAs
	}
	seq := InitLSSeq
	if old, ok := a.lsdb.Lookup(lsType, a.ID, ifIndex, linkStateID, advRouter); ok {
		if old.header.SeqNum == MaxLSSeq {
			// RFC 2328 §12.1.6 wraparound: flush the old instance at MaxAge.
			// No new instance is originated while the flushed one is still in
			// the database; the first origination after it has been freed
			// starts again at InitLSSeq. Nothing here schedules that
			// origination; it waits for the next caller.
			a.lsdb.Flush(old)
			return
		}
		seq = old.header.SeqNum + 1
	}
	hdr := LSAHeader{LSType: lsType, LinkState: linkStateID, AdvRouter: advRouter, SeqNum: seq}
	hdr.Length = uint16(lsaHeaderLen + len(body))
	hdr.Checksum = lsaChecksum(hdr, body)

	result, e := a.lsdb.Install(lsType, a.ID, ifIndex, hdr, body, 0, true)
	if result == InstallNewer {
		o.floodToScope(e)
	}
}

// reoriginate re-issues e (a self-originated LSA) with a bumped
// sequence number, used both for LSRefreshTime refresh and for
// resolving a stale-but-still-circulating older instance seen on the
// wire.
func (o *Ospf) reoriginate(e *lsaEntry) {
	a := o.areaForEntry(e)
	if a == nil {
		return
	}
	o.installSelfOriginated(a, e.header.LSType, e.header.LinkState, e.header.AdvRouter, e.body)
}

func (o *Ospf) areaForEntry(e *lsaEntry) *Area {
	switch e.dbScope {
	case scopeArea:
		return o.areas[e.scopeID]
	case scopeLinkLocal:
		if a, _ := o.interfaceByIndex(e.scopeID); a != nil {
			return a
		}
		return nil
	default:
		return o.anyNonStubArea()
	}
}
