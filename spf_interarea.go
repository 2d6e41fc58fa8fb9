package ospf

// runInterArea scans every area's summary-LSAs to extend routes beyond
// what intra-area SPF reaches, per RFC 2328 §16.2, and — if this router
// is an ABR — originates the summary-LSAs neighboring areas need, per
// §12.4.3. Grounded on original_source/ospfd/src/rte.C's two-pass ABR
// summarization, re-expressed as plain iteration over the already-built
// RoutingTable/LSDB instead of the original's manual route-list walk.
func (o *Ospf) runInterArea() {
	for _, a := range o.areas {
		o.scanSummaryLSAs(a)
	}
	if o.isABR() {
		o.originateSummariesForABR()
	}
	o.runVirtualLinks()
}

func (o *Ospf) scanSummaryLSAs(a *Area) {
	for _, lsType := range []LSType{LSTypeSummaryNet, LSTypeSummaryASBR} {
		t, ok := a.lsdb.tables[lsdbKey{sc: scopeArea, scopeID: a.ID, lsType: lsType}]
		if !ok {
			continue
		}
		it := t.Iterate()
		for {
			_, h, ok := it.Next()
			if !ok {
				break
			}
			e, ok := a.lsdb.arena.get(h)
			if !ok || e.selfOrig {
				continue
			}
			summ, ok := e.native.(*SummaryLSA)
			if !ok {
				continue
			}
			abrEntry, ok := a.lsdb.Lookup(LSTypeRouter, a.ID, 0, e.header.AdvRouter, e.header.AdvRouter)
			if !ok {
				continue
			}
			abrRoute, ok := o.routes.Lookup(e.header.AdvRouter, 0xffffffff)
			_ = abrEntry
			if !ok || abrRoute.Type != RouteIntraArea {
				continue
			}
			cost := abrRoute.Cost + summ.Metric
			network := e.header.LinkState & summ.Mask
			typ := RouteInterArea
			if lsType == LSTypeSummaryASBR {
				// ASBR reachability entries feed spf_external.go rather than
				// becoming a routable network themselves.
				o.fa_tbl[e.header.LinkState] = faEntry{Cost: cost, MPath: abrRoute.MPath}
				continue
			}
			o.installRoute(a, network, summ.Mask, typ, cost, 0, abrRoute.MPath, lsType, e.header.LinkState, e.header.AdvRouter)
		}
	}
}

// originateSummariesForABR advertises every intra-area route this
// router has computed for one area into every OTHER attached area,
// applying configured range aggregation/suppression (RFC 2328 §12.4.3).
func (o *Ospf) originateSummariesForABR() {
	it := o.routes.Iterate()
	for {
		_, e, ok := it.Next()
		if !ok {
			break
		}
		if e.Type != RouteIntraArea {
			continue
		}
		for id, a := range o.areas {
			if id == e.Area || len(a.interfaces) == 0 {
				continue
			}
			if a.Stub && e.Type == RouteExternalType1 {
				continue
			}
			network, mask := e.Network, e.Mask
			if r, ok := a.rangeFor(network, mask); ok {
				if !r.Advertise {
					continue
				}
				network, mask = r.Network, r.Mask
			}
			o.originateSummaryLSA(a, network, mask, e.Cost, false)
		}
	}
}

// runVirtualLinks resolves any configured virtual link's endpoint cost
// through its transit area and, once resolved, treats the link as a
// point-to-point interface into the backbone (RFC 2328 §15).
func (o *Ospf) runVirtualLinks() {
	backbone, ok := o.areas[0]
	if !ok {
		return
	}
	for _, intf := range backbone.interfaces {
		if intf.Type != IfVirtualLink {
			continue
		}
		transit, ok := o.areas[intf.vlinkTransitArea]
		if !ok || !transit.transitCapability {
			continue
		}
		route, ok := o.routes.Lookup(intf.vlinkRemoteID, 0xffffffff)
		if !ok {
			continue
		}
		intf.Cost = route.Cost
	}
}
