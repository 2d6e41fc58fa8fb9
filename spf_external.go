package ospf

// runExternal attaches AS-external routes (RFC 2328 §16.4/§16.5): for
// each AS-external LSA in the AS-scoped LSDB, resolve the advertising
// ASBR's (or the LSA's forwarding address's) reachability via fa_tbl /
// the routing table, then install a Type-1 or Type-2 external route.
// Skipped entirely for stub areas, which never import external routes.
func (o *Ospf) runExternal() {
	backbone := o.anyNonStubArea()
	if backbone == nil {
		return
	}
	t, ok := backbone.lsdb.tables[lsdbKey{sc: scopeAS, scopeID: 0, lsType: LSTypeASExternal}]
	if !ok {
		return
	}
	it := t.Iterate()
	for {
		_, h, ok := it.Next()
		if !ok {
			break
		}
		e, ok := backbone.lsdb.arena.get(h)
		if !ok || e.selfOrig {
			continue
		}
		ext, ok := e.native.(*ASExternalLSA)
		if !ok {
			continue
		}
		o.attachExternalRoute(e, ext)
	}
}

func (o *Ospf) attachExternalRoute(e *lsaEntry, ext *ASExternalLSA) {
	reachVia := e.header.AdvRouter
	if ext.ForwardingAddr != 0 {
		reachVia = ext.ForwardingAddr
	}

	asbrRoute, ok := o.routes.Lookup(reachVia, 0xffffffff)
	if !ok {
		if fa, ok := o.fa_tbl[reachVia]; ok {
			asbrRoute = &RouteEntry{Cost: fa.Cost, MPath: fa.MPath}
		} else {
			return
		}
	}
	if asbrRoute.MPath == nil {
		return // unreachable ASBR/forwarding address: no next hop to install
	}

	network := e.header.LinkState & ext.Mask
	var cost, type2Cost uint32
	var typ RouteType
	if ext.MetricType == ExternalType2 {
		typ = RouteExternalType2
		cost = ext.Metric         // type-2 cost never adds the intra-AS cost; compared first
		type2Cost = asbrRoute.Cost // intra-AS cost to the ASBR, tiebreaks equal type-2 routes per RFC 2328 §16.4
	} else {
		typ = RouteExternalType1
		cost = asbrRoute.Cost + ext.Metric
	}

	o.installRoute(o.anyNonStubArea(), network, ext.Mask, typ, cost, type2Cost, asbrRoute.MPath, LSTypeASExternal, e.header.LinkState, e.header.AdvRouter)
}
