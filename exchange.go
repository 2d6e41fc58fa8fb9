package ospf

// beginExStart starts (or restarts) Database Description negotiation
// with n: send an empty DD packet with the Init/More/Master bits all
// set, per RFC 2328 §10.6.
func (o *Ospf) beginExStart(n *Neighbor) {
	n.state = NbrExStart
	n.ddSeqNum++
	n.master = true // provisionally master until negotiation says otherwise
	dd := &DatabaseDescription{
		MTU: n.intf.MTU,
		Init: true, More: true, Master: true,
		SeqNum: n.ddSeqNum,
	}
	n.lastDDSent = dd
	o.sendOut(n.intf, n.addr, dd)
}

// beginDatabaseSummary builds n's database summary list (the header of
// every LSA this router's relevant LSDBs hold, except MaxAge ones being
// withdrawn while this neighbor is down) and sends the first substantive
// DD packet, per RFC 2328 §10.8.
func (o *Ospf) beginDatabaseSummary(n *Neighbor) {
	n.ddSummary = n.ddSummary[:0]
	a := n.intf.Area
	for k, t := range a.lsdb.tables {
		if k.sc == scopeLinkLocal && k.scopeID != n.intf.Index {
			continue
		}
		it := t.Iterate()
		for {
			_, h, ok := it.Next()
			if !ok {
				break
			}
			if e, ok := a.lsdb.arena.get(h); ok && a.lsdb.ageOf(e) >= MaxAge {
				continue
			}
			n.ddSummary = append(n.ddSummary, h)
		}
	}
	o.sendNextDD(n)
}

// maxHeadersPerDD bounds how many LSA headers go in one DD packet so the
// result stays under the interface MTU; sized conservatively since
// callers rarely know the exact IP-layer overhead in advance.
func (o *Ospf) maxHeadersPerDD(intf *Interface) int {
	budget := int(intf.MTU) - headerLen - 8
	if budget < lsaHeaderLen {
		return 1
	}
	return budget / lsaHeaderLen
}

func (o *Ospf) sendNextDD(n *Neighbor) {
	a := n.intf.Area
	batch := o.maxHeadersPerDD(n.intf)
	if batch > len(n.ddSummary) {
		batch = len(n.ddSummary)
	}
	dd := &DatabaseDescription{
		MTU: n.intf.MTU, Master: n.master, SeqNum: n.ddSeqNum,
		More: len(n.ddSummary) > batch,
	}
	for _, h := range n.ddSummary[:batch] {
		if e, ok := a.lsdb.arena.get(h); ok {
			dd.LSAHeaders = append(dd.LSAHeaders, e.header)
		}
	}
	n.ddSummary = n.ddSummary[batch:]
	n.lastDDSent = dd
	o.sendOut(n.intf, n.addr, dd)

	if !dd.More && n.master {
		n.dispatch(NbrEvExchangeDone)
	}
}

func (o *Ospf) handleDD(intf *Interface, src uint32, dd *DatabaseDescription) {
	n, ok := intf.neighbors[dd.hdr.RouterID]
	if !ok || n.state < NbrInit {
		return
	}

	switch n.state {
	case NbrInit:
		n.dispatch(NbrEvTwoWayReceived)
		if n.state != NbrExStart {
			return
		}
		fallthrough
	case NbrExStart:
		if dd.Init && dd.More && dd.Master && len(dd.LSAHeaders) == 0 {
			if dd.hdr.RouterID < o.RouterID {
				return // this router has the higher Router ID and stays master
			}
			n.master = false
			n.ddSeqNum = dd.SeqNum
			n.dispatch(NbrEvNegotiationDone)
			o.queueLSRequests(n, dd.LSAHeaders)
			return
		}
		if !dd.Init && !dd.Master && dd.SeqNum == n.ddSeqNum && dd.hdr.RouterID < o.RouterID {
			n.master = true
			n.dispatch(NbrEvNegotiationDone)
			o.queueLSRequests(n, dd.LSAHeaders)
			return
		}

	case NbrExchange:
		if dd.Master == n.master {
			n.dispatch(NbrEvSeqNumMismatch)
			return
		}
		if n.isSlave() {
			if dd.SeqNum != n.ddSeqNum {
				n.dispatch(NbrEvSeqNumMismatch)
				return
			}
			n.ddSeqNum++
			o.queueLSRequests(n, dd.LSAHeaders)
			if len(n.ddSummary) > 0 || dd.More {
				o.sendNextDD(n)
			} else {
				n.dispatch(NbrEvExchangeDone)
			}
		} else {
			if dd.SeqNum != n.ddSeqNum-1 {
				n.dispatch(NbrEvSeqNumMismatch)
				return
			}
			o.queueLSRequests(n, dd.LSAHeaders)
			if len(n.ddSummary) > 0 {
				n.ddSeqNum++
				o.sendNextDD(n)
			} else if !dd.More {
				n.dispatch(NbrEvExchangeDone)
			}
		}

	case NbrLoading, NbrFull:
		if dd.SeqNum == n.ddSeqNum-1 && dd.Master != n.master {
			o.sendOut(n.intf, n.addr, n.lastDDSent)
			return
		}
		n.dispatch(NbrEvSeqNumMismatch)
	}
}

// queueLSRequests appends every header from a DD packet that the local
// LSDB lacks, or holds an older instance of, to n's link-state request
// list (RFC 2328 §10.8's "Database summary comparison").
func (o *Ospf) queueLSRequests(n *Neighbor, headers []LSAHeader) {
	a := n.intf.Area
	for _, hdr := range headers {
		lookupArea, lookupIf := a.ID, n.intf.Index
		if hdr.LSType.scope() != scopeArea {
			lookupIf = n.intf.Index
		}
		local, found := a.lsdb.Lookup(hdr.LSType, lookupArea, lookupIf, hdr.LinkState, hdr.AdvRouter)
		if !found {
			n.lsRequest = append(n.lsRequest, hdr)
			continue
		}
		if newerInstance(hdr, 0, local.header, a.lsdb.ageOf(local)) {
			n.lsRequest = append(n.lsRequest, hdr)
		}
	}
}

// sendLSRequest emits a Link State Request for every entry still
// pending in n.lsRequest, entering the Loading phase.
func (o *Ospf) sendLSRequest(n *Neighbor) {
	if len(n.lsRequest) == 0 {
		n.dispatch(NbrEvLoadingDone)
		return
	}
	req := &LinkStateRequest{}
	for _, hdr := range n.lsRequest {
		req.Entries = append(req.Entries, LSRequestEntry{LSType: hdr.LSType, LinkState: hdr.LinkState, AdvRouter: hdr.AdvRouter})
	}
	o.sendOut(n.intf, n.addr, req)
}

func (o *Ospf) handleLSRequest(intf *Interface, src uint32, req *LinkStateRequest) {
	n, ok := intf.neighbors[req.hdr.RouterID]
	if !ok || n.state < NbrExchange {
		return
	}
	a := n.intf.Area
	var entries []*lsaEntry
	for _, ent := range req.Entries {
		e, found := a.lsdb.Lookup(ent.LSType, a.ID, intf.Index, ent.LinkState, ent.AdvRouter)
		if !found {
			n.dispatch(NbrEvBadLSReq)
			return
		}
		entries = append(entries, e)
	}
	if len(entries) > 0 {
		o.sendLSUpdate(intf, n.addr, entries)
	}
}

func (o *Ospf) handleLSUpdate(area *Area, intf *Interface, src uint32, up *LinkStateUpdate) {
	n, ok := intf.neighbors[up.hdr.RouterID]
	if !ok || n.state < NbrExchange {
		return
	}

	var toAck []LSAHeader
	for _, w := range up.LSAs {
		if !VerifyChecksum(w.Header, w.Body) {
			continue
		}
		if w.Header.LSType == LSTypeASExternal && area.Stub {
			continue // errASExternalInStub: silently discarded per RFC 2328 §12.4.5
		}

		ifIndex := uint32(0)
		if w.Header.LSType.scope() == scopeLinkLocal {
			ifIndex = intf.Index
		}
		result, e := area.lsdb.Install(w.Header.LSType, area.ID, ifIndex, w.Header, w.Body, w.Header.PlainAge(), false)
		switch result {
		case InstallNewer:
			o.removeFromPendingRequest(n, w.Header)
			o.floodReceivedUpdate(area, intf, n, e)
			toAck = append(toAck, w.Header)
			if w.Header.LSType == LSTypeOpaqueArea {
				if grace, ok := e.native.(*GraceLSA); ok {
					o.onGraceLSAReceived(intf, grace, w.Header.AdvRouter)
				}
			}
		case InstallEqual:
			if _, onRxmt := n.lsRetransmit[entryKey(w.Header)]; onRxmt {
				delete(n.lsRetransmit, entryKey(w.Header))
			} else {
				toAck = append(toAck, w.Header)
			}
		case InstallOlder:
			if e.selfOrig {
				o.reoriginate(e) // bump sequence and reflood our own newer copy
			}
		case InstallRejected:
		}
	}

	o.removeSatisfiedLSReq(n)
	if len(toAck) > 0 {
		ack := &LinkStateAcknowledgement{LSAHeaders: toAck}
		o.sendOut(intf, allSPFRouters, ack)
	}
}

// floodReceivedUpdate runs the full-scope flood of e and triggers a
// routing recalculation through spf.go's scheduleSPF.
func (o *Ospf) floodReceivedUpdate(area *Area, recvIntf *Interface, from *Neighbor, e *lsaEntry) {
	o.floodToScope(e)
	o.scheduleSPF(area)
}

func (o *Ospf) removeFromPendingRequest(n *Neighbor, hdr LSAHeader) {
	kept := n.lsRequest[:0]
	for _, h := range n.lsRequest {
		if h.LSType == hdr.LSType && h.LinkState == hdr.LinkState && h.AdvRouter == hdr.AdvRouter {
			continue
		}
		kept = append(kept, h)
	}
	n.lsRequest = kept
}

func (o *Ospf) removeSatisfiedLSReq(n *Neighbor) {
	if n.state == NbrLoading && len(n.lsRequest) == 0 {
		n.dispatch(NbrEvLoadingDone)
	}
}

func (o *Ospf) handleLSAck(intf *Interface, src uint32, ack *LinkStateAcknowledgement) {
	n, ok := intf.neighbors[ack.hdr.RouterID]
	if !ok {
		return
	}
	for _, hdr := range ack.LSAHeaders {
		delete(n.lsRetransmit, entryKey(hdr))
	}
}

// onAdjacencyFull is invoked when a neighbor reaches Full: it
// (re)originates this router's router-LSA (the adjacency count changed)
// and, if this interface is broadcast/NBMA, the DR's network-LSA.
func (o *Ospf) onAdjacencyFull(n *Neighbor) {
	o.dequeueAdjacency(n)
	o.originateRouterLSA(n.intf.Area)
	if n.intf.isDR() && (n.intf.Type == IfBroadcast || n.intf.Type == IfNBMA) {
		o.originateNetworkLSA(n.intf)
	}
	o.scheduleSPF(n.intf.Area)
}
