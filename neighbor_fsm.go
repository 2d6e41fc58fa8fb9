package ospf

const maxConcurrentExchanges = 8

// dispatch drives the neighbor FSM per RFC 2328 Table 10 / §10.3,
// generalized from mdlayher-ospf3's per-message dispatch switch into a
// per-event switch that also manages the global DD-exchange admission
// queue (SPEC_FULL.md's supplemented feature: only
// maxConcurrentExchanges neighbors may hold an exchange slot at once; a
// slot is held from ExStart until the adjacency reaches Full, so Loading
// neighbors count too; the rest queue in FIFO order so that a router with hundreds
// of neighbors coming up at once doesn't try to run them all
// concurrently, grounded on original_source/ospfd/src/nbr.C's
// "g_adj_head"/"g_adj_tail" adjacency-forming queue).
func (n *Neighbor) dispatch(ev NbrEvent) {
	o := n.intf.owner
	switch ev {
	case NbrEvHelloReceived:
		n.restartInactivityTimer()
		if n.state == NbrDown {
			n.state = NbrAttempt
		}

	case NbrEvStart:
		n.sendHelloTo()
		n.restartInactivityTimer()

	case NbrEvTwoWayReceived:
		if n.state < NbrTwoWay {
			n.state = NbrTwoWay
		}
		if n.eligibleForAdjacency() {
			o.enqueueAdjacency(n)
		}
		n.intf.dispatch(IfEvNeighborChange)

	case NbrEvAdjOK:
		if n.state == NbrTwoWay && n.eligibleForAdjacency() {
			o.enqueueAdjacency(n)
		} else if n.state > NbrTwoWay && !n.eligibleForAdjacency() {
			n.regressToTwoWay()
		}

	case NbrEvNegotiationDone:
		if n.state == NbrExStart {
			n.state = NbrExchange
			o.beginDatabaseSummary(n)
		}

	case NbrEvExchangeDone:
		if n.state == NbrExchange {
			if len(n.lsRequest) == 0 {
				n.state = NbrFull
				o.onAdjacencyFull(n)
			} else {
				n.state = NbrLoading
				o.sendLSRequest(n)
			}
		}

	case NbrEvLoadingDone:
		if n.state == NbrLoading {
			n.state = NbrFull
			o.onAdjacencyFull(n)
		}

	case NbrEvBadLSReq, NbrEvSeqNumMismatch:
		if n.state >= NbrExchange {
			o.dequeueAdjacency(n)
			n.resetToExStart()
		}

	case NbrEvOneWay:
		if n.state >= NbrTwoWay {
			n.regressToTwoWay()
		}

	case NbrEvKillNbr, NbrEvLLDown, NbrEvInactivityTimer:
		o.dequeueAdjacency(n)
		n.clearLists()
		n.state = NbrDown
		if n.inactivityTimer != nil {
			n.inactivityTimer.Stop()
		}
		if n.rxmtTimer != nil {
			n.rxmtTimer.Stop()
		}
		n.intf.dispatch(IfEvNeighborChange)
	}
}

func (n *Neighbor) eligibleForAdjacency() bool {
	return n.intf.Type == IfPointToPoint || n.intf.Type == IfPointToMultipoint ||
		n.intf.Type == IfVirtualLink || n.intf.DRorBDR() ||
		n.routerID == n.intf.DR || n.routerID == n.intf.BDR
}

func (n *Neighbor) regressToTwoWay() {
	n.intf.owner.dequeueAdjacency(n)
	n.clearLists()
	n.state = NbrTwoWay
}

func (n *Neighbor) resetToExStart() {
	n.clearLists()
	n.state = NbrExStart
	n.intf.owner.beginExStart(n)
}

func (n *Neighbor) clearLists() {
	n.ddSummary = nil
	n.lsRequest = nil
	n.lsRetransmit = make(map[Key]LSAHandle)
}

func (n *Neighbor) restartInactivityTimer() {
	o := n.intf.owner
	if n.inactivityTimer != nil {
		n.inactivityTimer.Stop()
	}
	n.inactivityTimer = o.timerq.NewSingleShot(o.lastTick, n.intf.RouterDeadInterval*1000, func() {
		n.dispatch(NbrEvInactivityTimer)
	})
}

func (n *Neighbor) sendHelloTo() {
	n.intf.owner.sendHello(n.intf)
}

// enqueueAdjacency admits n to ExStart immediately if below the
// concurrency cap, otherwise queues it on the instance's FIFO.
func (o *Ospf) enqueueAdjacency(n *Neighbor) {
	for _, q := range o.adjQueue {
		if q == n {
			return
		}
	}
	if o.adjActive < maxConcurrentExchanges {
		o.adjActive++
		o.beginExStart(n)
		return
	}
	o.adjQueue = append(o.adjQueue, n)
}

// dequeueAdjacency removes n from the FIFO (if queued) or frees its
// concurrency slot and admits the next queued neighbor (if it held one).
func (o *Ospf) dequeueAdjacency(n *Neighbor) {
	for i, q := range o.adjQueue {
		if q == n {
			o.adjQueue = append(o.adjQueue[:i], o.adjQueue[i+1:]...)
			return
		}
	}
	if n.state >= NbrExStart {
		o.adjActive--
		if o.adjActive < 0 {
			o.adjActive = 0
		}
		if len(o.adjQueue) > 0 {
			next := o.adjQueue[0]
			o.adjQueue = o.adjQueue[1:]
			o.adjActive++
			o.beginExStart(next)
		}
	}
}
