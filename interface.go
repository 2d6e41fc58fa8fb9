package ospf

// InterfaceType classifies the network this interface runs over, which
// in turn governs whether DR election, Hello-only adjacency, or
// explicit neighbor configuration applies (spec.md §3 "Interface").
type InterfaceType int

const (
	IfBroadcast InterfaceType = iota
	IfNBMA
	IfPointToPoint
	IfPointToMultipoint
	IfVirtualLink
	IfLoopback
)

// IfState is the interface finite-state-machine state (RFC 2328 §9.1).
type IfState int

const (
	IfDown IfState = iota
	IfLoopbackState
	IfWaiting
	IfPointToPointState
	IfDROther
	IfBackup
	IfDR
)

// IfEvent drives the interface FSM (RFC 2328 §9.2).
type IfEvent int

const (
	IfEvInterfaceUp IfEvent = iota
	IfEvWaitTimer
	IfEvBackupSeen
	IfEvNeighborChange
	IfEvLoopInd
	IfEvUnloopInd
	IfEvInterfaceDown
)

// Interface is one OSPF-enabled link, per spec.md §3 "Interface":
// configured parameters, FSM state, and the neighbor table.
type Interface struct {
	owner *Ospf
	Area  *Area

	Index   uint32
	Addr    uint32
	Mask    uint32
	Type    InterfaceType

	Cost            uint32
	HelloInterval   uint16
	RouterDeadInterval uint32
	RxmtInterval    uint32
	TransmitDelay   uint16
	Priority        uint8
	MTU             uint16

	AuthType AuthType
	AuthKeys []AuthKey
	md5Seq   md5SeqTracker

	state IfState

	DR, BDR uint32 // Router IDs of the elected DR/BDR, 0 if none

	joinedAllDRouters bool // tracks AllDRouters multicast membership across elections

	neighbors map[uint32]*Neighbor // keyed by neighbor Router ID

	helloTimer   *Timer
	waitTimer    *Timer

	// virtual-link interfaces route their Hello/DD/etc. traffic through a
	// transit area to a remote ABR instead of broadcasting on a LAN;
	// vlinkTransitArea and vlinkRemoteID are meaningless otherwise.
	vlinkTransitArea uint32
	vlinkRemoteID    uint32
}

func newInterface(o *Ospf, idx uint32, typ InterfaceType) *Interface {
	return &Interface{
		owner:     o,
		Index:     idx,
		Type:      typ,
		neighbors: make(map[uint32]*Neighbor),
		Priority:  1,
		HelloInterval: 10,
		RouterDeadInterval: 40,
		RxmtInterval: 5,
	}
}

// Neighbor returns the neighbor keyed by routerID, creating it if it
// does not yet exist (first Hello received from a previously-unseen
// router, spec.md §4.4 "Neighbor FSM").
func (intf *Interface) Neighbor(routerID uint32) *Neighbor {
	if n, ok := intf.neighbors[routerID]; ok {
		return n
	}
	n := newNeighbor(intf, routerID)
	intf.neighbors[routerID] = n
	return n
}

// isDR reports whether this router is the interface's elected DR.
func (intf *Interface) isDR() bool { return intf.DR == intf.owner.RouterID }

// isBDR reports whether this router is the interface's elected BDR.
func (intf *Interface) isBDR() bool { return intf.BDR == intf.owner.RouterID }

// DRorBDR reports whether this router must form full adjacencies with
// every DROther neighbor (RFC 2328 §10: true for the DR and BDR).
func (intf *Interface) DRorBDR() bool { return intf.isDR() || intf.isBDR() }

// dispatch drives the interface FSM per RFC 2328 Table 9 / §9.2,
// generalized from mdlayher-ospf3's per-message dispatch pattern into a
// per-event state transition table.
func (intf *Interface) dispatch(ev IfEvent) {
	switch ev {
	case IfEvInterfaceUp:
		if intf.state != IfDown {
			return
		}
		if intf.Type != IfLoopback {
			if err := intf.owner.sys.JoinAllSPFRouters(intf.Index); err != nil {
				intf.owner.log(20, LogErr, "join AllSPFRouters on interface %d: %v", intf.Index, err)
			}
		}
		switch intf.Type {
		case IfPointToPoint, IfPointToMultipoint, IfVirtualLink:
			intf.state = IfPointToPointState
		case IfLoopback:
			intf.state = IfLoopbackState
		default:
			if intf.Priority == 0 {
				intf.state = IfDROther
			} else {
				intf.state = IfWaiting
				intf.waitTimer = intf.owner.timerq.NewSingleShot(intf.owner.lastTick, intf.RouterDeadInterval*1000, func() {
					intf.dispatch(IfEvWaitTimer)
				})
			}
		}
		intf.helloTimer = intf.owner.timerq.NewInterval(intf.owner.lastTick, uint32(intf.HelloInterval)*1000, func() {
			intf.owner.sendHello(intf)
		})

	case IfEvWaitTimer, IfEvBackupSeen:
		if intf.state == IfWaiting {
			intf.electDR()
		}

	case IfEvNeighborChange:
		switch intf.state {
		case IfDROther, IfBackup, IfDR:
			intf.electDR()
		}

	case IfEvLoopInd:
		intf.resetInterface()
		intf.state = IfLoopbackState

	case IfEvUnloopInd:
		if intf.state == IfLoopbackState {
			intf.state = IfDown
		}

	case IfEvInterfaceDown:
		intf.resetInterface()
		intf.state = IfDown
	}
}

func (intf *Interface) resetInterface() {
	if intf.helloTimer != nil {
		intf.helloTimer.Stop()
	}
	if intf.waitTimer != nil {
		intf.waitTimer.Stop()
	}
	for _, n := range intf.neighbors {
		n.dispatch(NbrEvKillNbr)
	}
	intf.DR, intf.BDR = 0, 0
	if intf.joinedAllDRouters {
		if err := intf.owner.sys.LeaveAllDRouters(intf.Index); err != nil {
			intf.owner.log(21, LogErr, "leave AllDRouters on interface %d: %v", intf.Index, err)
		}
		intf.joinedAllDRouters = false
	}
	if intf.Type != IfLoopback {
		if err := intf.owner.sys.LeaveAllSPFRouters(intf.Index); err != nil {
			intf.owner.log(22, LogErr, "leave AllSPFRouters on interface %d: %v", intf.Index, err)
		}
	}
}

// drCandidate is one eligible DR/BDR election participant: RFC 2328
// §9.4's algorithm runs over this router plus every neighbor currently
// at least Two-Way, each contributing its declared DR/BDR and priority.
type drCandidate struct {
	routerID uint32
	ifAddr   uint32
	priority uint8
	declaredDR, declaredBDR uint32
}

// electDR runs the RFC 2328 §9.4 two-pass DR/BDR election. When the DR
// or BDR changed, it sets the interface state (DR, Backup or DROther),
// joins or leaves AllDRouters to match this router's own DR/BDR status,
// and dispatches AdjOK? to every neighbor.
func (intf *Interface) electDR() {
	var candidates []drCandidate
	candidates = append(candidates, drCandidate{
		routerID: intf.owner.RouterID, ifAddr: intf.Addr, priority: intf.Priority,
		declaredDR: intf.DR, declaredBDR: intf.BDR,
	})
	for _, n := range intf.neighbors {
		if n.state < NbrTwoWay || n.priority == 0 {
			continue
		}
		candidates = append(candidates, drCandidate{
			routerID: n.routerID, ifAddr: n.addr, priority: n.priority,
			declaredDR: n.declaredDR, declaredBDR: n.declaredBDR,
		})
	}

	oldDR, oldBDR := intf.DR, intf.BDR

	bdr := electBDR(candidates)
	dr := electDR(candidates, bdr)
	if dr == 0 {
		dr = bdr
		bdr = electBDR(withDR(candidates, dr))
	}
	intf.DR, intf.BDR = dr, bdr

	wasDRorBDR := oldDR == intf.owner.RouterID || oldBDR == intf.owner.RouterID
	isDRorBDR := dr == intf.owner.RouterID || bdr == intf.owner.RouterID
	if wasDRorBDR != isDRorBDR || oldDR != dr || oldBDR != bdr {
		switch {
		case dr == intf.owner.RouterID:
			intf.state = IfDR
		case bdr == intf.owner.RouterID:
			intf.state = IfBackup
		default:
			intf.state = IfDROther
		}
		if isDRorBDR && !intf.joinedAllDRouters {
			if err := intf.owner.sys.JoinAllDRouters(intf.Index); err != nil {
				intf.owner.log(23, LogErr, "join AllDRouters on interface %d: %v", intf.Index, err)
			}
			intf.joinedAllDRouters = true
		} else if !isDRorBDR && intf.joinedAllDRouters {
			if err := intf.owner.sys.LeaveAllDRouters(intf.Index); err != nil {
				intf.owner.log(24, LogErr, "leave AllDRouters on interface %d: %v", intf.Index, err)
			}
			intf.joinedAllDRouters = false
		}
		for _, n := range intf.neighbors {
			n.dispatch(NbrEvAdjOK)
		}
	}
}

func withDR(cands []drCandidate, dr uint32) []drCandidate {
	out := append([]drCandidate(nil), cands...)
	for i := range out {
		if out[i].routerID == dr {
			out[i].declaredDR = dr
		}
	}
	return out
}

func electBDR(cands []drCandidate) uint32 {
	var best *drCandidate
	for i := range cands {
		c := &cands[i]
		if c.declaredDR == c.routerID {
			continue // declares itself DR: not a BDR candidate this pass
		}
		if c.declaredBDR != c.routerID {
			continue
		}
		if best == nil || c.priority > best.priority ||
			(c.priority == best.priority && c.routerID > best.routerID) {
			best = c
		}
	}
	if best != nil {
		return best.routerID
	}
	for i := range cands {
		c := &cands[i]
		if c.declaredDR == c.routerID || c.priority == 0 {
			continue
		}
		if best == nil || c.priority > best.priority ||
			(c.priority == best.priority && c.routerID > best.routerID) {
			best = c
		}
	}
	if best == nil {
		return 0
	}
	return best.routerID
}

func electDR(cands []drCandidate, bdr uint32) uint32 {
	var best *drCandidate
	for i := range cands {
		c := &cands[i]
		if c.declaredDR != c.routerID || c.priority == 0 {
			continue
		}
		if best == nil || c.priority > best.priority ||
			(c.priority == best.priority && c.routerID > best.routerID) {
			best = c
		}
	}
	if best != nil {
		return best.routerID
	}
	return 0
}
