package ospf

import "time"

// Ospf is the instance context: the single struct that owns every
// singleton the original implementation scattered across global
// variables (spec.md §9: "ospf, sys, sys_etime, timerq, inrttbl, fa_tbl,
// default_route, cfglist, MPath::nhdb all become fields of one struct").
// A process may run more than one Ospf instance (e.g. under test)
// without any shared global state.
type Ospf struct {
	RouterID uint32

	sys SysCalls

	timerq TimerQueue

	areas map[uint32]*Area

	routes        RoutingTable
	fa_tbl        map[uint32]faEntry // forwarding-address resolution table
	default_route *RouteEntry

	cfg Config

	logGates logGates

	halted bool

	// restartRemaining is the number of seconds left in graceful-restart
	// helper mode's grace period, 0 when not restarting (spec.md §4.8).
	restartRemaining int

	lastTick Time

	// adjQueue/adjActive implement the bounded adjacency-forming
	// admission queue described in neighbor_fsm.go.
	adjQueue  []*Neighbor
	adjActive int

	originLimiter originLimiter
}

// NewOspf constructs an Ospf instance bound to sys, with default log
// gates and an empty area set. Callers add areas via Area and then
// drive the instance with Tick/ReceivePacket/PhyUp/PhyDown.
func NewOspf(routerID uint32, sys SysCalls) *Ospf {
	o := &Ospf{
		RouterID: routerID,
		sys:      sys,
		areas:    make(map[uint32]*Area),
		fa_tbl:   make(map[uint32]faEntry),
		logGates: *newLogGates(LogInfo),
	}
	o.routes.tree = Tree[*RouteEntry]{}
	return o
}

// Area returns the named area, creating it (as a non-stub, non-transit
// area) if it does not already exist.
func (o *Ospf) Area(id uint32) *Area {
	if a, ok := o.areas[id]; ok {
		return a
	}
	a := newArea(o, id)
	o.areas[id] = a
	return a
}

// Tick advances the instance's wall-clock state by one second: ages the
// LSDB of every area, runs the timer queue, and fires any neighbor
// inactivity or interface retransmission timers that have expired.
// Grounded on mdlayher-ospf3's conn.go event-loop shape, generalized
// from a single read-loop into the full per-second maintenance spec.md
// §4 describes scattered across "Aging", "Flooding", and "Neighbor FSM".
func (o *Ospf) Tick(now Time) {
	o.lastTick = now
	o.timerq.Tick(now)
	for _, a := range o.areas {
		a.lsdb.AgeTick()
	}
	if o.restartRemaining > 0 {
		o.restartRemaining--
		if o.restartRemaining == 0 {
			o.exitHelperMode()
		}
	}
}

// Timeout returns the number of milliseconds until the next scheduled
// timer fires, or -1 if nothing is scheduled — the value an event loop
// feeds straight into its poll/select deadline (spec.md §9 "timeout()
// -> i32 ms").
func (o *Ospf) Timeout(now Time) int32 { return o.timerq.Timeout(now) }

// Shutdown begins a graceful shutdown: every interface's router-LSA
// links are withdrawn and MaxAge-flooded, giving neighbors seconds to
// route around this router before it actually stops forwarding.
func (o *Ospf) Shutdown(seconds int) {
	o.halted = true
	for _, a := range o.areas {
		a.withdrawSelfOriginated()
	}
	_ = seconds // grace period is driven by the caller's own event loop
}

// PhyUp notifies the instance that the host-side link for ifIndex has
// come up: it drives the interface's FSM with IfEvInterfaceUp, starting
// its Hello timer and joining it to AllSPFRouters (spec.md §4.1/§9.1).
// A no-op if ifIndex names no configured interface or the interface is
// already up.
func (o *Ospf) PhyUp(ifIndex uint32) {
	_, intf := o.interfaceByIndex(ifIndex)
	if intf == nil {
		return
	}
	intf.dispatch(IfEvInterfaceUp)
}

// PhyDown notifies the instance that the host-side link for ifIndex has
// gone down: it drives the interface's FSM with IfEvInterfaceDown,
// tearing down every neighbor on it and leaving its multicast groups.
func (o *Ospf) PhyDown(ifIndex uint32) {
	_, intf := o.interfaceByIndex(ifIndex)
	if intf == nil {
		return
	}
	intf.dispatch(IfEvInterfaceDown)
}

// anyNeighborExchanging reports whether any neighbor, in any area, is
// currently in ExStart/Exchange/Loading — the condition spec.md §3
// "Lifecycles" says blocks freeing a MaxAge LSA, since such a neighbor
// might still need to see it during Database Exchange.
func (o *Ospf) anyNeighborExchanging() bool {
	for _, a := range o.areas {
		for _, intf := range a.interfaces {
			for _, n := range intf.neighbors {
				switch n.state {
				case NbrExStart, NbrExchange, NbrLoading:
					return true
				}
			}
		}
	}
	return false
}

// refloodMaxAge refloods e (now at MaxAge) out every interface in its
// scope, per spec.md §4.2/§4.5.
func (o *Ospf) refloodMaxAge(e *lsaEntry) {
	o.floodToScope(e)
}

// reoriginateRefresh re-originates e with a fresh sequence number and
// age 0, per spec.md §4.2's "self-originated LSAs ... re-originated at
// LSRefreshTime".
func (o *Ospf) reoriginateRefresh(e *lsaEntry) {
	o.reoriginate(e)
}

func nowFromWall(t time.Time) Time {
	return Time{Sec: uint32(t.Unix()), Msec: uint16(t.Nanosecond() / 1_000_000)}
}
