package ospf

// NbrState is the neighbor finite-state-machine state (RFC 2328 §10.1).
// Ordered so that "at least Two-Way" comparisons (used throughout DR
// election and adjacency forming) are a plain integer comparison.
type NbrState int

const (
	NbrDown NbrState = iota
	NbrAttempt
	NbrInit
	NbrTwoWay
	NbrExStart
	NbrExchange
	NbrLoading
	NbrFull
)

// NbrEvent drives the neighbor FSM (RFC 2328 §10.2).
type NbrEvent int

const (
	NbrEvHelloReceived NbrEvent = iota
	NbrEvStart
	NbrEvTwoWayReceived
	NbrEvNegotiationDone
	NbrEvExchangeDone
	NbrEvBadLSReq
	NbrEvLoadingDone
	NbrEvAdjOK
	NbrEvSeqNumMismatch
	NbrEvOneWay
	NbrEvKillNbr
	NbrEvInactivityTimer
	NbrEvLLDown
)

// Neighbor is one adjacency's FSM state plus the three exchange lists
// RFC 2328 §10 defines: the database summary list (DD packets still to
// send, stored as LSAHandle so a freed LSA is detected rather than
// dereferenced — see arena.go), the link-state request list (what
// Loading is fetching, stored as headers since the local LSDB may not
// hold an entry for them yet), and the link-state retransmission list
// (unacknowledged floods, keyed by LSA identity).
type Neighbor struct {
	intf *Interface

	routerID uint32
	addr     uint32
	priority uint8

	declaredDR, declaredBDR uint32

	state NbrState

	master   bool // true if this router is master of the DD exchange (isSlave is !master)
	ddSeqNum uint32
	options  uint8

	ddSummary    []LSAHandle
	lsRequest    []LSAHeader // pending Link State Request list (RFC 2328 §10.9)
	lsRetransmit map[Key]LSAHandle

	inactivityTimer *Timer
	rxmtTimer       *Timer
	lastDDSent      *DatabaseDescription

	// restartHelper is true while this router is acting as a
	// graceful-restart helper for the neighbor (spec.md §4.8).
	restartHelper     bool
	restartGraceEnd   Time
}

func newNeighbor(intf *Interface, routerID uint32) *Neighbor {
	return &Neighbor{
		intf:         intf,
		routerID:     routerID,
		state:        NbrDown,
		lsRetransmit: make(map[Key]LSAHandle),
	}
}

// isSlave reports whether the neighbor is master of the DD exchange
// (i.e. this router lost ExStart negotiation and is slave).
func (n *Neighbor) isSlave() bool { return !n.master }
