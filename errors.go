package ospf

import (
	"errors"
	"fmt"
)

// Architectural constants (spec.md §6), all in seconds unless noted.
const (
	LSRefreshTime = 1800
	MinLSInterval = 5
	MaxAge        = 3600
	CheckAge      = 300
	MaxAgeDiff    = 900
	MinLSArrival  = 1

	DoNotAge uint16 = 0x8000 // high bit of LS age

	LSInfinity uint32 = 0xffffff
	InitLSSeq  int32  = -0x7fffffff // 0x80000001 reinterpreted signed
	MaxLSSeq   int32  = 0x7fffffff
	InvalidSeq int32  = -0x80000000 // 0x80000000 reinterpreted signed

	MaxPath = 4 // MAXPATH: maximum multipath next hops per route
)

// Sentinel errors, wrapped with fmt.Errorf("...: %w", ...) at call sites,
// the way mdlayher-ospf3/message.go wraps errParse/errMarshal.
var (
	errMalformed        = errors.New("ospf: malformed packet")
	errUnknownInterface = errors.New("ospf: no matching interface")
	errUnknownNeighbor  = errors.New("ospf: no matching neighbor")
	errBadAuth          = errors.New("ospf: authentication failed")
	errBadChecksum      = errors.New("ospf: checksum mismatch")
	errUnknownLSType    = errors.New("ospf: unrecognized LS type")
	errStaleAck         = errors.New("ospf: stale retransmission ack")
	errFSMUnhandled     = errors.New("ospf: event not valid for current state")
	errNoSourceAddr     = errors.New("ospf: no usable source address for send")
	errASExternalInStub = errors.New("ospf: AS-external LSA refused in stub area")
	errConfigConflict    = errors.New("ospf: configuration conflict")
)

// HaltCode identifies a fatal condition that must stop the instance, per
// spec.md §7.
type HaltCode int

const (
	HaltDBCorrupt HaltCode = iota + 1
	HaltRTCost
	HaltLSType
)

func (c HaltCode) String() string {
	switch c {
	case HaltDBCorrupt:
		return "HALT_DBCORRUPT"
	case HaltRTCost:
		return "HALT_RTCOST"
	case HaltLSType:
		return "HALT_LSTYPE"
	default:
		return "HALT_UNKNOWN"
	}
}

// HaltError describes one of the three fatal conditions the spec
// defines: LSDB checksum-audit failure, a Dijkstra cost inconsistency,
// and a configuration/LSA-type conflict. halt logs it and then passes its
// Code (as an int) and Reason to SysCalls.Halt. The process is expected
// to terminate after Halt returns.
type HaltError struct {
	Code   HaltCode
	Reason string
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("ospf: fatal: %s: %s", e.Code, e.Reason)
}

// logPriority mirrors spec.md §7's "per-event logging is rate-gated by a
// per-msgno enable/disable pair and a priority floor".
type logPriority int

const (
	LogEmerg logPriority = iota
	LogAlert
	LogCrit
	LogErr
	LogWarning
	LogNotice
	LogInfo
	LogDebug
)

// msgGate tracks, per log message number, whether it is enabled and the
// minimum priority that is still surfaced to SysCalls.Log.
type msgGate struct {
	enabled bool
	floor   logPriority
}

// logGates gates every message number the instance may emit; disabled by
// default entries fall back to LogInfo-and-above enabled.
type logGates struct {
	gates map[int]msgGate
	floor logPriority
}

func newLogGates(floor logPriority) *logGates {
	return &logGates{gates: make(map[int]msgGate), floor: floor}
}

func (g *logGates) set(msgno int, enabled bool, floor logPriority) {
	g.gates[msgno] = msgGate{enabled: enabled, floor: floor}
}

func (g *logGates) allowed(msgno int, pri logPriority) bool {
	if gate, ok := g.gates[msgno]; ok {
		return gate.enabled && pri <= gate.floor
	}
	return pri <= g.floor
}

// log runs a message through the priority gate and, if it passes, hands
// it to the host collaborator. The core never formats or buffers log
// output itself beyond this gate — SysCalls.Log is expected to return
// promptly or buffer (§5 concurrency model).
func (o *Ospf) log(msgno int, pri logPriority, format string, args ...interface{}) {
	if !o.logGates.allowed(msgno, pri) {
		return
	}
	o.sys.Log(msgno, fmt.Sprintf(format, args...))
}

// halt invokes the fatal-error path: log, then hand off to the host.
func (o *Ospf) halt(code HaltCode, reason string) {
	err := &HaltError{Code: code, Reason: reason}
	o.log(0, LogEmerg, "%s", err.Error())
	o.sys.Halt(int(code), reason)
}
