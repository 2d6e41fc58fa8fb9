package ospf

import "strconv"

// String implements fmt.Stringer for the enum types that cross the
// SysCalls.Log boundary, so log lines read "neighbor entered ExStart"
// rather than "neighbor entered 4". Hand-written rather than
// stringer-generated (mdlayher-ospf3/string.go is `go generate`d) since
// these enums are OSPFv2's, not OSPFv3's, and are small enough not to
// need the generated lookup-table form.

func (t LSType) String() string {
	switch t {
	case LSTypeRouter:
		return "Router"
	case LSTypeNetwork:
		return "Network"
	case LSTypeSummaryNet:
		return "SummaryNet"
	case LSTypeSummaryASBR:
		return "SummaryASBR"
	case LSTypeASExternal:
		return "ASExternal"
	case LSTypeGroup:
		return "Group"
	case LSTypeNSSA:
		return "NSSA"
	case LSTypeOpaqueLink:
		return "OpaqueLink"
	case LSTypeOpaqueArea:
		return "OpaqueArea"
	case LSTypeOpaqueAS:
		return "OpaqueAS"
	default:
		return "LSType(" + strconv.Itoa(int(t)) + ")"
	}
}

func (s NbrState) String() string {
	switch s {
	case NbrDown:
		return "Down"
	case NbrAttempt:
		return "Attempt"
	case NbrInit:
		return "Init"
	case NbrTwoWay:
		return "TwoWay"
	case NbrExStart:
		return "ExStart"
	case NbrExchange:
		return "Exchange"
	case NbrLoading:
		return "Loading"
	case NbrFull:
		return "Full"
	default:
		return "NbrState(" + strconv.Itoa(int(s)) + ")"
	}
}

func (s IfState) String() string {
	switch s {
	case IfDown:
		return "Down"
	case IfLoopbackState:
		return "Loopback"
	case IfWaiting:
		return "Waiting"
	case IfPointToPointState:
		return "PointToPoint"
	case IfDROther:
		return "DROther"
	case IfBackup:
		return "Backup"
	case IfDR:
		return "DR"
	default:
		return "IfState(" + strconv.Itoa(int(s)) + ")"
	}
}

func (t InterfaceType) String() string {
	switch t {
	case IfBroadcast:
		return "Broadcast"
	case IfNBMA:
		return "NBMA"
	case IfPointToPoint:
		return "PointToPoint"
	case IfPointToMultipoint:
		return "PointToMultipoint"
	case IfVirtualLink:
		return "VirtualLink"
	case IfLoopback:
		return "Loopback"
	default:
		return "InterfaceType(" + strconv.Itoa(int(t)) + ")"
	}
}

func (a AuthType) String() string {
	switch a {
	case AuthNone:
		return "None"
	case AuthSimple:
		return "Simple"
	case AuthMD5:
		return "MD5"
	default:
		return "AuthType(" + strconv.Itoa(int(a)) + ")"
	}
}

func (pt packetType) String() string {
	switch pt {
	case ptHello:
		return "Hello"
	case ptDD:
		return "DatabaseDescription"
	case ptLSReq:
		return "LinkStateRequest"
	case ptLSUp:
		return "LinkStateUpdate"
	case ptLSAck:
		return "LinkStateAcknowledgement"
	default:
		return "packetType(" + strconv.Itoa(int(pt)) + ")"
	}
}
