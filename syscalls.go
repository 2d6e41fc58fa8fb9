package ospf

// SysCalls is the host collaborator boundary (spec.md §6): every
// interaction with the outside world — the wire, the kernel routing
// table, and the log sink — is routed through this interface so the
// protocol core stays a deterministic, host-independent state machine.
// Grounded on mdlayher-ospf3's Conn (the one place that file touches a
// real socket) generalized from "one IPv6 raw-socket connection" to
// "every side effect an OSPF instance needs", and on moby-moby's
// pattern of defining narrow collaborator interfaces at package
// boundaries so the core can be driven by a fake in tests.
type SysCalls interface {
	// SendPacket transmits a fully marshaled OSPF packet (IP header not
	// included) to dst out the interface identified by ifIndex.
	SendPacket(ifIndex uint32, dst uint32, payload []byte) error

	// JoinAllSPFRouters and JoinAllDRouters manage the two OSPF
	// multicast group memberships (224.0.0.5 / 224.0.0.6) on ifIndex.
	JoinAllSPFRouters(ifIndex uint32) error
	LeaveAllSPFRouters(ifIndex uint32) error
	JoinAllDRouters(ifIndex uint32) error
	LeaveAllDRouters(ifIndex uint32) error

	// InstallRoute and RemoveRoute mutate the kernel (or simulated)
	// forwarding table to match RoutingTable's computed routes.
	InstallRoute(network, mask uint32, nexthops []NextHop) error
	RemoveRoute(network, mask uint32) error

	// Log emits one gated log message; msgno identifies the originating
	// message class for per-message rate gating (errors.go's logGates).
	Log(msgno int, msg string)

	// Halt is invoked exactly once, for the three HaltCode conditions
	// spec.md §7 defines; the process is expected to terminate soon
	// after this returns.
	Halt(code int, reason string)
}
