// Package ospf implements OSPFv2 (OSPF for IPv4) as described in RFC 2328:
// link-state database maintenance, the interface and neighbor state
// machines, reliable flooding, per-area Dijkstra SPF, and LSA
// origination, driven by a host-supplied SysCalls collaborator rather
// than by any packet socket or kernel routing table of its own.
package ospf
