// Package netsys is the reference SysCalls implementation: a single raw
// IPv4 socket (IP protocol 89) shared across every configured interface,
// plus kernel route installation via rtnetlink. Grounded on
// mdlayher-ospf3's conn.go, generalized from one dedicated IPv6 PacketConn
// per interface to one shared IPv4 PacketConn the daemon demultiplexes by
// the control message's interface index, since spec.md's Ospf instance is
// one process driving many interfaces rather than ospf3's one-Conn-per-run
// model.
package netsys

import (
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
)

const (
	tos     = 0xc0 // DSCP CS6, mirrors ospf3's tclass for the same reason: control traffic
	ttl     = 1
	ospfIP4 = 89 // IANA protocol number for OSPF
)

// AllSPFRouters and AllDRouters are the IPv4 multicast groups every OSPF
// router (resp. the DR/BDR) joins, per RFC 2328 §8.1.
var (
	AllSPFRouters = net.IPv4(224, 0, 0, 5)
	AllDRouters   = net.IPv4(224, 0, 0, 6)
)

// Conn is a shared raw IPv4 OSPF socket. Unlike ospf3's Conn, which binds
// once per interface, one Conn here serves every interface the daemon
// owns: sends carry an explicit outgoing interface via the IPv4 control
// message, and reads report the interface they arrived on the same way.
type Conn struct {
	pc *ipv4.PacketConn
}

// Listen opens the shared raw OSPF socket. Requires CAP_NET_RAW.
func Listen() (*Conn, error) {
	c, err := net.ListenPacket("ip4:89", "0.0.0.0")
	if err != nil {
		return nil, fmt.Errorf("listen ip4:89: %w", err)
	}
	pc := ipv4.NewPacketConn(c)

	if err := pc.SetControlMessage(ipv4.FlagInterface|ipv4.FlagTTL, true); err != nil {
		return nil, fmt.Errorf("set control message: %w", err)
	}
	if err := pc.SetTTL(ttl); err != nil {
		return nil, fmt.Errorf("set ttl: %w", err)
	}
	if err := pc.SetTOS(tos); err != nil {
		return nil, fmt.Errorf("set tos: %w", err)
	}
	if err := pc.SetMulticastTTL(ttl); err != nil {
		return nil, fmt.Errorf("set multicast ttl: %w", err)
	}
	if err := pc.SetMulticastLoopback(false); err != nil {
		return nil, fmt.Errorf("disable multicast loopback: %w", err)
	}

	return &Conn{pc: pc}, nil
}

// Close closes the underlying socket.
func (c *Conn) Close() error { return c.pc.Close() }

// JoinGroup joins the named interface to an OSPF multicast group.
func (c *Conn) JoinGroup(ifIndex int, group net.IP) error {
	ifi, err := net.InterfaceByIndex(ifIndex)
	if err != nil {
		return fmt.Errorf("interface %d: %w", ifIndex, err)
	}
	return c.pc.JoinGroup(ifi, &net.IPAddr{IP: group})
}

// LeaveGroup reverses JoinGroup.
func (c *Conn) LeaveGroup(ifIndex int, group net.IP) error {
	ifi, err := net.InterfaceByIndex(ifIndex)
	if err != nil {
		return fmt.Errorf("interface %d: %w", ifIndex, err)
	}
	return c.pc.LeaveGroup(ifi, &net.IPAddr{IP: group})
}

// WriteTo sends payload (a fully marshaled OSPF packet, no IP header) to
// dst out the interface ifIndex.
func (c *Conn) WriteTo(ifIndex int, dst net.IP, payload []byte) error {
	cm := &ipv4.ControlMessage{IfIndex: ifIndex}
	_, err := c.pc.WriteTo(payload, cm, &net.IPAddr{IP: dst})
	return err
}

// ReadFrom reads a single OSPF packet, returning its payload, the
// interface it arrived on, and its source address.
func (c *Conn) ReadFrom(buf []byte) (n int, ifIndex int, src net.IP, err error) {
	n, cm, addr, err := c.pc.ReadFrom(buf)
	if err != nil {
		return 0, 0, nil, err
	}
	if cm != nil {
		ifIndex = cm.IfIndex
	}
	if ipAddr, ok := addr.(*net.IPAddr); ok {
		src = ipAddr.IP
	}
	return n, ifIndex, src, nil
}
