package netsys

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Route construction and installation via raw rtnetlink, grounded on
// the pack's bamgate tunnel-netlink example (RTM_NEWROUTE/RTM_DELROUTE
// built by hand rather than pulling in a netlink client library, since
// OSPF only ever needs these two message shapes).

const (
	nlmsgHdrLen = 16
	rtmsgLen    = 12
	rtaHdrLen   = 4
)

func rtaAlignLen(l int) int { return (l + 3) &^ 3 }

// InstallRoute installs (or replaces) a multipath IPv4 route for
// network/mask via nexthops' gateways/interfaces.
func InstallRoute(network, mask uint32, gateways []uint32, ifIndexes []int32) error {
	return sendRoute(unix.RTM_NEWROUTE,
		unix.NLM_F_REQUEST|unix.NLM_F_ACK|unix.NLM_F_CREATE|unix.NLM_F_REPLACE,
		network, mask, gateways, ifIndexes)
}

// RemoveRoute deletes the route for network/mask.
func RemoveRoute(network, mask uint32) error {
	return sendRoute(unix.RTM_DELROUTE, unix.NLM_F_REQUEST|unix.NLM_F_ACK,
		network, mask, nil, nil)
}

func sendRoute(msgType uint16, flags uint16, network, mask uint32, gateways []uint32, ifIndexes []int32) error {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_ROUTE)
	if err != nil {
		return fmt.Errorf("creating netlink socket: %w", err)
	}
	defer unix.Close(fd)

	if err := unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK}); err != nil {
		return fmt.Errorf("binding netlink socket: %w", err)
	}

	msg := buildRouteMsg(msgType, flags, network, mask, gateways, ifIndexes)
	if err := unix.Sendto(fd, msg, 0, &unix.SockaddrNetlink{Family: unix.AF_NETLINK}); err != nil {
		return fmt.Errorf("sending netlink route message: %w", err)
	}
	return readNetlinkAck(fd)
}

func prefixLen(mask uint32) uint8 {
	n := uint8(0)
	for i := 31; i >= 0; i-- {
		if mask&(1<<uint(i)) == 0 {
			break
		}
		n++
	}
	return n
}

func be4(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// buildRouteMsg constructs an RTM_NEWROUTE/RTM_DELROUTE message. A
// single-nexthop route carries RTA_GATEWAY/RTA_OIF directly; a multipath
// route (len(gateways) > 1) nests them under RTA_MULTIPATH, one rtnexthop
// per next hop, per RFC 2328's multipath forwarding (spec.md §3
// "Multipath").
func buildRouteMsg(msgType uint16, flags uint16, network, mask uint32, gateways []uint32, ifIndexes []int32) []byte {
	dst := be4(network)
	dstAttrLen := rtaAlignLen(rtaHdrLen + len(dst))

	var nhAttrLen int
	single := len(gateways) == 1
	if single {
		nhAttrLen = rtaAlignLen(rtaHdrLen+4) + rtaAlignLen(rtaHdrLen+4) // RTA_GATEWAY + RTA_OIF
	} else if len(gateways) > 1 {
		const rtnexthopLen = 8
		per := rtaAlignLen(rtnexthopLen + rtaAlignLen(rtaHdrLen+4)) // rtnexthop + nested RTA_GATEWAY
		nhAttrLen = rtaHdrLen + per*len(gateways)
	}

	totalLen := nlmsgHdrLen + rtmsgLen + dstAttrLen + nhAttrLen
	buf := make([]byte, totalLen)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(totalLen))
	binary.LittleEndian.PutUint16(buf[4:6], msgType)
	binary.LittleEndian.PutUint16(buf[6:8], flags)
	binary.LittleEndian.PutUint32(buf[8:12], 1)
	binary.LittleEndian.PutUint32(buf[12:16], 0)

	off := nlmsgHdrLen
	buf[off] = unix.AF_INET
	buf[off+1] = prefixLen(mask)
	buf[off+2] = 0
	buf[off+3] = 0
	buf[off+4] = unix.RT_TABLE_MAIN
	buf[off+5] = unix.RTPROT_ZEBRA // distinguishes OSPF-installed routes from static/connected
	buf[off+6] = unix.RT_SCOPE_UNIVERSE
	buf[off+7] = unix.RTN_UNICAST
	binary.LittleEndian.PutUint32(buf[off+8:off+12], 0)

	off = nlmsgHdrLen + rtmsgLen
	binary.LittleEndian.PutUint16(buf[off:off+2], uint16(rtaHdrLen+len(dst)))
	binary.LittleEndian.PutUint16(buf[off+2:off+4], unix.RTA_DST)
	copy(buf[off+rtaHdrLen:], dst)
	off += dstAttrLen

	switch {
	case single:
		gw := be4(gateways[0])
		binary.LittleEndian.PutUint16(buf[off:off+2], uint16(rtaHdrLen+4))
		binary.LittleEndian.PutUint16(buf[off+2:off+4], unix.RTA_GATEWAY)
		copy(buf[off+rtaHdrLen:off+rtaHdrLen+4], gw)
		off += rtaAlignLen(rtaHdrLen + 4)

		binary.LittleEndian.PutUint16(buf[off:off+2], uint16(rtaHdrLen+4))
		binary.LittleEndian.PutUint16(buf[off+2:off+4], unix.RTA_OIF)
		binary.LittleEndian.PutUint32(buf[off+rtaHdrLen:off+rtaHdrLen+4], uint32(ifIndexes[0]))

	case len(gateways) > 1:
		const rtnexthopLen = 8
		per := rtaAlignLen(rtnexthopLen + rtaAlignLen(rtaHdrLen+4))
		binary.LittleEndian.PutUint16(buf[off:off+2], uint16(nhAttrLen))
		binary.LittleEndian.PutUint16(buf[off+2:off+4], unix.RTA_MULTIPATH)
		nhOff := off + rtaHdrLen
		for i, gw := range gateways {
			entry := nhOff + i*per
			binary.LittleEndian.PutUint16(buf[entry:entry+2], uint16(rtnexthopLen+rtaAlignLen(rtaHdrLen+4))) // rtnh_len
			buf[entry+2] = 0                                                                                  // rtnh_flags
			buf[entry+3] = 1                                                                                  // rtnh_hops (weight)
			binary.LittleEndian.PutUint32(buf[entry+4:entry+8], uint32(ifIndexes[i]))                         // rtnh_ifindex
			gwOff := entry + rtnexthopLen
			binary.LittleEndian.PutUint16(buf[gwOff:gwOff+2], uint16(rtaHdrLen+4))
			binary.LittleEndian.PutUint16(buf[gwOff+2:gwOff+4], unix.RTA_GATEWAY)
			copy(buf[gwOff+rtaHdrLen:gwOff+rtaHdrLen+4], be4(gw))
		}
	}

	return buf
}

func readNetlinkAck(fd int) error {
	buf := make([]byte, 4096)
	n, _, err := unix.Recvfrom(fd, buf, 0)
	if err != nil {
		return fmt.Errorf("reading netlink response: %w", err)
	}
	if n < nlmsgHdrLen {
		return fmt.Errorf("netlink response too short: %d bytes", n)
	}
	msgType := binary.LittleEndian.Uint16(buf[4:6])
	if msgType != unix.NLMSG_ERROR {
		return nil
	}
	if n < nlmsgHdrLen+4 {
		return fmt.Errorf("truncated NLMSG_ERROR response")
	}
	errno := *(*int32)(unsafe.Pointer(&buf[nlmsgHdrLen]))
	if errno == 0 {
		return nil
	}
	return fmt.Errorf("netlink error: %s", unix.Errno(-errno))
}
