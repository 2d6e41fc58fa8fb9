package ospf

import (
	"encoding/binary"
	"fmt"
)

// packetType is the OSPFv2 packet type byte (spec.md §6).
type packetType uint8

const (
	ptHello   packetType = 1
	ptDD      packetType = 2
	ptLSReq   packetType = 3
	ptLSUp    packetType = 4
	ptLSAck   packetType = 5
)

const (
	ospfVersion  = 2
	headerLen    = 24
	authDataLen  = 8
)

// AuthType is the OSPFv2 authentication type (spec.md §6).
type AuthType uint16

const (
	AuthNone   AuthType = 0
	AuthSimple AuthType = 1
	AuthMD5    AuthType = 2
)

// Header is the 24-byte OSPFv2 packet header shared by all five packet
// types. Version, packet type and packet length are computed
// automatically by MarshalPacket, mirroring mdlayher-ospf3/message.go's
// Header, which only exposes fields the caller actually chooses.
type Header struct {
	RouterID uint32
	AreaID   uint32
	AuthType AuthType
	// Auth carries the 8-byte authentication field: a cleartext password
	// for AuthSimple, or (reserved, KeyID, DataLen, CryptoSeq) for
	// AuthMD5 per RFC 2328 Appendix D. Unused for AuthNone.
	Auth [authDataLen]byte

	checksum uint16 // recomputed on marshal, validated on parse (both skipped for AuthMD5)
}

// Packet is implemented by Hello, DatabaseDescription, LinkStateRequest,
// LinkStateUpdate and LinkStateAcknowledgement.
type Packet interface {
	Header() *Header
	packetType() packetType
	bodyLen() int
	marshalBody(b []byte)
	unmarshalBody(b []byte) error
}

func (h *Header) marshal(b []byte, pt packetType, totalLen uint16) {
	b[0] = ospfVersion
	b[1] = byte(pt)
	binary.BigEndian.PutUint16(b[2:4], totalLen)
	binary.BigEndian.PutUint32(b[4:8], h.RouterID)
	binary.BigEndian.PutUint32(b[8:12], h.AreaID)
	binary.BigEndian.PutUint16(b[12:14], h.checksum)
	binary.BigEndian.PutUint16(b[14:16], uint16(h.AuthType))
	copy(b[16:24], h.Auth[:])
}

func parseHeader(b []byte) (Header, packetType, int, error) {
	if len(b) < headerLen {
		return Header{}, 0, 0, fmt.Errorf("ospf: short packet header: %w", errMalformed)
	}
	if b[0] != ospfVersion {
		return Header{}, 0, 0, fmt.Errorf("ospf: unsupported version %d: %w", b[0], errMalformed)
	}
	plen := int(binary.BigEndian.Uint16(b[2:4]))
	if plen < headerLen || plen > len(b) {
		return Header{}, 0, 0, fmt.Errorf("ospf: bad packet length %d: %w", plen, errMalformed)
	}
	h := Header{
		RouterID: binary.BigEndian.Uint32(b[4:8]),
		AreaID:   binary.BigEndian.Uint32(b[8:12]),
		checksum: binary.BigEndian.Uint16(b[12:14]),
		AuthType: AuthType(binary.BigEndian.Uint16(b[14:16])),
	}
	copy(h.Auth[:], b[16:24])
	return h, packetType(b[1]), plen, nil
}

// ipChecksum is the standard one's-complement-sum-of-16-bit-words IP/ICMP
// checksum, used for the OSPF packet header checksum (distinct from the
// Fletcher checksum LSAs use — see lsa.go).
func ipChecksum(b []byte) uint16 {
	var sum uint32
	n := len(b)
	for i := 0; i+1 < n; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(b[i : i+2]))
	}
	if n%2 == 1 {
		sum += uint32(b[n-1]) << 8
	}
	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}

// MarshalPacket serializes p into OSPFv2 wire bytes, computing the packet
// length and checksum. The checksum excludes the 64-bit authentication
// field (RFC 2328 Appendix D.4.3); MD5 authentication, when configured,
// is applied by the caller afterward via AppendMD5.
func MarshalPacket(p Packet) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("ospf: cannot marshal nil Packet")
	}
	total := headerLen + p.bodyLen()
	b := make([]byte, total)
	p.Header().marshal(b, p.packetType(), uint16(total))
	p.marshalBody(b[headerLen:])

	if p.Header().AuthType != AuthMD5 {
		// Checksum covers everything except the 8-byte auth field.
		cs := checksumExcludingAuth(b)
		binary.BigEndian.PutUint16(b[12:14], cs)
	}
	// For MD5, RFC 2328 specifies the checksum field is not used (set to
	// zero) and authentication is carried entirely by the trailing
	// digest; leave b[12:14] as zero.
	return b, nil
}

func checksumExcludingAuth(b []byte) uint16 {
	tmp := make([]byte, len(b))
	copy(tmp, b)
	binary.BigEndian.PutUint16(tmp[12:14], 0)
	for i := 16; i < 24; i++ {
		tmp[i] = 0
	}
	return ipChecksum(tmp)
}

// ParsePacket parses an OSPFv2 Header and dispatches to the appropriate
// Packet implementation based on packet type, mirroring
// mdlayher-ospf3/message.go's ParseMessage.
func ParsePacket(b []byte) (Packet, error) {
	h, pt, plen, err := parseHeader(b)
	if err != nil {
		return nil, err
	}
	body := b[headerLen:plen]

	var p Packet
	switch pt {
	case ptHello:
		p = &Hello{hdr: h}
	case ptDD:
		p = &DatabaseDescription{hdr: h}
	case ptLSReq:
		p = &LinkStateRequest{hdr: h}
	case ptLSUp:
		p = &LinkStateUpdate{hdr: h}
	case ptLSAck:
		p = &LinkStateAcknowledgement{hdr: h}
	default:
		return nil, fmt.Errorf("ospf: unknown packet type %d: %w", pt, errMalformed)
	}
	if err := p.unmarshalBody(body); err != nil {
		return nil, fmt.Errorf("ospf: failed to parse %T body: %w", p, err)
	}
	if h.AuthType != AuthMD5 && checksumExcludingAuth(b[:plen]) != h.checksum {
		return nil, fmt.Errorf("ospf: bad packet checksum %#04x: %w", h.checksum, errBadChecksum)
	}
	return p, nil
}
