package ospf

import "encoding/binary"

// ExternalMetricType distinguishes OSPF's two external cost semantics
// (spec.md §4.6 step 4): type-1 metrics add to the intra-AS cost, type-2
// metrics only break ties between otherwise-equal routes.
type ExternalMetricType uint8

const (
	ExternalType1 ExternalMetricType = 1
	ExternalType2 ExternalMetricType = 2
)

// ASExternalLSA is the native form of type-5 (AS-external) and type-7
// (NSSA) LSA bodies (spec.md §4.7).
type ASExternalLSA struct {
	Mask             uint32
	MetricType       ExternalMetricType
	Metric           uint32 // 24-bit
	ForwardingAddr   uint32 // 0.0.0.0 means "use advertising router"
	RouteTag         uint32
}

func (e *ASExternalLSA) Len() int { return 16 }

func (e *ASExternalLSA) marshal(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], e.Mask)
	m := e.Metric & 0x00ffffff
	if e.MetricType == ExternalType2 {
		m |= 0x80000000
	}
	binary.BigEndian.PutUint32(b[4:8], m)
	binary.BigEndian.PutUint32(b[8:12], e.ForwardingAddr)
	binary.BigEndian.PutUint32(b[12:16], e.RouteTag)
}

func parseASExternalLSA(b []byte) (*ASExternalLSA, error) {
	if len(b) < 16 {
		return nil, errMalformed
	}
	m := binary.BigEndian.Uint32(b[4:8])
	e := &ASExternalLSA{
		Mask:           binary.BigEndian.Uint32(b[0:4]),
		Metric:         m & 0x00ffffff,
		ForwardingAddr: binary.BigEndian.Uint32(b[8:12]),
		RouteTag:       binary.BigEndian.Uint32(b[12:16]),
	}
	if m&0x80000000 != 0 {
		e.MetricType = ExternalType2
	} else {
		e.MetricType = ExternalType1
	}
	return e, nil
}

// GraceLSA is the opaque-LSA TLV payload carrying graceful-restart
// parameters (spec.md §4.8). Grounded on RFC 3623's Grace-LSA TLVs,
// encoded the way opaque LSAs carry a sequence of (type, length, value)
// TLVs elsewhere in the OSPF ecosystem. It is parsed from, and
// originated as, an area-scope opaque LSA (LS type 10,
// LSTypeOpaqueArea); a link-local type-9 opaque LSA is not parsed into
// a GraceLSA.
type GraceLSA struct {
	GracePeriod    uint32
	RestartReason  uint8
	RestartIP      uint32
	haveRestartIP  bool
}

const (
	tlvGracePeriod   = 1
	tlvRestartReason = 2
	tlvRestartIP     = 3
)

func (g *GraceLSA) Len() int {
	n := 4 + 4 // grace period TLV
	n += 4 + 4 // restart reason TLV (1 byte value padded to 4)
	if g.haveRestartIP || g.RestartIP != 0 {
		n += 4 + 4
	}
	return n
}

func putTLVHeader(b []byte, t, l uint16) {
	binary.BigEndian.PutUint16(b[0:2], t)
	binary.BigEndian.PutUint16(b[2:4], l)
}

func (g *GraceLSA) marshal(b []byte) {
	off := 0
	putTLVHeader(b[off:], tlvGracePeriod, 4)
	binary.BigEndian.PutUint32(b[off+4:off+8], g.GracePeriod)
	off += 8

	putTLVHeader(b[off:], tlvRestartReason, 4)
	b[off+4] = g.RestartReason
	off += 8

	if g.haveRestartIP || g.RestartIP != 0 {
		putTLVHeader(b[off:], tlvRestartIP, 4)
		binary.BigEndian.PutUint32(b[off+4:off+8], g.RestartIP)
		off += 8
	}
}

func parseGraceLSA(b []byte) (*GraceLSA, error) {
	g := &GraceLSA{}
	off := 0
	for off+4 <= len(b) {
		t := binary.BigEndian.Uint16(b[off : off+2])
		l := binary.BigEndian.Uint16(b[off+2 : off+4])
		val := b[off+4:]
		if int(l) > len(val) {
			return nil, errMalformed
		}
		switch t {
		case tlvGracePeriod:
			if l < 4 {
				return nil, errMalformed
			}
			g.GracePeriod = binary.BigEndian.Uint32(val[0:4])
		case tlvRestartReason:
			if l < 1 {
				return nil, errMalformed
			}
			g.RestartReason = val[0]
		case tlvRestartIP:
			if l < 4 {
				return nil, errMalformed
			}
			g.RestartIP = binary.BigEndian.Uint32(val[0:4])
			g.haveRestartIP = true
		}
		// TLVs are padded to 4-byte alignment.
		padded := (int(l) + 3) &^ 3
		off += 4 + padded
	}
	return g, nil
}
