package ospf

import "encoding/binary"

// RouterLinkType enumerates the four router-LSA link types (RFC 2328
// §A.4.2).
type RouterLinkType uint8

const (
	LinkPointToPoint RouterLinkType = 1
	LinkTransit      RouterLinkType = 2
	LinkStub         RouterLinkType = 3
	LinkVirtual      RouterLinkType = 4
)

// RouterLink is one link entry in a router-LSA body.
type RouterLink struct {
	ID     uint32 // interpretation depends on Type
	Data   uint32
	Type   RouterLinkType
	Metric uint16
}

// RouterLSA is the native, parsed form of a type-1 LSA body: the
// originating router's directly attached links within one area.
// Grounded on original_source/ospfd/src/spfifc.h's link-building logic,
// re-expressed as a plain value type per spec.md §9's
// "pointer-soup to ownership" guidance.
type RouterLSA struct {
	Bits  RouterLSABits
	Links []RouterLink
}

// RouterLSABits are the V/E/B flag bits (virtual-link endpoint, ASBR,
// ABR) carried in byte 1 of the router-LSA body.
type RouterLSABits struct {
	VirtualLinkEndpoint bool
	ASBR                bool
	ABR                 bool
}

func (b RouterLSABits) encode() byte {
	var v byte
	if b.VirtualLinkEndpoint {
		v |= 0x04
	}
	if b.ASBR {
		v |= 0x02
	}
	if b.ABR {
		v |= 0x01
	}
	return v
}

func decodeRouterLSABits(v byte) RouterLSABits {
	return RouterLSABits{
		VirtualLinkEndpoint: v&0x04 != 0,
		ASBR:                v&0x02 != 0,
		ABR:                 v&0x01 != 0,
	}
}

// Len returns the marshaled body length in bytes.
func (r *RouterLSA) Len() int { return 4 + 12*len(r.Links) }

func (r *RouterLSA) marshal(b []byte) {
	b[0] = 0 // reserved
	b[1] = r.Bits.encode()
	binary.BigEndian.PutUint16(b[2:4], uint16(len(r.Links)))
	off := 4
	for _, l := range r.Links {
		binary.BigEndian.PutUint32(b[off:off+4], l.ID)
		binary.BigEndian.PutUint32(b[off+4:off+8], l.Data)
		b[off+8] = byte(l.Type)
		b[off+9] = 0 // # TOS metrics; TOS routing is not supported
		binary.BigEndian.PutUint16(b[off+10:off+12], l.Metric)
		off += 12
	}
}

func parseRouterLSA(b []byte) (*RouterLSA, error) {
	if len(b) < 4 {
		return nil, errMalformed
	}
	n := binary.BigEndian.Uint16(b[2:4])
	r := &RouterLSA{Bits: decodeRouterLSABits(b[1])}
	off := 4
	for i := 0; i < int(n); i++ {
		if off+12 > len(b) {
			return nil, errMalformed
		}
		link := RouterLink{
			ID:     binary.BigEndian.Uint32(b[off : off+4]),
			Data:   binary.BigEndian.Uint32(b[off+4 : off+8]),
			Type:   RouterLinkType(b[off+8]),
			Metric: binary.BigEndian.Uint16(b[off+10 : off+12]),
		}
		nTOS := int(b[off+9])
		r.Links = append(r.Links, link)
		off += 12 + 4*nTOS // skip any TOS-metric sub-entries verbatim
	}
	return r, nil
}
