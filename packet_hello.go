package ospf

import "encoding/binary"

// Hello is the OSPFv2 Hello packet (RFC 2328 Appendix A.3.2), used for
// neighbor discovery and the interface FSM's Wait timer / DR election
// (spec.md §4.3).
type Hello struct {
	hdr Header

	NetworkMask       uint32
	HelloInterval     uint16
	Options           uint8
	RouterPriority    uint8
	RouterDeadInterval uint32
	DesignatedRouter  uint32
	BackupDesignated  uint32
	Neighbors         []uint32
}

func (h *Hello) Header() *Header    { return &h.hdr }
func (h *Hello) packetType() packetType { return ptHello }
func (h *Hello) bodyLen() int       { return 20 + 4*len(h.Neighbors) }

func (h *Hello) marshalBody(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], h.NetworkMask)
	binary.BigEndian.PutUint16(b[4:6], h.HelloInterval)
	b[6] = h.Options
	b[7] = h.RouterPriority
	binary.BigEndian.PutUint32(b[8:12], h.RouterDeadInterval)
	binary.BigEndian.PutUint32(b[12:16], h.DesignatedRouter)
	binary.BigEndian.PutUint32(b[16:20], h.BackupDesignated)
	off := 20
	for _, n := range h.Neighbors {
		binary.BigEndian.PutUint32(b[off:off+4], n)
		off += 4
	}
}

func (h *Hello) unmarshalBody(b []byte) error {
	if len(b) < 20 {
		return errMalformed
	}
	h.NetworkMask = binary.BigEndian.Uint32(b[0:4])
	h.HelloInterval = binary.BigEndian.Uint16(b[4:6])
	h.Options = b[6]
	h.RouterPriority = b[7]
	h.RouterDeadInterval = binary.BigEndian.Uint32(b[8:12])
	h.DesignatedRouter = binary.BigEndian.Uint32(b[12:16])
	h.BackupDesignated = binary.BigEndian.Uint32(b[16:20])
	if (len(b)-20)%4 != 0 {
		return errMalformed
	}
	for off := 20; off < len(b); off += 4 {
		h.Neighbors = append(h.Neighbors, binary.BigEndian.Uint32(b[off:off+4]))
	}
	return nil
}
