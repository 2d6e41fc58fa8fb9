package ospf

import "encoding/binary"

// LSRequestEntry identifies one LSA instance being requested (RFC 2328
// Appendix A.3.4): unlike most LSA identifiers, the type field here is a
// full 32 bits on the wire even though only the low byte is meaningful.
type LSRequestEntry struct {
	LSType    LSType
	LinkState uint32
	AdvRouter uint32
}

// LinkStateRequest is sent during the Loading phase to pull full LSA
// instances the DD exchange revealed as missing or stale (spec.md §4.4).
type LinkStateRequest struct {
	hdr Header

	Entries []LSRequestEntry
}

func (r *LinkStateRequest) Header() *Header    { return &r.hdr }
func (r *LinkStateRequest) packetType() packetType { return ptLSReq }
func (r *LinkStateRequest) bodyLen() int       { return 12 * len(r.Entries) }

func (r *LinkStateRequest) marshalBody(b []byte) {
	off := 0
	for _, e := range r.Entries {
		binary.BigEndian.PutUint32(b[off:off+4], uint32(e.LSType))
		binary.BigEndian.PutUint32(b[off+4:off+8], e.LinkState)
		binary.BigEndian.PutUint32(b[off+8:off+12], e.AdvRouter)
		off += 12
	}
}

func (r *LinkStateRequest) unmarshalBody(b []byte) error {
	if len(b)%12 != 0 {
		return errMalformed
	}
	for off := 0; off < len(b); off += 12 {
		r.Entries = append(r.Entries, LSRequestEntry{
			LSType:    LSType(binary.BigEndian.Uint32(b[off : off+4])),
			LinkState: binary.BigEndian.Uint32(b[off+4 : off+8]),
			AdvRouter: binary.BigEndian.Uint32(b[off+8 : off+12]),
		})
	}
	return nil
}
