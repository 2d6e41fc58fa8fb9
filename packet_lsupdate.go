package ospf

import "encoding/binary"

// WireLSA is a complete LSA as it appears on the wire: a header plus its
// raw, type-specific body bytes. The flooding and exchange code works
// with WireLSA at the packet boundary; once accepted, lsdb.go parses the
// body into the relevant native *RouterLSA / *NetworkLSA / ... form for
// everything downstream (spf.go, origination.go) to use directly instead
// of re-parsing repeatedly.
type WireLSA struct {
	Header LSAHeader
	Body   []byte
}

func (w *WireLSA) len() int { return lsaHeaderLen + len(w.Body) }

func (w *WireLSA) marshal(b []byte) {
	w.Header.Length = uint16(w.len())
	w.Header.marshal(b[:lsaHeaderLen])
	copy(b[lsaHeaderLen:], w.Body)
}

func parseWireLSA(b []byte) (WireLSA, int, error) {
	hdr, err := parseLSAHeader(b)
	if err != nil {
		return WireLSA{}, 0, err
	}
	total := int(hdr.Length)
	if total > len(b) {
		return WireLSA{}, 0, errMalformed
	}
	body := make([]byte, total-lsaHeaderLen)
	copy(body, b[lsaHeaderLen:total])
	return WireLSA{Header: hdr, Body: body}, total, nil
}

// LinkStateUpdate carries a batch of complete LSAs, flooded reliably
// per-neighbor with retransmission (spec.md §4.5).
type LinkStateUpdate struct {
	hdr Header

	LSAs []WireLSA
}

func (u *LinkStateUpdate) Header() *Header    { return &u.hdr }
func (u *LinkStateUpdate) packetType() packetType { return ptLSUp }

func (u *LinkStateUpdate) bodyLen() int {
	n := 4
	for i := range u.LSAs {
		n += u.LSAs[i].len()
	}
	return n
}

func (u *LinkStateUpdate) marshalBody(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], uint32(len(u.LSAs)))
	off := 4
	for i := range u.LSAs {
		l := u.LSAs[i].len()
		u.LSAs[i].marshal(b[off : off+l])
		off += l
	}
}

func (u *LinkStateUpdate) unmarshalBody(b []byte) error {
	if len(b) < 4 {
		return errMalformed
	}
	count := binary.BigEndian.Uint32(b[0:4])
	off := 4
	for i := uint32(0); i < count; i++ {
		if off >= len(b) {
			return errMalformed
		}
		lsa, consumed, err := parseWireLSA(b[off:])
		if err != nil {
			return err
		}
		u.LSAs = append(u.LSAs, lsa)
		off += consumed
	}
	return nil
}
