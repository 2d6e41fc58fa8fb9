package ospf

import "encoding/binary"

// NetworkLSA is the native form of a type-2 LSA body, originated only by
// the DR of a broadcast or NBMA interface (spec.md §4.7).
type NetworkLSA struct {
	Mask      uint32
	Attached  []uint32 // Router IDs of all full neighbors, plus self
}

func (n *NetworkLSA) Len() int { return 4 + 4*len(n.Attached) }

func (n *NetworkLSA) marshal(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], n.Mask)
	off := 4
	for _, r := range n.Attached {
		binary.BigEndian.PutUint32(b[off:off+4], r)
		off += 4
	}
}

func parseNetworkLSA(b []byte) (*NetworkLSA, error) {
	if len(b) < 4 || (len(b)-4)%4 != 0 {
		return nil, errMalformed
	}
	n := &NetworkLSA{Mask: binary.BigEndian.Uint32(b[0:4])}
	for off := 4; off < len(b); off += 4 {
		n.Attached = append(n.Attached, binary.BigEndian.Uint32(b[off:off+4]))
	}
	return n, nil
}
