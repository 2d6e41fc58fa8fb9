package ospf

import "encoding/binary"

// SummaryLSA is the native form of type-3 (summary-network) and type-4
// (summary-ASBR) LSA bodies, originated by ABRs (spec.md §4.7). For
// type-4, Mask is unused on the wire (RFC 2328 §A.4.4) but kept zero for
// symmetry.
type SummaryLSA struct {
	Mask   uint32
	Metric uint32 // 24-bit metric, top byte must be zero
}

func (s *SummaryLSA) Len() int { return 8 }

func (s *SummaryLSA) marshal(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], s.Mask)
	binary.BigEndian.PutUint32(b[4:8], s.Metric&0x00ffffff)
}

func parseSummaryLSA(b []byte) (*SummaryLSA, error) {
	if len(b) < 8 {
		return nil, errMalformed
	}
	return &SummaryLSA{
		Mask:   binary.BigEndian.Uint32(b[0:4]),
		Metric: binary.BigEndian.Uint32(b[4:8]) & 0x00ffffff,
	}, nil
}
