package ospf

import "encoding/binary"

// LSType enumerates the OSPFv2 LSA types this implementation carries.
type LSType uint8

const (
	LSTypeRouter      LSType = 1
	LSTypeNetwork     LSType = 2
	LSTypeSummaryNet  LSType = 3
	LSTypeSummaryASBR LSType = 4
	LSTypeASExternal  LSType = 5
	LSTypeGroup       LSType = 6 // group-membership, carried for completeness
	LSTypeNSSA        LSType = 7
	LSTypeOpaqueLink  LSType = 9  // link-local scope
	LSTypeOpaqueArea  LSType = 10 // area-wide scope (carries grace-LSA TLV)
	LSTypeOpaqueAS    LSType = 11 // AS-wide scope
)

// scope classifies an LSA type's flooding scope, per spec.md §3.
type scope int

const (
	scopeLinkLocal scope = iota
	scopeArea
	scopeAS
)

func (t LSType) scope() scope {
	switch t {
	case LSTypeOpaqueLink:
		return scopeLinkLocal
	case LSTypeASExternal, LSTypeNSSA, LSTypeOpaqueAS:
		return scopeAS
	default:
		return scopeArea
	}
}

const lsaHeaderLen = 20

// LSAHeader is the fixed 20-byte OSPFv2 LSA header (spec.md §3, §6).
type LSAHeader struct {
	Age       uint16 // includes the DoNotAge high bit
	Options   uint8
	LSType    LSType
	LinkState uint32 // Link State ID
	AdvRouter uint32 // Advertising Router
	SeqNum    int32  // signed ordered set, see seqNewer
	Checksum  uint16
	Length    uint16
}

// DoNotAgeSet reports whether the header's DoNotAge bit is set.
func (h *LSAHeader) DoNotAgeSet() bool { return h.Age&DoNotAge != 0 }

// PlainAge returns the age with the DoNotAge bit masked off.
func (h *LSAHeader) PlainAge() uint16 { return h.Age &^ DoNotAge }

func (h *LSAHeader) marshal(b []byte) {
	binary.BigEndian.PutUint16(b[0:2], h.Age)
	b[2] = h.Options
	b[3] = byte(h.LSType)
	binary.BigEndian.PutUint32(b[4:8], h.LinkState)
	binary.BigEndian.PutUint32(b[8:12], h.AdvRouter)
	binary.BigEndian.PutUint32(b[12:16], uint32(h.SeqNum))
	binary.BigEndian.PutUint16(b[16:18], h.Checksum)
	binary.BigEndian.PutUint16(b[18:20], h.Length)
}

func parseLSAHeader(b []byte) (LSAHeader, error) {
	if len(b) < lsaHeaderLen {
		return LSAHeader{}, errMalformed
	}
	h := LSAHeader{
		Age:       binary.BigEndian.Uint16(b[0:2]),
		Options:   b[2],
		LSType:    LSType(b[3]),
		LinkState: binary.BigEndian.Uint32(b[4:8]),
		AdvRouter: binary.BigEndian.Uint32(b[8:12]),
		SeqNum:    int32(binary.BigEndian.Uint32(b[12:16])),
		Checksum:  binary.BigEndian.Uint16(b[16:18]),
		Length:    binary.BigEndian.Uint16(b[18:20]),
	}
	if h.Length < lsaHeaderLen {
		return LSAHeader{}, errMalformed
	}
	return h, nil
}

// fletcher16 implements the Fletcher checksum algorithm used throughout
// OSPF (RFC 905 Annex C / RFC 2328 Appendix C, "Fletcher Checksum").
// The running sums cover data exactly as given, so the two bytes at
// data[checksumOffset:checksumOffset+2] must already be zero (lsaChecksum
// zeroes them); checksumOffset positions the check bytes. Grounded on
// original_source/ospfd/src/spfutil.C's checksum routine.
func fletcher16(data []byte, checksumOffset int) uint16 {
	var c0, c1 int32
	n := len(data)
	for i := 0; i < n; {
		chunk := n - i
		const modX = 4102 // largest block before c0/c1 could overflow before a mod
		if chunk > modX {
			chunk = modX
		}
		for j := 0; j < chunk; j++ {
			c0 += int32(data[i+j])
			c1 += c0
		}
		c0 %= 255
		c1 %= 255
		i += chunk
	}

	mul := int32(n - checksumOffset - 1)
	x := (mul*c0 - c1) % 255
	if x <= 0 {
		x += 255
	}
	y := 510 - c0 - x
	if y > 255 {
		y -= 255
	}
	return uint16(x)<<8 | uint16(y&0xff)
}

// lsaChecksum computes the LSA checksum over the header (excluding the
// age field) plus body, per spec.md §3: "Fletcher-16 over the LSA
// excluding the age field".
func lsaChecksum(header LSAHeader, body []byte) uint16 {
	buf := make([]byte, lsaHeaderLen-2+len(body))
	hb := make([]byte, lsaHeaderLen)
	header.Checksum = 0
	header.marshal(hb)
	copy(buf, hb[2:]) // skip the 2-byte age field
	copy(buf[lsaHeaderLen-2:], body)
	// checksum field sits at header offset 16, i.e. offset 14 once the
	// 2-byte age field has been skipped.
	return fletcher16(buf, 16-2)
}

// VerifyChecksum reports whether header.Checksum matches the Fletcher
// checksum of header+body.
func VerifyChecksum(header LSAHeader, body []byte) bool {
	return header.Checksum == lsaChecksum(header, body)
}

// seqNewer reports whether a is a newer sequence number than b. Sequence
// numbers are carried as a signed ordered set (spec.md §3); InitLSSeq and
// MaxLSSeq bound the usable range and InvalidSeq (0x80000000) never
// appears in a live instance, so ordinary signed comparison is exactly
// the comparator the spec calls for — no modular wraparound arithmetic is
// needed because the *wrap procedure* (flush at MaxLSSeq, wait, restart
// at InitLSSeq) is what prevents the sequence space from actually
// wrapping in twos-complement terms.
func seqNewer(a, b int32) bool { return a > b }

// newerInstance implements the full §3 comparator: larger sequence wins;
// else newer checksum wins; else the instance at MaxAge wins; else the
// instance with the (meaningfully) smaller age wins, where "meaningfully"
// requires at least MaxAgeDiff seconds of difference.
func newerInstance(newHdr LSAHeader, newAge uint16, oldHdr LSAHeader, oldAge uint16) bool {
	if newHdr.SeqNum != oldHdr.SeqNum {
		return seqNewer(newHdr.SeqNum, oldHdr.SeqNum)
	}
	if newHdr.Checksum != oldHdr.Checksum {
		return newHdr.Checksum > oldHdr.Checksum
	}
	newMax := newAge == MaxAge
	oldMax := oldAge == MaxAge
	if newMax != oldMax {
		return newMax
	}
	if newMax && oldMax {
		return false // identical instance
	}
	if oldAge > newAge && oldAge-newAge >= MaxAgeDiff {
		return true
	}
	return false
}
