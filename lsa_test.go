package ospf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLSAHeaderMarshalParseRoundTrip(t *testing.T) {
	want := LSAHeader{
		Age:       1234,
		Options:   0x02,
		LSType:    LSTypeRouter,
		LinkState: 0x0a000001,
		AdvRouter: 0x0a000002,
		SeqNum:    InitLSSeq + 5,
		Checksum:  0xbeef,
		Length:    lsaHeaderLen + 4,
	}

	buf := make([]byte, lsaHeaderLen)
	want.marshal(buf)

	got, err := parseLSAHeader(buf)
	if err != nil {
		t.Fatalf("parseLSAHeader: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLSAHeaderRejectsShortBuffer(t *testing.T) {
	if _, err := parseLSAHeader(make([]byte, lsaHeaderLen-1)); err != errMalformed {
		t.Fatalf("parseLSAHeader(short) = %v, want errMalformed", err)
	}
}

func TestParseLSAHeaderRejectsLengthUnderHeader(t *testing.T) {
	h := LSAHeader{Length: lsaHeaderLen - 1}
	buf := make([]byte, lsaHeaderLen)
	h.marshal(buf)
	if _, err := parseLSAHeader(buf); err != errMalformed {
		t.Fatalf("parseLSAHeader(short Length field) = %v, want errMalformed", err)
	}
}

func TestDoNotAgeSetAndPlainAge(t *testing.T) {
	h := LSAHeader{Age: 42 | DoNotAge}
	if !h.DoNotAgeSet() {
		t.Fatalf("DoNotAgeSet() = false, want true")
	}
	if h.PlainAge() != 42 {
		t.Fatalf("PlainAge() = %d, want 42", h.PlainAge())
	}

	plain := LSAHeader{Age: 42}
	if plain.DoNotAgeSet() {
		t.Fatalf("DoNotAgeSet() = true for a header without the bit set")
	}
}

// TestLSAChecksumVerifies exercises the checksum round trip: a header+body
// stamped with lsaChecksum must verify, and any single-byte corruption of
// the body must not.
func TestLSAChecksumVerifies(t *testing.T) {
	header := LSAHeader{
		Age:       0,
		Options:   0x02,
		LSType:    LSTypeRouter,
		LinkState: 0x0a000001,
		AdvRouter: 0x0a000001,
		SeqNum:    InitLSSeq,
		Length:    lsaHeaderLen + 8,
	}
	body := []byte{0, 1, 2, 3, 4, 5, 6, 7}

	header.Checksum = lsaChecksum(header, body)
	if !VerifyChecksum(header, body) {
		t.Fatalf("VerifyChecksum rejected a freshly-stamped checksum")
	}

	corrupt := append([]byte(nil), body...)
	corrupt[3] ^= 0xff
	if VerifyChecksum(header, corrupt) {
		t.Fatalf("VerifyChecksum accepted a corrupted body")
	}
}

// TestLSAChecksumIgnoresAge checks the spec.md §3 invariant that the
// checksum is computed over the LSA "excluding the age field": aging an
// LSA in place (the only field lsdb.go mutates every second) must never
// require recomputing the checksum.
func TestLSAChecksumIgnoresAge(t *testing.T) {
	header := LSAHeader{
		LSType:    LSTypeRouter,
		LinkState: 1,
		AdvRouter: 1,
		SeqNum:    InitLSSeq,
		Length:    lsaHeaderLen,
	}
	body := []byte{}

	header.Age = 0
	c1 := lsaChecksum(header, body)
	header.Age = 1800
	c2 := lsaChecksum(header, body)

	if c1 != c2 {
		t.Fatalf("checksum changed with age: %#04x vs %#04x", c1, c2)
	}
}

func TestSeqNewer(t *testing.T) {
	if !seqNewer(InitLSSeq+1, InitLSSeq) {
		t.Fatalf("seqNewer should treat a larger signed value as newer")
	}
	if seqNewer(InitLSSeq, InitLSSeq+1) {
		t.Fatalf("seqNewer should treat a smaller signed value as not newer")
	}
	if seqNewer(InitLSSeq, InitLSSeq) {
		t.Fatalf("seqNewer(x,x) should be false")
	}
}

func TestNewerInstanceSequenceWins(t *testing.T) {
	older := LSAHeader{SeqNum: InitLSSeq, Checksum: 1}
	newer := LSAHeader{SeqNum: InitLSSeq + 1, Checksum: 1}
	if !newerInstance(newer, 10, older, 10) {
		t.Fatalf("higher sequence number should win regardless of checksum/age")
	}
	if newerInstance(older, 10, newer, 10) {
		t.Fatalf("lower sequence number should lose")
	}
}

func TestNewerInstanceChecksumTiebreak(t *testing.T) {
	a := LSAHeader{SeqNum: InitLSSeq, Checksum: 5}
	b := LSAHeader{SeqNum: InitLSSeq, Checksum: 10}
	if !newerInstance(b, 10, a, 10) {
		t.Fatalf("equal sequence: higher checksum should win")
	}
	if newerInstance(a, 10, b, 10) {
		t.Fatalf("equal sequence: lower checksum should lose")
	}
}

func TestNewerInstanceMaxAgeWins(t *testing.T) {
	a := LSAHeader{SeqNum: InitLSSeq, Checksum: 5}
	b := LSAHeader{SeqNum: InitLSSeq, Checksum: 5}
	if !newerInstance(b, MaxAge, a, 10) {
		t.Fatalf("identical seq/checksum: the instance at MaxAge should win")
	}
	if newerInstance(a, 10, b, MaxAge) {
		t.Fatalf("identical seq/checksum: the non-MaxAge instance should not win over MaxAge")
	}
}

func TestNewerInstanceMaxAgeDiffThreshold(t *testing.T) {
	a := LSAHeader{SeqNum: InitLSSeq, Checksum: 5}
	b := LSAHeader{SeqNum: InitLSSeq, Checksum: 5}

	// below MaxAgeDiff: no instance is "meaningfully" newer
	if newerInstance(b, 100, a, 100+MaxAgeDiff-1) {
		t.Fatalf("age difference below MaxAgeDiff should not declare a winner")
	}
	// at/above MaxAgeDiff: the younger instance wins
	if !newerInstance(b, 100, a, 100+MaxAgeDiff) {
		t.Fatalf("age difference at MaxAgeDiff should make the younger instance win")
	}
}

func TestNewerInstanceIdenticalReturnsFalse(t *testing.T) {
	a := LSAHeader{SeqNum: InitLSSeq, Checksum: 5}
	if newerInstance(a, MaxAge, a, MaxAge) {
		t.Fatalf("two identical MaxAge instances should not be \"newer\" than each other")
	}
	if newerInstance(a, 10, a, 10) {
		t.Fatalf("two identical non-MaxAge, same-age instances should not be \"newer\"")
	}
}
