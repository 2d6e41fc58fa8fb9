package ospf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// merge concatenates byte slices into one buffer, grounded on
// mdlayher-ospf3/message_test.go's helper of the same name and used the
// same way: building wire fixtures field-by-field out of commented byte
// groups instead of one opaque blob.
func merge(bs ...[]byte) []byte {
	var out []byte
	for _, b := range bs {
		out = append(out, b...)
	}
	return out
}

var (
	bufHeaderCommon = []byte{
		192, 0, 2, 1, // Router ID
		0, 0, 0, 0, // Area ID
		0x00, 0x00, // Checksum, patched into bufHello below
		0x00, 0x00, // AuthType
		0, 0, 0, 0, 0, 0, 0, 0, // Auth
	}

	bufHello = merge(
		[]byte{
			ospfVersion, byte(ptHello),
			0x00, 0x00, // PacketLength, patched below
		},
		bufHeaderCommon,
		[]byte{
			255, 255, 255, 0, // Network mask
			0x00, 10, // Hello interval
			0x02,       // Options
			1,          // Router priority
			0, 0, 0, 40, // Router dead interval
			192, 0, 2, 1, // Designated router
			192, 0, 2, 2, // Backup designated router
			192, 0, 2, 3, // Neighbor
		},
	)

	pktHello = &Hello{
		hdr:                Header{RouterID: 0xc0000201},
		NetworkMask:        0xffffff00,
		HelloInterval:      10,
		Options:            0x02,
		RouterPriority:     1,
		RouterDeadInterval: 40,
		DesignatedRouter:   0xc0000201,
		BackupDesignated:   0xc0000202,
		Neighbors:          []uint32{0xc0000203},
	}
)

func init() {
	patchLength(bufHello, headerLen+20+4)
	cs := checksumExcludingAuth(bufHello)
	bufHello[12], bufHello[13] = byte(cs>>8), byte(cs)
}

// patchLength fixes up the two-byte packet-length field of a fixture
// built before the final length was known, so fixtures can be built
// field-by-field without pre-computing offsets by hand.
func patchLength(b []byte, length int) {
	b[2] = byte(length >> 8)
	b[3] = byte(length)
}

func TestParsePacketHello(t *testing.T) {
	p, err := ParsePacket(bufHello)
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	got, ok := p.(*Hello)
	if !ok {
		t.Fatalf("ParsePacket returned %T, want *Hello", p)
	}
	// The checksum is computed in init(), not spelled out in pktHello;
	// ignore it in comparison.
	got.hdr.checksum = 0
	if diff := cmp.Diff(pktHello, got, cmp.AllowUnexported(Hello{}, Header{})); diff != "" {
		t.Fatalf("unexpected Hello (-want +got):\n%s", diff)
	}
}

func TestPacketRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		p    Packet
	}{
		{"hello", pktHello},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := MarshalPacket(tt.p)
			if err != nil {
				t.Fatalf("MarshalPacket: %v", err)
			}
			p2, err := ParsePacket(b)
			if err != nil {
				t.Fatalf("ParsePacket: %v", err)
			}
			b2, err := MarshalPacket(p2)
			if err != nil {
				t.Fatalf("MarshalPacket (second pass): %v", err)
			}
			if diff := cmp.Diff(b, b2); diff != "" {
				t.Fatalf("unexpected bytes after a second round trip (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePacketErrors(t *testing.T) {
	tests := []struct {
		name string
		b    []byte
	}{
		{name: "empty"},
		{
			name: "bad version",
			b:    append([]byte{3, byte(ptHello), 0, 24}, make([]byte, 20)...),
		},
		{
			name: "unknown packet type",
			b:    append([]byte{ospfVersion, 0xff, 0, 24}, make([]byte, 20)...),
		},
		{
			name: "short header",
			b:    []byte{ospfVersion, byte(ptHello), 0, 24, 0, 0, 0, 0},
		},
		{
			name: "bad packet length",
			b:    append([]byte{ospfVersion, byte(ptHello), 0xff, 0xff}, make([]byte, 20)...),
		},
		{
			name: "truncated hello body",
			b:    append([]byte{ospfVersion, byte(ptHello), 0, byte(headerLen + 5)}, make([]byte, 20+5)...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePacket(tt.b)
			if err == nil {
				t.Fatalf("ParsePacket(%q) succeeded, want an error", tt.name)
			}
		})
	}
}

func TestMarshalPacketNil(t *testing.T) {
	if _, err := MarshalPacket(nil); err == nil {
		t.Fatalf("MarshalPacket(nil) succeeded, want an error")
	}
}

func TestHelloNeighborsRejectsMisalignedTrailer(t *testing.T) {
	h := &Hello{}
	// 20-byte fixed Hello body plus 2 trailing bytes: not a multiple of 4,
	// so this cannot be a well-formed trailing Neighbor ID list.
	if err := h.unmarshalBody(make([]byte, 22)); err == nil {
		t.Fatalf("unmarshalBody accepted a misaligned neighbor-ID trailer")
	}
}
