package ospf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDatabaseDescriptionRoundTrip(t *testing.T) {
	want := &DatabaseDescription{
		hdr:     Header{RouterID: 1, AreaID: 0},
		MTU:     1500,
		Options: 0x02,
		Init:    true,
		More:    true,
		Master:  true,
		SeqNum:  42,
		LSAHeaders: []LSAHeader{
			{LSType: LSTypeRouter, LinkState: 1, AdvRouter: 1, SeqNum: InitLSSeq, Length: lsaHeaderLen},
			{LSType: LSTypeNetwork, LinkState: 2, AdvRouter: 1, SeqNum: InitLSSeq, Length: lsaHeaderLen},
		},
	}

	b, err := MarshalPacket(want)
	if err != nil {
		t.Fatalf("MarshalPacket: %v", err)
	}
	got, err := ParsePacket(b)
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	dd, ok := got.(*DatabaseDescription)
	if !ok {
		t.Fatalf("ParsePacket returned %T, want *DatabaseDescription", got)
	}
	dd.hdr.checksum = 0

	if diff := cmp.Diff(want, dd, cmp.AllowUnexported(DatabaseDescription{}, Header{})); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDatabaseDescriptionFlagBits(t *testing.T) {
	cases := []struct {
		init, more, master bool
	}{
		{true, false, false},
		{false, true, false},
		{false, false, true},
		{true, true, true},
		{false, false, false},
	}
	for _, c := range cases {
		d := &DatabaseDescription{Init: c.init, More: c.more, Master: c.master}
		b := make([]byte, d.bodyLen())
		d.marshalBody(b)

		var got DatabaseDescription
		if err := got.unmarshalBody(b); err != nil {
			t.Fatalf("unmarshalBody: %v", err)
		}
		if got.Init != c.init || got.More != c.more || got.Master != c.master {
			t.Fatalf("flags round trip = %+v, want %+v", got, c)
		}
	}
}

func TestDatabaseDescriptionUnmarshalRejectsMisalignedLSAHeaders(t *testing.T) {
	d := &DatabaseDescription{}
	body := make([]byte, 8+lsaHeaderLen+1) // one full header plus one stray byte
	if err := d.unmarshalBody(body); err == nil {
		t.Fatalf("unmarshalBody accepted a body not a multiple of the LSA header length")
	}
}

func TestDatabaseDescriptionUnmarshalRejectsShortBody(t *testing.T) {
	d := &DatabaseDescription{}
	if err := d.unmarshalBody(make([]byte, 7)); err == nil {
		t.Fatalf("unmarshalBody accepted a body shorter than the fixed 8-byte prefix")
	}
}
