package ospf

import "encoding/binary"

// DD bit flags (RFC 2328 Appendix A.3.3).
const (
	ddBitMS byte = 0x01 // Master/Slave
	ddBitM  byte = 0x02 // More
	ddBitI  byte = 0x04 // Init
)

// DatabaseDescription is the DD packet used during the Exchange phase of
// neighbor adjacency formation (spec.md §4.4) to summarize the sending
// router's LSDB.
type DatabaseDescription struct {
	hdr Header

	MTU     uint16
	Options uint8
	Init    bool
	More    bool
	Master  bool
	SeqNum  uint32
	LSAHeaders []LSAHeader
}

func (d *DatabaseDescription) Header() *Header    { return &d.hdr }
func (d *DatabaseDescription) packetType() packetType { return ptDD }
func (d *DatabaseDescription) bodyLen() int       { return 8 + lsaHeaderLen*len(d.LSAHeaders) }

func (d *DatabaseDescription) marshalBody(b []byte) {
	binary.BigEndian.PutUint16(b[0:2], d.MTU)
	b[2] = d.Options
	var bits byte
	if d.Init {
		bits |= ddBitI
	}
	if d.More {
		bits |= ddBitM
	}
	if d.Master {
		bits |= ddBitMS
	}
	b[3] = bits
	binary.BigEndian.PutUint32(b[4:8], d.SeqNum)
	off := 8
	for i := range d.LSAHeaders {
		d.LSAHeaders[i].marshal(b[off : off+lsaHeaderLen])
		off += lsaHeaderLen
	}
}

func (d *DatabaseDescription) unmarshalBody(b []byte) error {
	if len(b) < 8 {
		return errMalformed
	}
	d.MTU = binary.BigEndian.Uint16(b[0:2])
	d.Options = b[2]
	bits := b[3]
	d.Init = bits&ddBitI != 0
	d.More = bits&ddBitM != 0
	d.Master = bits&ddBitMS != 0
	d.SeqNum = binary.BigEndian.Uint32(b[4:8])

	rest := b[8:]
	if len(rest)%lsaHeaderLen != 0 {
		return errMalformed
	}
	for off := 0; off < len(rest); off += lsaHeaderLen {
		hdr, err := parseLSAHeader(rest[off : off+lsaHeaderLen])
		if err != nil {
			return err
		}
		d.LSAHeaders = append(d.LSAHeaders, hdr)
	}
	return nil
}
