package ospf

// LinkStateAcknowledgement carries a batch of LSA headers acknowledging
// receipt, either batched as a delayed ack or sent immediately as a
// direct ack (spec.md §4.5).
type LinkStateAcknowledgement struct {
	hdr Header

	LSAHeaders []LSAHeader
}

func (a *LinkStateAcknowledgement) Header() *Header        { return &a.hdr }
func (a *LinkStateAcknowledgement) packetType() packetType { return ptLSAck }
func (a *LinkStateAcknowledgement) bodyLen() int           { return lsaHeaderLen * len(a.LSAHeaders) }

func (a *LinkStateAcknowledgement) marshalBody(b []byte) {
	off := 0
	for i := range a.LSAHeaders {
		a.LSAHeaders[i].marshal(b[off : off+lsaHeaderLen])
		off += lsaHeaderLen
	}
}

func (a *LinkStateAcknowledgement) unmarshalBody(b []byte) error {
	if len(b)%lsaHeaderLen != 0 {
		return errMalformed
	}
	for off := 0; off < len(b); off += lsaHeaderLen {
		hdr, err := parseLSAHeader(b[off : off+lsaHeaderLen])
		if err != nil {
			return err
		}
		a.LSAHeaders = append(a.LSAHeaders, hdr)
	}
	return nil
}
