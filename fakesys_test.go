package ospf

// fakeSys is a minimal SysCalls fake recording what the core did to it,
// grounded on the package's own doc comment for SysCalls: "so the core
// can be driven by a fake in tests", matching moby-moby's narrow
// collaborator-interface convention.
type fakeSys struct {
	sent    []fakeSentPacket
	joined  map[uint32]bool
	routes  map[string][]NextHop
	logs    []string
	halts   []fakeHalt
}

type fakeSentPacket struct {
	ifIndex uint32
	dst     uint32
	payload []byte
}

type fakeHalt struct {
	code   int
	reason string
}

func newFakeSys() *fakeSys {
	return &fakeSys{
		joined: make(map[uint32]bool),
		routes: make(map[string][]NextHop),
	}
}

func (f *fakeSys) SendPacket(ifIndex uint32, dst uint32, payload []byte) error {
	cp := append([]byte(nil), payload...)
	f.sent = append(f.sent, fakeSentPacket{ifIndex, dst, cp})
	return nil
}

func (f *fakeSys) JoinAllSPFRouters(ifIndex uint32) error {
	f.joined[ifIndex<<1] = true
	return nil
}
func (f *fakeSys) LeaveAllSPFRouters(ifIndex uint32) error {
	f.joined[ifIndex<<1] = false
	return nil
}
func (f *fakeSys) JoinAllDRouters(ifIndex uint32) error {
	f.joined[ifIndex<<1|1] = true
	return nil
}
func (f *fakeSys) LeaveAllDRouters(ifIndex uint32) error {
	f.joined[ifIndex<<1|1] = false
	return nil
}

func (f *fakeSys) InstallRoute(network, mask uint32, nexthops []NextHop) error {
	f.routes[routeKey(network, mask)] = append([]NextHop(nil), nexthops...)
	return nil
}
func (f *fakeSys) RemoveRoute(network, mask uint32) error {
	delete(f.routes, routeKey(network, mask))
	return nil
}

func (f *fakeSys) Log(msgno int, msg string) { f.logs = append(f.logs, msg) }

func (f *fakeSys) Halt(code int, reason string) {
	f.halts = append(f.halts, fakeHalt{code, reason})
}

func routeKey(network, mask uint32) string {
	b := make([]byte, 8)
	b[0], b[1], b[2], b[3] = byte(network>>24), byte(network>>16), byte(network>>8), byte(network)
	b[4], b[5], b[6], b[7] = byte(mask>>24), byte(mask>>16), byte(mask>>8), byte(mask)
	return string(b)
}
