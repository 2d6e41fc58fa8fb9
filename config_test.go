package ospf

import "testing"

func TestCfgUpdateAreaCreatesAndUpdatesArea(t *testing.T) {
	o := NewOspf(1, newFakeSys())

	o.CfgStart()
	o.CfgUpdateArea(AreaConfig{ID: 7, Stub: true, StubCost: 20})
	o.CfgDone()

	a := o.Area(7)
	if !a.Stub || a.StubCost != 20 {
		t.Fatalf("area after first commit = %+v, want Stub=true StubCost=20", a)
	}

	o.CfgStart()
	o.CfgUpdateArea(AreaConfig{ID: 7, Stub: false, StubCost: 0})
	o.CfgDone()

	if a.Stub {
		t.Fatalf("area still stub after an update clearing it")
	}
}

func TestCfgUpdateInterfaceCreatesInterfaceUnderArea(t *testing.T) {
	o := NewOspf(1, newFakeSys())

	o.CfgStart()
	o.CfgUpdateArea(AreaConfig{ID: 0})
	o.CfgUpdateInterface(InterfaceConfig{
		Index: 2, AreaID: 0,
		Addr: 0x0a000001, Mask: 0xffffff00,
		Type: IfBroadcast, Cost: 10,
		HelloInterval: 10, RouterDeadInterval: 40, RxmtInterval: 5,
		Priority: 1,
	})
	o.CfgDone()

	a := o.Area(0)
	intf, ok := a.interfaces[2]
	if !ok {
		t.Fatalf("interface 2 not created by CfgDone")
	}
	if intf.Addr != 0x0a000001 || intf.Cost != 10 || intf.Priority != 1 {
		t.Fatalf("interface fields not applied: %+v", intf)
	}
}

// TestCfgDoneTearsDownDroppedInterface is the delta-reconciliation
// behavior spec.md §6 calls for: an interface configured in one batch
// and simply omitted from the next must be torn down, without an
// explicit delete call.
func TestCfgDoneTearsDownDroppedInterface(t *testing.T) {
	o := NewOspf(1, newFakeSys())

	o.CfgStart()
	o.CfgUpdateArea(AreaConfig{ID: 0})
	o.CfgUpdateInterface(InterfaceConfig{Index: 1, AreaID: 0, Type: IfBroadcast})
	o.CfgUpdateInterface(InterfaceConfig{Index: 2, AreaID: 0, Type: IfBroadcast})
	o.CfgDone()

	a := o.Area(0)
	if _, ok := a.interfaces[1]; !ok {
		t.Fatalf("interface 1 missing after first commit")
	}
	if _, ok := a.interfaces[2]; !ok {
		t.Fatalf("interface 2 missing after first commit")
	}

	// second batch omits interface 2 entirely
	o.CfgStart()
	o.CfgUpdateArea(AreaConfig{ID: 0})
	o.CfgUpdateInterface(InterfaceConfig{Index: 1, AreaID: 0, Type: IfBroadcast})
	o.CfgDone()

	if _, ok := a.interfaces[1]; !ok {
		t.Fatalf("interface 1 should have survived the second commit")
	}
	if _, ok := a.interfaces[2]; ok {
		t.Fatalf("interface 2 should have been torn down by the second commit")
	}
}

// TestCfgUpdateAreaReplacesRanges checks that Ranges staged on a
// CfgUpdateArea call replace (not append to) the area's previous ranges,
// matching the overall delta-reconciliation model (the whole area object
// is replaced by what was staged this batch).
func TestCfgUpdateAreaReplacesRanges(t *testing.T) {
	o := NewOspf(1, newFakeSys())

	o.CfgStart()
	o.CfgUpdateArea(AreaConfig{ID: 1, Ranges: []AreaRange{{Network: 10, Mask: 0xffffff00, Advertise: true}}})
	o.CfgDone()

	a := o.Area(1)
	if len(a.ranges) != 1 {
		t.Fatalf("ranges after first commit = %v, want 1 entry", a.ranges)
	}

	o.CfgStart()
	o.CfgUpdateArea(AreaConfig{ID: 1, Ranges: []AreaRange{
		{Network: 20, Mask: 0xffffff00, Advertise: true},
		{Network: 30, Mask: 0xffffff00, Advertise: false},
	}})
	o.CfgDone()

	if len(a.ranges) != 2 {
		t.Fatalf("ranges after second commit = %v, want 2 entries", a.ranges)
	}
	if a.ranges[0].Network != 20 {
		t.Fatalf("ranges not replaced, still have the old entry: %v", a.ranges)
	}
}

// TestCfgStartResetsUpdatedFlagsAcrossBatches ensures an item untouched
// by CfgUpdate* in a later batch is correctly identified as dropped even
// though it was "updated" in an earlier batch — the updated flag must be
// batch-scoped, not sticky.
func TestCfgStartResetsUpdatedFlagsAcrossBatches(t *testing.T) {
	o := NewOspf(1, newFakeSys())

	o.CfgStart()
	o.CfgUpdateArea(AreaConfig{ID: 5})
	o.CfgDone()

	o.CfgStart()
	// area 5 untouched this batch
	o.CfgDone()

	if _, ok := o.cfg.items[5]; ok {
		t.Fatalf("area 5's ConfigItem should have been dropped from o.cfg.items")
	}
}
