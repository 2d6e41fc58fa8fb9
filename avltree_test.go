package ospf

import (
	"math/rand"
	"testing"
)

func TestTreeInsertFindRemove(t *testing.T) {
	var tree Tree[string]

	tree.Insert(Key{1, 1}, "a")
	tree.Insert(Key{2, 1}, "b")
	tree.Insert(Key{1, 2}, "c")

	if v, ok := tree.Find(Key{1, 1}); !ok || v != "a" {
		t.Fatalf("Find(1,1) = %q, %v", v, ok)
	}
	if v, ok := tree.Find(Key{2, 1}); !ok || v != "b" {
		t.Fatalf("Find(2,1) = %q, %v", v, ok)
	}
	if _, ok := tree.Find(Key{9, 9}); ok {
		t.Fatalf("Find(9,9) found a value that was never inserted")
	}

	if old, replaced := tree.Insert(Key{1, 1}, "a2"); !replaced || old != "a" {
		t.Fatalf("re-insert: old=%q replaced=%v, want \"a\",true", old, replaced)
	}
	if v, _ := tree.Find(Key{1, 1}); v != "a2" {
		t.Fatalf("Find after update = %q, want a2", v)
	}

	if tree.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tree.Len())
	}

	if _, ok := tree.Remove(Key{2, 1}); !ok {
		t.Fatalf("Remove(2,1) reported not found")
	}
	if _, ok := tree.Find(Key{2, 1}); ok {
		t.Fatalf("Find(2,1) still found after Remove")
	}
	if tree.Len() != 2 {
		t.Fatalf("Len() after remove = %d, want 2", tree.Len())
	}
}

// TestTreeIterateOrder checks that Iterate walks keys in strictly
// ascending (K1,K2) order regardless of insertion order, since the
// threaded chain is the only thing callers (LSDB scans, routing-table
// dumps) rely on for ordering.
func TestTreeIterateOrder(t *testing.T) {
	var tree Tree[int]
	keys := []Key{{5, 0}, {1, 0}, {3, 1}, {3, 0}, {2, 0}}
	for i, k := range keys {
		tree.Insert(k, i)
	}

	it := tree.Iterate()
	var got []Key
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, k)
	}

	want := []Key{{1, 0}, {2, 0}, {3, 0}, {3, 1}, {5, 0}}
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// TestTreeIteratorResyncAfterMutation exercises the generation-counter
// resync: removing the just-visited key mid-iteration must not panic or
// skip surviving keys.
func TestTreeIteratorResyncAfterMutation(t *testing.T) {
	var tree Tree[int]
	for i := 0; i < 5; i++ {
		tree.Insert(Key{uint32(i), 0}, i)
	}

	it := tree.Iterate()
	k, _, ok := it.Next()
	if !ok || k != (Key{0, 0}) {
		t.Fatalf("first key = %v, %v, want (0,0),true", k, ok)
	}

	tree.Remove(Key{1, 0}) // remove the entry the iterator hasn't visited yet
	tree.Remove(Key{0, 0}) // remove the entry just visited

	var rest []Key
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		rest = append(rest, k)
	}
	want := []Key{{2, 0}, {3, 0}, {4, 0}}
	if len(rest) != len(want) {
		t.Fatalf("got %v, want %v", rest, want)
	}
	for i := range want {
		if rest[i] != want[i] {
			t.Fatalf("got %v, want %v", rest, want)
		}
	}
}

// TestTreePredecessorAtMinimum resolves DESIGN.md's Open Question: there
// is no predecessor of the minimum representable key.
func TestTreePredecessorAtMinimum(t *testing.T) {
	var tree Tree[int]
	tree.Insert(Key{0, 0}, 1)
	tree.Insert(Key{1, 0}, 2)

	if _, _, ok := tree.Predecessor(Key{0, 0}); ok {
		t.Fatalf("Predecessor(0,0) reported a predecessor, want none")
	}
	k, v, ok := tree.Predecessor(Key{1, 0})
	if !ok || k != (Key{0, 0}) || v != 1 {
		t.Fatalf("Predecessor(1,0) = %v, %v, %v, want (0,0),1,true", k, v, ok)
	}
}

// TestTreeRandomizedAgainstMap cross-checks Insert/Remove/Find against a
// plain map under a long randomized sequence, catching any rotation bug
// that only manifests at specific tree shapes.
func TestTreeRandomizedAgainstMap(t *testing.T) {
	var tree Tree[int]
	model := make(map[Key]int)
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		k := Key{uint32(r.Intn(50)), uint32(r.Intn(3))}
		if r.Intn(3) == 0 {
			_, wantOK := model[k]
			delete(model, k)
			_, gotOK := tree.Remove(k)
			if gotOK != wantOK {
				t.Fatalf("Remove(%v) ok=%v, want %v", k, gotOK, wantOK)
			}
		} else {
			v := r.Int()
			model[k] = v
			tree.Insert(k, v)
		}
	}

	if tree.Len() != len(model) {
		t.Fatalf("Len() = %d, want %d", tree.Len(), len(model))
	}
	for k, want := range model {
		got, ok := tree.Find(k)
		if !ok || got != want {
			t.Fatalf("Find(%v) = %v,%v, want %v,true", k, got, ok, want)
		}
	}
}
