package ospf

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestPatriciaAddFindRemove(t *testing.T) {
	var trie PatriciaTrie
	a := &MPath{}
	b := &MPath{}

	trie.Add([]byte("alpha"), a)
	trie.Add([]byte("beta"), b)

	if v, ok := trie.Find([]byte("alpha")); !ok || v != a {
		t.Fatalf("Find(alpha) = %v,%v, want a,true", v, ok)
	}
	if v, ok := trie.Find([]byte("beta")); !ok || v != b {
		t.Fatalf("Find(beta) = %v,%v, want b,true", v, ok)
	}
	if _, ok := trie.Find([]byte("gamma")); ok {
		t.Fatalf("Find(gamma) found an entry that was never inserted")
	}
	if trie.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", trie.Len())
	}

	if !trie.Remove([]byte("alpha")) {
		t.Fatalf("Remove(alpha) reported not found")
	}
	if _, ok := trie.Find([]byte("alpha")); ok {
		t.Fatalf("Find(alpha) still found after Remove")
	}
	if trie.Len() != 1 {
		t.Fatalf("Len() after remove = %d, want 1", trie.Len())
	}
	if trie.Remove([]byte("alpha")) {
		t.Fatalf("Remove(alpha) a second time reported found")
	}
}

func TestPatriciaAddReplacesExactMatch(t *testing.T) {
	var trie PatriciaTrie
	a := &MPath{}
	b := &MPath{}
	trie.Add([]byte("key"), a)
	trie.Add([]byte("key"), b)

	if trie.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after re-inserting same key", trie.Len())
	}
	if v, _ := trie.Find([]byte("key")); v != b {
		t.Fatalf("Find(key) = %v, want b (the replacement)", v)
	}
}

// TestPatriciaPrefixKeysDiverge exercises the synthetic length-extension
// bits: "ab" and "abc" share every byte of the shorter key, but must still
// compare as distinct entries.
func TestPatriciaPrefixKeysDiverge(t *testing.T) {
	var trie PatriciaTrie
	short := &MPath{}
	long := &MPath{}
	trie.Add([]byte("ab"), short)
	trie.Add([]byte("abc"), long)

	if trie.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", trie.Len())
	}
	if v, ok := trie.Find([]byte("ab")); !ok || v != short {
		t.Fatalf("Find(ab) = %v,%v, want short,true", v, ok)
	}
	if v, ok := trie.Find([]byte("abc")); !ok || v != long {
		t.Fatalf("Find(abc) = %v,%v, want long,true", v, ok)
	}
}

func TestPatriciaClear(t *testing.T) {
	var trie PatriciaTrie
	trie.Add([]byte("x"), &MPath{})
	trie.Add([]byte("y"), &MPath{})
	trie.Clear()

	if trie.Len() != 0 {
		t.Fatalf("Len() after Clear() = %d, want 0", trie.Len())
	}
	if _, ok := trie.Find([]byte("x")); ok {
		t.Fatalf("Find(x) found an entry after Clear()")
	}
	// trie must still be usable after Clear()
	trie.Add([]byte("x"), &MPath{})
	if trie.Len() != 1 {
		t.Fatalf("Len() after re-Add post-Clear = %d, want 1", trie.Len())
	}
}

func TestPatriciaRandomizedAgainstMap(t *testing.T) {
	var trie PatriciaTrie
	model := make(map[string]*MPath)
	r := rand.New(rand.NewSource(7))

	keyFor := func(i int) []byte { return []byte(fmt.Sprintf("k%d", i)) }

	for i := 0; i < 1000; i++ {
		k := r.Intn(100)
		key := keyFor(k)
		if r.Intn(3) == 0 {
			_, wantOK := model[string(key)]
			delete(model, string(key))
			gotOK := trie.Remove(key)
			if gotOK != wantOK {
				t.Fatalf("Remove(%s) ok=%v, want %v", key, gotOK, wantOK)
			}
		} else {
			v := &MPath{}
			model[string(key)] = v
			trie.Add(key, v)
		}
	}

	if trie.Len() != len(model) {
		t.Fatalf("Len() = %d, want %d", trie.Len(), len(model))
	}
	for k, want := range model {
		got, ok := trie.Find([]byte(k))
		if !ok || got != want {
			t.Fatalf("Find(%s) = %v,%v, want %v,true", k, got, ok, want)
		}
	}
}
