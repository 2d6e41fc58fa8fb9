package ospf

import (
	"math/rand"
	"sort"
	"testing"
)

type testPQItem struct {
	PQElement
	name string
}

func (e *testPQItem) pqHeader() *PQElement { return &e.PQElement }

func newTestPQItem(name string, cost uint32) *testPQItem {
	it := &testPQItem{name: name}
	it.index = -1
	it.cost = Cost{Cost0: cost}
	return it
}

func TestPriQOrdersByCost(t *testing.T) {
	var q PriQ
	a := newTestPQItem("a", 30)
	b := newTestPQItem("b", 10)
	c := newTestPQItem("c", 20)
	q.Add(a)
	q.Add(b)
	q.Add(c)

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}

	var order []string
	for q.Len() > 0 {
		it := q.RemoveHead().(*testPQItem)
		order = append(order, it.name)
	}
	want := []string{"b", "c", "a"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestPriQInQueueAndDelete(t *testing.T) {
	var q PriQ
	a := newTestPQItem("a", 5)
	b := newTestPQItem("b", 1)

	if a.InQueue() {
		t.Fatalf("fresh item reports InQueue")
	}
	q.Add(a)
	q.Add(b)
	if !a.InQueue() {
		t.Fatalf("queued item reports not InQueue")
	}

	q.Delete(a)
	if a.InQueue() {
		t.Fatalf("deleted item still reports InQueue")
	}
	if q.Len() != 1 {
		t.Fatalf("Len() after delete = %d, want 1", q.Len())
	}

	// deleting an already-removed item is a no-op, not a panic
	q.Delete(a)

	head := q.RemoveHead().(*testPQItem)
	if head.name != "b" {
		t.Fatalf("RemoveHead() = %q, want b", head.name)
	}
}

func TestPriQReprioritize(t *testing.T) {
	var q PriQ
	a := newTestPQItem("a", 100)
	b := newTestPQItem("b", 200)
	q.Add(a)
	q.Add(b)

	a.cost.Cost0 = 300 // relax a to be the most expensive
	q.Reprioritize(a)

	head := q.RemoveHead().(*testPQItem)
	if head.name != "b" {
		t.Fatalf("after reprioritize, head = %q, want b", head.name)
	}
}

func TestPriQTieBreakOrder(t *testing.T) {
	// Tie1/Tie2 break ties in descending order, per priq.go's doc comment.
	var q PriQ
	a := newTestPQItem("a", 1)
	a.cost.Tie1 = 1
	b := newTestPQItem("b", 1)
	b.cost.Tie1 = 2
	q.Add(a)
	q.Add(b)

	head := q.RemoveHead().(*testPQItem)
	if head.name != "b" {
		t.Fatalf("tie-break winner = %q, want b (higher Tie1 first)", head.name)
	}
}

func TestPriQRandomizedAgainstSort(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	var q PriQ
	var costs []uint32
	items := make([]*testPQItem, 0, 200)
	for i := 0; i < 200; i++ {
		c := uint32(r.Intn(1000))
		it := newTestPQItem("x", c)
		items = append(items, it)
		costs = append(costs, c)
		q.Add(it)
	}
	sort.Slice(costs, func(i, j int) bool { return costs[i] < costs[j] })

	for i, want := range costs {
		got := q.RemoveHead().(*testPQItem)
		if got.cost.Cost0 != want {
			t.Fatalf("pop %d: cost = %d, want %d", i, got.cost.Cost0, want)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("queue not drained, Len() = %d", q.Len())
	}
}

func TestPriQPeekDoesNotRemove(t *testing.T) {
	var q PriQ
	a := newTestPQItem("a", 5)
	q.Add(a)

	p := q.Peek().(*testPQItem)
	if p.name != "a" {
		t.Fatalf("Peek() = %q, want a", p.name)
	}
	if q.Len() != 1 {
		t.Fatalf("Peek() removed the item, Len() = %d", q.Len())
	}
}

func TestPriQEmptyReturnsNil(t *testing.T) {
	var q PriQ
	if q.Peek() != nil {
		t.Fatalf("Peek() on empty queue returned non-nil")
	}
	if q.RemoveHead() != nil {
		t.Fatalf("RemoveHead() on empty queue returned non-nil")
	}
}
