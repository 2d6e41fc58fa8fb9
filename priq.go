package ospf

// Cost is the composite tuple Dijkstra and the timer wheel both order by:
// (Cost0 ascending, Cost1 ascending, Tie1 descending, Tie2 descending).
// Grounded on original_source/ospfd/src/priq.C's composite comparator,
// which biases Dijkstra ties toward intra-area paths and newer timers
// toward firing in insertion order.
type Cost struct {
	Cost0 uint32
	Cost1 uint16
	Tie1  uint8
	Tie2  uint32
}

// less implements the tuple order: cost0 and cost1 ascending, tie1 and
// tie2 descending.
func (a Cost) less(b Cost) bool {
	if a.Cost0 != b.Cost0 {
		return a.Cost0 < b.Cost0
	}
	if a.Cost1 != b.Cost1 {
		return a.Cost1 < b.Cost1
	}
	if a.Tie1 != b.Tie1 {
		return a.Tie1 > b.Tie1
	}
	return a.Tie2 > b.Tie2
}

// PQElement is one entry in a PriQ. Embed it in candidate/timer types;
// PriQ tracks its array index internally so Delete is O(log n) instead of
// O(n).
type PQElement struct {
	cost  Cost
	index int // -1 when not enqueued
}

// InQueue reports whether the element is currently queued.
func (e *PQElement) InQueue() bool { return e.index >= 0 }

// pqItem is the internal queue slot, used so PriQ can be generic over the
// caller's element type while still reaching into the shared PQElement
// header for cost/index bookkeeping.
type pqItem interface {
	pqHeader() *PQElement
}

// PriQ is a mergeable binary min-heap with O(log n) arbitrary-element
// deletion, used both for Dijkstra's candidate set (spf.go) and the
// global timer queue (timer.go). Grounded on
// original_source/ospfd/src/priq.C.
type PriQ struct {
	items []pqItem
}

func (q *PriQ) Len() int { return len(q.items) }

func (q *PriQ) Peek() pqItem {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// Add inserts item, keyed by its current cost, into the queue.
func (q *PriQ) Add(item pqItem) {
	item.pqHeader().index = len(q.items)
	q.items = append(q.items, item)
	q.siftUp(len(q.items) - 1)
}

// RemoveHead pops and returns the minimum-cost item.
func (q *PriQ) RemoveHead() pqItem {
	if len(q.items) == 0 {
		return nil
	}
	return q.removeAt(0)
}

// Delete removes an arbitrary, currently-queued item in O(log n) using
// its tracked index rather than a linear scan.
func (q *PriQ) Delete(item pqItem) {
	idx := item.pqHeader().index
	if idx < 0 || idx >= len(q.items) || q.items[idx] != item {
		return
	}
	q.removeAt(idx)
}

func (q *PriQ) removeAt(idx int) pqItem {
	removed := q.items[idx]
	removed.pqHeader().index = -1

	last := len(q.items) - 1
	q.items[idx] = q.items[last]
	q.items = q.items[:last]
	if idx < len(q.items) {
		q.items[idx].pqHeader().index = idx
		q.siftDown(idx)
		q.siftUp(idx)
	}
	return removed
}

// Reprioritize adjusts an enqueued item's position after its cost
// changes in place (e.g. Dijkstra relaxing a shorter path to a
// candidate already in the queue).
func (q *PriQ) Reprioritize(item pqItem) {
	idx := item.pqHeader().index
	if idx < 0 {
		return
	}
	q.siftUp(idx)
	q.siftDown(idx)
}

func (q *PriQ) less(i, j int) bool {
	return q.items[i].pqHeader().cost.less(q.items[j].pqHeader().cost)
}

func (q *PriQ) swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].pqHeader().index = i
	q.items[j].pqHeader().index = j
}

func (q *PriQ) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			break
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *PriQ) siftDown(i int) {
	n := len(q.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && q.less(left, smallest) {
			smallest = left
		}
		if right < n && q.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		q.swap(i, smallest)
		i = smallest
	}
}
