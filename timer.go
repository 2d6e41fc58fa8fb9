package ospf

import "math/rand"

// Time is the wall-clock offset since process start (seconds,
// milliseconds), passed in by the host through Ospf.Tick.
type Time struct {
	Sec  uint32
	Msec uint16
}

func addMillis(t Time, ms uint32) Time {
	total := uint64(t.Sec)*1000 + uint64(t.Msec) + uint64(ms)
	return Time{Sec: uint32(total / 1000), Msec: uint16(total % 1000)}
}

func timeLessEqual(a, b Time) bool {
	if a.Sec != b.Sec {
		return a.Sec < b.Sec
	}
	return a.Msec <= b.Msec
}

func (t Time) toCost(tie2 uint32) Cost {
	return Cost{Cost0: t.Sec, Cost1: t.Msec, Tie1: 0, Tie2: tie2}
}

// Timer is a PriQ element whose cost tuple encodes its firing deadline.
// Grounded on original_source/ospfd/src/timer.C/timer.h.
type Timer struct {
	PQElement
	queue    *TimerQueue
	fire     Time
	periodMs uint32
	interval bool
	action   func()
	running  bool
}

func (t *Timer) pqHeader() *PQElement { return &t.PQElement }

// Running reports whether the timer is currently queued to fire.
func (t *Timer) Running() bool { return t.running }

// TimerQueue is the single global timer wheel layered over PriQ (§4.1).
type TimerQueue struct {
	pq  PriQ
	seq uint32
}

func (q *TimerQueue) nextTieBreak() uint32 {
	q.seq++
	// Invert the sequence so that, combined with PriQ's descending Tie2
	// comparison, the earlier-inserted timer among two with an identical
	// deadline sorts first — i.e. timers fire in insertion order on ties.
	return ^q.seq
}

func (q *TimerQueue) schedule(t *Timer, fire Time) {
	t.fire = fire
	t.cost = fire.toCost(q.nextTieBreak())
	t.index = -1
	q.pq.Add(t)
	t.running = true
}

// NewSingleShot creates a one-shot timer firing delayMs from now. Per
// spec.md §4.1, starts of at least 1000ms get ±0.5s of uniform jitter so
// that many interfaces configured identically don't all fire in lockstep.
func (q *TimerQueue) NewSingleShot(now Time, delayMs uint32, action func()) *Timer {
	t := &Timer{queue: q, periodMs: delayMs, interval: false, action: action}
	start := delayMs
	if delayMs >= 1000 {
		jitter := rand.Int63n(1001) - 500 // uniform in [-500, 500]
		adjusted := int64(start) + jitter
		if adjusted < 0 {
			adjusted = 0
		}
		start = uint32(adjusted)
	}
	q.schedule(t, addMillis(now, start))
	return t
}

// NewInterval creates a recurring timer with period periodMs. Its initial
// firing is uniformly randomized in [0, periodMs) to spread out
// periodic work (e.g. LSA refresh) across many LSAs configured with the
// same nominal period; every subsequent firing is exactly periodMs after
// the previous deadline, not after the actual fire time, so the average
// rate does not drift under scheduling jitter.
func (q *TimerQueue) NewInterval(now Time, periodMs uint32, action func()) *Timer {
	t := &Timer{queue: q, periodMs: periodMs, interval: true, action: action}
	var start uint32
	if periodMs > 0 {
		start = uint32(rand.Int63n(int64(periodMs)))
	}
	q.schedule(t, addMillis(now, start))
	return t
}

// Stop cancels the timer. A no-op if the timer is not currently running,
// per spec.md §4.1.
func (t *Timer) Stop() {
	if !t.running {
		return
	}
	t.queue.pq.Delete(t)
	t.running = false
}

// Tick fires every timer whose deadline is at or before now, in deadline
// order (ties broken by insertion order). Interval timers are requeued at
// prev_fire+period before their action runs, so a slow action cannot
// delay its own next firing. A zero-period interval timer is requeued
// only after the loop, so it fires once per Tick.
func (q *TimerQueue) Tick(now Time) {
	var zeroPeriod []*Timer
	for {
		head := q.pq.Peek()
		if head == nil {
			break
		}
		t := head.(*Timer)
		if !timeLessEqual(t.fire, now) {
			break
		}
		q.pq.RemoveHead()
		t.running = false

		if t.interval && t.periodMs == 0 {
			zeroPeriod = append(zeroPeriod, t)
			t.running = true // so a Stop from the action still cancels it
		} else if t.interval {
			q.schedule(t, addMillis(t.fire, t.periodMs))
		}
		t.action()
	}
	for _, t := range zeroPeriod {
		if t.running {
			q.schedule(t, t.fire)
		}
	}
}

// Timeout returns milliseconds until the next timer deadline, or -1 if no
// timer is queued (the core is idle and the event loop may block
// indefinitely for the next packet).
func (q *TimerQueue) Timeout(now Time) int32 {
	head := q.pq.Peek()
	if head == nil {
		return -1
	}
	t := head.(*Timer)
	if timeLessEqual(t.fire, now) {
		return 0
	}
	diffMs := (int64(t.fire.Sec)-int64(now.Sec))*1000 + int64(t.fire.Msec) - int64(now.Msec)
	if diffMs < 0 {
		diffMs = 0
	}
	if diffMs > int64(^uint32(0)>>1) {
		diffMs = int64(^uint32(0) >> 1)
	}
	return int32(diffMs)
}
