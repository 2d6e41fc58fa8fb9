package ospf

import "testing"

func TestTimerQueueSingleShotFiresOnce(t *testing.T) {
	var q TimerQueue
	now := Time{Sec: 0}
	fired := 0
	// delayMs < 1000 takes the no-jitter path, so the deadline is exact.
	timer := q.NewSingleShot(now, 500, func() { fired++ })
	if !timer.Running() {
		t.Fatalf("new single-shot timer reports not running")
	}

	q.Tick(Time{Sec: 0, Msec: 499})
	if fired != 0 {
		t.Fatalf("fired = %d before deadline, want 0", fired)
	}

	q.Tick(Time{Sec: 0, Msec: 500})
	if fired != 1 {
		t.Fatalf("fired = %d at deadline, want 1", fired)
	}
	if timer.Running() {
		t.Fatalf("single-shot timer still running after firing")
	}

	// a further tick must not fire it again
	q.Tick(Time{Sec: 10})
	if fired != 1 {
		t.Fatalf("fired = %d after extra tick, want 1", fired)
	}
}

func TestTimerQueueIntervalRefiresAtFixedPeriod(t *testing.T) {
	var q TimerQueue
	fired := 0
	timer := q.NewInterval(Time{Sec: 0}, 0, func() { fired++ }) // period 0: start is always 0
	if timer.fire != (Time{Sec: 0}) {
		t.Fatalf("zero-period interval timer should start at now, got %v", timer.fire)
	}

	q.Tick(Time{Sec: 0})
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
	if !timer.Running() {
		t.Fatalf("interval timer stopped running after firing")
	}

	q.Tick(Time{Sec: 0})
	if fired != 2 {
		t.Fatalf("fired = %d after second tick, want 2", fired)
	}
}

func TestTimerStopIsIdempotentAndPreventsFiring(t *testing.T) {
	var q TimerQueue
	fired := 0
	timer := q.NewSingleShot(Time{Sec: 0}, 100, func() { fired++ })
	timer.Stop()
	if timer.Running() {
		t.Fatalf("Running() true after Stop()")
	}
	timer.Stop() // no-op, must not panic

	q.Tick(Time{Sec: 100})
	if fired != 0 {
		t.Fatalf("stopped timer fired")
	}
}

func TestTimerQueueFiresInDeadlineOrder(t *testing.T) {
	var q TimerQueue
	var order []string
	q.NewSingleShot(Time{Sec: 0}, 300, func() { order = append(order, "c") })
	q.NewSingleShot(Time{Sec: 0}, 100, func() { order = append(order, "a") })
	q.NewSingleShot(Time{Sec: 0}, 200, func() { order = append(order, "b") })

	q.Tick(Time{Sec: 1}) // well past all three deadlines

	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestTimerQueueTimeoutReflectsNextDeadline(t *testing.T) {
	var q TimerQueue
	if got := q.Timeout(Time{Sec: 0}); got != -1 {
		t.Fatalf("Timeout() on empty queue = %d, want -1", got)
	}

	q.NewSingleShot(Time{Sec: 0}, 500, func() {})
	if got := q.Timeout(Time{Sec: 0}); got != 500 {
		t.Fatalf("Timeout() = %d, want 500", got)
	}
	if got := q.Timeout(Time{Sec: 0, Msec: 500}); got != 0 {
		t.Fatalf("Timeout() at deadline = %d, want 0", got)
	}
	if got := q.Timeout(Time{Sec: 1}); got != 0 {
		t.Fatalf("Timeout() past deadline = %d, want 0", got)
	}
}

func TestAddMillisCarriesSeconds(t *testing.T) {
	got := addMillis(Time{Sec: 1, Msec: 800}, 500)
	want := Time{Sec: 2, Msec: 300}
	if got != want {
		t.Fatalf("addMillis = %v, want %v", got, want)
	}
}

func TestTimeLessEqual(t *testing.T) {
	cases := []struct {
		a, b Time
		want bool
	}{
		{Time{Sec: 1, Msec: 0}, Time{Sec: 2, Msec: 0}, true},
		{Time{Sec: 2, Msec: 0}, Time{Sec: 1, Msec: 0}, false},
		{Time{Sec: 1, Msec: 500}, Time{Sec: 1, Msec: 500}, true},
		{Time{Sec: 1, Msec: 501}, Time{Sec: 1, Msec: 500}, false},
	}
	for _, c := range cases {
		if got := timeLessEqual(c.a, c.b); got != c.want {
			t.Fatalf("timeLessEqual(%v,%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
