package mcu

import "container/heap"

// TimerFunc is called when its deadline has been reached. when is the
// deadline that fired, not the current cycle. The return value is the next
// absolute deadline; zero, or anything not after when, cancels the timer.
type TimerFunc func(when uint64) uint64

type timer struct {
	when uint64
	seq  uint64
	fn   TimerFunc
}

// timerHeap orders timers by deadline, then by insertion order.
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].when != h[j].when {
		return h[i].when < h[j].when
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*timer)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// Clock is the virtual cycle counter of a machine and its timer queue.
// It belongs to the simulation goroutine.
type Clock struct {
	now    uint64
	seq    uint64
	timers timerHeap
}

// NewClock returns a clock at cycle 0 with no timers.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current cycle.
func (c *Clock) Now() uint64 {
	return c.now
}

// Pending returns the number of armed timers.
func (c *Clock) Pending() int {
	return len(c.timers)
}

// Schedule arms fn to fire after the given number of cycles.
func (c *Clock) Schedule(after uint64, fn TimerFunc) {
	c.push(c.now+after, fn)
}

func (c *Clock) push(when uint64, fn TimerFunc) {
	c.seq++
	heap.Push(&c.timers, &timer{when: when, seq: c.seq, fn: fn})
}

// Advance moves the clock forward and fires every timer whose deadline is
// at or before the new cycle, earliest first. A timer that reschedules
// itself inside the window fires again in the same call.
func (c *Clock) Advance(cycles uint64) {
	c.now += cycles

	for len(c.timers) > 0 && c.timers[0].when <= c.now {
		t := heap.Pop(&c.timers).(*timer)
		next := t.fn(t.when)
		if next == 0 || next <= t.when {
			continue
		}
		c.push(next, t.fn)
	}
}
