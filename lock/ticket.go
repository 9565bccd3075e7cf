package lock

import (
	"sync/atomic"

	"github.com/ahrav/lockbench/spin"
)

// Ticket is a fair FIFO lock: each acquirer draws a ticket from a
// monotonically increasing counter and spins until that ticket is being
// served. next and serving live on independent cache lines since they
// are written by different parties under contention: next by every
// acquirer, serving only by the current holder. Both counters start at
// zero, matching the fetch-and-add-then-compare convention used to
// decide whose turn it is below.
type Ticket struct {
	next    atomic.Uint32
	_       spin.Pad
	serving atomic.Uint32
	_       spin.Pad
}

// NewTicket creates an unlocked ticket lock.
func NewTicket() *Ticket { return &Ticket{} }

// Acquire draws a ticket and spins until it is being served.
func (t *Ticket) Acquire() {
	my := t.next.Add(1) - 1
	for t.serving.Load() != my {
	}
}

// Release advances service to the next ticket.
func (t *Ticket) Release() {
	t.serving.Add(1)
}

// Name identifies this lock for reporting.
func (t *Ticket) Name() string { return "ticket" }

// TicketPreLoad trades strict FIFO for reduced write pressure on next
// under contention: it does not draw a ticket while the queue looks
// non-empty, only attempting the claiming CAS once a relaxed read of
// next and serving agree the lock is free. Known fairness regression: a
// newly arriving acquirer that observes the lock free can win a race
// against an acquirer that has been spinning for a while, so this
// variant is excluded from the fairness property tests.
type TicketPreLoad struct {
	next    atomic.Uint32
	_       spin.Pad
	serving atomic.Uint32
	_       spin.Pad
}

// NewTicketPreLoad creates an unlocked pre-load ticket lock.
func NewTicketPreLoad() *TicketPreLoad { return &TicketPreLoad{} }

// Acquire waits for the queue to look empty before claiming a ticket.
func (t *TicketPreLoad) Acquire() {
	for {
		s := t.serving.Load()
		n := t.next.Load()
		if s != n {
			continue
		}
		if t.next.CompareAndSwap(n, n+1) {
			for t.serving.Load() != n {
			}
			return
		}
	}
}

// Release advances service to the next ticket.
func (t *TicketPreLoad) Release() {
	t.serving.Add(1)
}

// Name identifies this lock for reporting.
func (t *TicketPreLoad) Name() string { return "ticket_preload" }

// Back-off tunables for TicketBackOff, TicketBackOffPrefetch and
// TicketAdaptive, chosen at the low end of a [4, 512] base-wait range;
// see DESIGN.md for the full rationale.
const (
	ticketBaseWait    uint32 = 4
	ticketWaitNext    uint32 = 2
	ticketFarDistance uint32 = 20
	ticketAdaptiveCap int    = 512
)

// distance returns how far my ticket is from being served, saturating
// at zero once it has already been served (can happen transiently on a
// stale read).
func distance(serving, my uint32) uint32 {
	if my >= serving {
		return my - serving
	}
	return 0
}

// TicketBackOff is Ticket with proportional back-off: while waiting, it
// spins for a duration proportional to its distance from the head of
// the queue, resetting the ramp whenever that distance changes, and
// yields to the OS scheduler once it is more than ticketFarDistance
// behind.
type TicketBackOff struct {
	next    atomic.Uint32
	_       spin.Pad
	serving atomic.Uint32
	_       spin.Pad
}

// NewTicketBackOff creates an unlocked back-off ticket lock.
func NewTicketBackOff() *TicketBackOff { return &TicketBackOff{} }

// Acquire draws a ticket and spins with proportional back-off until it
// is being served.
func (t *TicketBackOff) Acquire() {
	my := t.next.Add(1) - 1
	if t.serving.Load() == my {
		return
	}

	wait := ticketBaseWait
	prevDist := uint32(1)
	for {
		cur := t.serving.Load()
		if cur == my {
			return
		}
		d := distance(cur, my)
		if d > 1 {
			if d != prevDist {
				prevDist = d
				wait = ticketBaseWait
			}
			spin.Relax(int(d * wait))
		} else {
			spin.Relax(int(ticketWaitNext))
		}
		if d > ticketFarDistance {
			spin.Yield()
		}
	}
}

// Release advances service to the next ticket.
func (t *TicketBackOff) Release() {
	t.serving.Add(1)
}

// Name identifies this lock for reporting.
func (t *TicketBackOff) Name() string { return "ticket_backoff" }

// TicketBackOffPrefetch is TicketBackOff plus a write-prefetch hint
// before the fetch-and-add on next and before the release-increment on
// serving. Go exposes no portable prefetch intrinsic; touchForWrite
// below is a best-effort relaxed load the compiler is free to optimize
// away entirely, and that is fine -- the hint is allowed to compile
// away without changing correctness.
type TicketBackOffPrefetch struct {
	next    atomic.Uint32
	_       spin.Pad
	serving atomic.Uint32
	_       spin.Pad
}

// NewTicketBackOffPrefetch creates an unlocked back-off+prefetch ticket lock.
func NewTicketBackOffPrefetch() *TicketBackOffPrefetch { return &TicketBackOffPrefetch{} }

//go:noinline
func touchForWrite(p *atomic.Uint32) {
	_ = p.Load()
}

// Acquire issues a write-prefetch hint for next, draws a ticket, then
// spins with proportional back-off exactly as TicketBackOff.
func (t *TicketBackOffPrefetch) Acquire() {
	touchForWrite(&t.next)
	my := t.next.Add(1) - 1
	if t.serving.Load() == my {
		return
	}

	wait := ticketBaseWait
	prevDist := uint32(1)
	for {
		cur := t.serving.Load()
		if cur == my {
			return
		}
		d := distance(cur, my)
		if d > 1 {
			if d != prevDist {
				prevDist = d
				wait = ticketBaseWait
			}
			spin.Relax(int(d * wait))
		} else {
			spin.Relax(int(ticketWaitNext))
		}
		if d > ticketFarDistance {
			spin.Yield()
		}
	}
}

// Release issues a write-prefetch hint for serving, then advances
// service to the next ticket.
func (t *TicketBackOffPrefetch) Release() {
	touchForWrite(&t.serving)
	t.serving.Add(1)
}

// Name identifies this lock for reporting.
func (t *TicketBackOffPrefetch) Name() string { return "ticket_backoff_prefetch" }

// TicketAdaptive is TicketBackOff with a piecewise pause schedule capped
// at ticketAdaptiveCap relax units to bound tail latency: near the head
// it waits a small near-constant amount, the wait ramps linearly in the
// middle distance, and it saturates at the cap far from the head. It
// never yields to the OS scheduler, trading worst-case tail latency
// control for not being able to shed CPU under extreme contention.
type TicketAdaptive struct {
	next    atomic.Uint32
	_       spin.Pad
	serving atomic.Uint32
	_       spin.Pad
}

// NewTicketAdaptive creates an unlocked adaptive ticket lock.
func NewTicketAdaptive() *TicketAdaptive { return &TicketAdaptive{} }

// adaptivePause maps a queue distance to a relax unit count on a
// piecewise schedule: near-constant at d<=1, linear ramp in the middle,
// capped far from the head.
func adaptivePause(d uint32) int {
	const near uint32 = 16
	maxWait := uint32(ticketAdaptiveCap)
	switch {
	case d <= 1:
		return int(near)
	case d <= ticketFarDistance:
		return int(near + (d-1)*(maxWait-near)/ticketFarDistance)
	default:
		return ticketAdaptiveCap
	}
}

// Acquire draws a ticket and spins on the adaptive pause schedule.
func (t *TicketAdaptive) Acquire() {
	my := t.next.Add(1) - 1
	for {
		cur := t.serving.Load()
		if cur == my {
			return
		}
		spin.Relax(adaptivePause(distance(cur, my)))
	}
}

// Release advances service to the next ticket.
func (t *TicketAdaptive) Release() {
	t.serving.Add(1)
}

// Name identifies this lock for reporting.
func (t *TicketAdaptive) Name() string { return "ticket_adaptive" }
