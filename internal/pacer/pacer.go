// Package pacer implements the bandwidth token bucket described in
// spec.md §4.8: every write path registers the bytes it just sent, and
// the pacer sleeps when accumulated debt crosses a minimum-sleep
// threshold, forgiving debt proportional to elapsed wall time. Not
// grounded on any example repo: no token-bucket library appears anywhere
// in the retrieval pack for this concern, so it is built directly from
// the specification text using stdlib time only.
package pacer

import (
	"sync"
	"time"
)

// minSleep is the debt threshold below which Register does not bother
// sleeping, to avoid a storm of tiny time.Sleep calls on small writes.
const minSleep = 10 * time.Millisecond

// Pacer is a token bucket keyed by a byte rate. A zero-rate Pacer (or a
// nil *Pacer) disables pacing entirely, matching spec.md §4.8 "zero rate
// disables pacing (None)".
type Pacer struct {
	mu sync.Mutex

	ratePerSec int64 // bytes/sec; 0 disables pacing
	burst      int64 // 0 means unbounded debt

	debt     int64 // bytes owed, i.e. bytes sent ahead of the allowed rate
	lastTick time.Time

	sleep func(time.Duration) // overridable for tests
	now   func() time.Time
}

// New returns a Pacer allowing ratePerSec bytes/sec, with debt capped at
// burst bytes (0 = uncapped). ratePerSec == 0 disables pacing.
func New(ratePerSec, burst int64) *Pacer {
	return &Pacer{
		ratePerSec: ratePerSec,
		burst:      burst,
		lastTick:   time.Now(),
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// Register records that n bytes were just written, forgives debt
// proportional to wall time elapsed since the last call, and sleeps if
// the resulting debt exceeds the minimum-sleep threshold.
func (p *Pacer) Register(n int) {
	if p == nil || p.ratePerSec <= 0 || n <= 0 {
		return
	}

	p.mu.Lock()
	now := p.now()
	elapsed := now.Sub(p.lastTick)
	p.lastTick = now

	forgiven := int64(elapsed.Seconds() * float64(p.ratePerSec))
	p.debt -= forgiven
	if p.debt < 0 {
		p.debt = 0
	}

	p.debt += int64(n)
	if p.burst > 0 && p.debt > p.burst {
		p.debt = p.burst
	}

	sleepFor := time.Duration(float64(p.debt) / float64(p.ratePerSec) * float64(time.Second))
	p.mu.Unlock()

	if sleepFor >= minSleep {
		p.sleep(sleepFor)
		p.mu.Lock()
		p.debt -= int64(sleepFor.Seconds() * float64(p.ratePerSec))
		if p.debt < 0 {
			p.debt = 0
		}
		p.lastTick = p.now()
		p.mu.Unlock()
	}
}
