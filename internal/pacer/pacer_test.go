package pacer

import (
	"testing"
	"time"
)

func TestZeroRateDisablesPacing(t *testing.T) {
	p := New(0, 0)
	slept := false
	p.sleep = func(time.Duration) { slept = true }
	p.Register(1 << 20)
	if slept {
		t.Errorf("Register slept with rate=0, want no-op")
	}
}

func TestRegisterSleepsWhenDebtExceedsThreshold(t *testing.T) {
	p := New(1024, 0) // 1 KiB/sec
	now := time.Now()
	p.now = func() time.Time { return now }
	var totalSlept time.Duration
	p.sleep = func(d time.Duration) {
		totalSlept += d
		now = now.Add(d)
	}

	p.Register(4096) // 4x the per-second rate

	if totalSlept <= 0 {
		t.Fatalf("expected pacer to sleep after a 4x-rate write, slept %v", totalSlept)
	}
	// at 1024 B/s, 4096 bytes of debt should cost roughly 4 seconds.
	if totalSlept < 3*time.Second || totalSlept > 5*time.Second {
		t.Errorf("slept %v, want roughly 4s", totalSlept)
	}
}

func TestBurstCapsDebt(t *testing.T) {
	p := New(1024, 2048) // cap debt at 2 KiB
	now := time.Now()
	p.now = func() time.Time { return now }
	var totalSlept time.Duration
	p.sleep = func(d time.Duration) {
		totalSlept += d
		now = now.Add(d)
	}

	p.Register(1 << 20) // way more than the burst cap

	// sleeping on a capped 2 KiB debt at 1024 B/s is roughly 2s, not the
	// ~1024s an uncapped debt of 1 MiB would require.
	if totalSlept > 3*time.Second {
		t.Errorf("slept %v, want burst-capped sleep near 2s", totalSlept)
	}
}

func TestDebtForgivenByElapsedTime(t *testing.T) {
	p := New(1024, 0)
	now := time.Now()
	p.now = func() time.Time { return now }
	p.sleep = func(d time.Duration) { now = now.Add(d) }

	p.Register(1024) // one second's worth: Register sleeps it off, leaving no debt
	if p.debt > int64(minSleep.Seconds()*1024)+1 {
		t.Errorf("debt = %d after one second's worth of bytes, want near 0", p.debt)
	}

	now = now.Add(10 * time.Second) // plenty of time to forgive any debt
	p.Register(1)
	if p.debt > 1024 {
		t.Errorf("debt = %d after a long idle period, want it forgiven down near the single byte written", p.debt)
	}
}
