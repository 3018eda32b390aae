package gpio

import "time"

// spinBelow is the longest sleep done by busy waiting. The scheduler cannot
// wake a goroutine with tens of microseconds of accuracy.
const spinBelow = time.Millisecond

// SpinSleeper sleeps in real time, busy waiting for short durations.
type SpinSleeper struct{}

func (SpinSleeper) Sleep(d time.Duration) {
	if d >= spinBelow {
		time.Sleep(d)
		return
	}
	start := time.Now()
	for time.Since(start) < d {
	}
}
