package backtest

import (
	"time"

	"afrr-backtest/internal/model"
)

// RampModel turns consecutive eligibility into an activation fraction: nothing
// during the delay, then a linear ramp to full power.
type RampModel struct {
	Delay    time.Duration
	RampUp   time.Duration
	Interval time.Duration
}

// Fraction returns clamp((r*interval - delay) / rampUp, 0, 1) for a run of r samples.
// A zero ramp-up steps straight to 1 once the delay has elapsed.
func (m RampModel) Fraction(runLength int) float64 {
	if runLength <= 0 {
		return 0
	}
	elapsed := time.Duration(runLength) * m.Interval
	if elapsed <= m.Delay {
		return 0
	}
	if m.RampUp <= 0 {
		return 1
	}
	f := float64(elapsed-m.Delay) / float64(m.RampUp)
	if f > 1 {
		return 1
	}
	return f
}

// RunLengths counts consecutive eligible samples up to and including each sample.
// The count drops to 0 on any non-eligible sample and on a gap in the sample times
// longer than interval, and restarts from 1 at the next eligible sample.
// times may be nil when the samples are known to be contiguous.
func RunLengths(elig []model.Eligibility, times []time.Time, interval time.Duration) []int {
	out := make([]int, len(elig))
	run := 0
	for i, e := range elig {
		if i > 0 && times != nil && interval > 0 && times[i].Sub(times[i-1]) > interval {
			run = 0
		}
		if e == model.Eligible {
			run++
		} else {
			run = 0
		}
		out[i] = run
	}
	return out
}
