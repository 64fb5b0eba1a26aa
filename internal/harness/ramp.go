// internal/harness/ramp.go
package harness

import "time"

// Stage moves the VU count linearly to Target over Duration.
// A zero Duration is an instant jump.
type Stage struct {
	Duration time.Duration
	Target   int
}

// Ramp is an ordered stage list starting from StartVUs.
type Ramp struct {
	StartVUs int
	Stages   []Stage
}

// Total returns the summed stage duration.
func (r Ramp) Total() time.Duration {
	var total time.Duration
	for _, s := range r.Stages {
		total += s.Duration
	}
	return total
}

// MaxVUs returns the highest VU count the ramp ever asks for.
func (r Ramp) MaxVUs() int {
	peak := r.StartVUs
	for _, s := range r.Stages {
		if s.Target > peak {
			peak = s.Target
		}
	}
	return peak
}

// TargetAt returns the VU count wanted at elapsed.
// Within a stage the count is interpolated from the previous stage's target
// and truncated toward it. The bool is false once every stage has elapsed.
func (r Ramp) TargetAt(elapsed time.Duration) (int, bool) {
	if elapsed < 0 {
		elapsed = 0
	}

	from := r.StartVUs
	for _, s := range r.Stages {
		if elapsed < s.Duration {
			delta := int64(s.Target-from) * int64(elapsed) / int64(s.Duration)
			return from + int(delta), true
		}
		elapsed -= s.Duration
		from = s.Target
	}

	return from, false
}
