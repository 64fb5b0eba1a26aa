// internal/metrics/checks.go
package metrics

import (
	"sync"
	"sync/atomic"
)

// CheckResult is the pass/fail tally of one named check.
type CheckResult struct {
	Name   string `json:"name"`
	Passes uint64 `json:"passes"`
	Fails  uint64 `json:"fails"`
}

// Rate returns the pass fraction, 0 when the check never ran.
func (r CheckResult) Rate() float64 {
	total := r.Passes + r.Fails
	if total == 0 {
		return 0
	}
	return float64(r.Passes) / float64(total)
}

type checkCounter struct {
	passes atomic.Uint64
	fails  atomic.Uint64
}

// Checks tallies named checks. Names are reported in first-seen order.
// The map only grows; the hot path is a read lock plus an atomic add.
type Checks struct {
	mu     sync.RWMutex
	order  []string
	counts map[string]*checkCounter
}

func NewChecks() *Checks {
	return &Checks{counts: make(map[string]*checkCounter)}
}

// Record counts one check result.
func (c *Checks) Record(name string, passed bool) {
	cc := c.counter(name)
	if passed {
		cc.passes.Add(1)
	} else {
		cc.fails.Add(1)
	}
}

func (c *Checks) counter(name string) *checkCounter {
	c.mu.RLock()
	cc := c.counts[name]
	c.mu.RUnlock()
	if cc != nil {
		return cc
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cc = c.counts[name]; cc == nil {
		cc = &checkCounter{}
		c.counts[name] = cc
		c.order = append(c.order, name)
	}
	return cc
}

// Results returns a copy of every tally.
func (c *Checks) Results() []CheckResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]CheckResult, 0, len(c.order))
	for _, name := range c.order {
		cc := c.counts[name]
		out = append(out, CheckResult{
			Name:   name,
			Passes: cc.passes.Load(),
			Fails:  cc.fails.Load(),
		})
	}
	return out
}
