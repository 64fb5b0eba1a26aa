// internal/metrics/collector.go
package metrics

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/ingress-loadgen/internal/harness"
)

// Snapshot is a point-in-time copy of everything the collector knows.
// It contains no logic and is safe to hand to reporters.
type Snapshot struct {
	Elapsed               time.Duration `json:"elapsed"`
	Checks                []CheckResult `json:"checks"`
	Requests              RequestStats  `json:"requests"`
	Iterations            uint64        `json:"iterations"`
	IterationsErrored     uint64        `json:"iterations_errored"`
	IterationsInterrupted uint64        `json:"iterations_interrupted"`
	IterationAvg          time.Duration `json:"iteration_avg"`
	VUs                   int           `json:"vus"`
	VUsMax                int           `json:"vus_max"`
}

// ChecksTotals sums passes and fails over every check.
func (s Snapshot) ChecksTotals() (passes, fails uint64) {
	for _, c := range s.Checks {
		passes += c.Passes
		fails += c.Fails
	}
	return passes, fails
}

// ChecksFailed reports whether any check failed at least once.
func (s Snapshot) ChecksFailed() bool {
	_, fails := s.ChecksTotals()
	return fails > 0
}

// Collector is the harness's built-in metrics store.
// It is a scenario.Recorder, a harness.Observer and a RequestSink.
type Collector struct {
	started time.Time

	checks   *Checks
	requests *Requests

	iterations  atomic.Uint64
	errored     atomic.Uint64
	interrupted atomic.Uint64
	iterNanos   atomic.Int64

	vus    atomic.Int64
	vusMax atomic.Int64

	reg  *prometheus.Registry
	prom *promMetrics
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	return &Collector{
		started:  time.Now(),
		checks:   NewChecks(),
		requests: NewRequests(),
		reg:      reg,
		prom:     newPromMetrics(reg),
	}
}

// Registry exposes the Prometheus registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) Record(name string, passed bool) {
	c.checks.Record(name, passed)
	c.prom.check(name, passed)
}

func (c *Collector) ObserveRequest(s RequestSample) {
	c.requests.Add(s)
	c.prom.request(s)
}

func (c *Collector) SetVUs(n int) {
	c.vus.Store(int64(n))
	for {
		peak := c.vusMax.Load()
		if int64(n) <= peak || c.vusMax.CompareAndSwap(peak, int64(n)) {
			break
		}
	}
	c.prom.vus.Set(float64(n))
}

func (c *Collector) ObserveIteration(d time.Duration, err error) {
	switch {
	case errors.Is(err, harness.ErrInterrupted):
		c.interrupted.Add(1)
		c.prom.iterations.WithLabelValues("interrupted").Inc()
		return
	case err != nil:
		c.errored.Add(1)
		c.prom.iterations.WithLabelValues("error").Inc()
	default:
		c.prom.iterations.WithLabelValues("ok").Inc()
	}
	c.iterations.Add(1)
	c.iterNanos.Add(int64(d))
}

// Snapshot copies the current state.
func (c *Collector) Snapshot() Snapshot {
	s := Snapshot{
		Elapsed:               time.Since(c.started),
		Checks:                c.checks.Results(),
		Requests:              c.requests.Stats(),
		Iterations:            c.iterations.Load(),
		IterationsErrored:     c.errored.Load(),
		IterationsInterrupted: c.interrupted.Load(),
		VUs:                   int(c.vus.Load()),
		VUsMax:                int(c.vusMax.Load()),
	}
	if s.Iterations > 0 {
		s.IterationAvg = time.Duration(c.iterNanos.Load() / int64(s.Iterations))
	}
	return s
}
