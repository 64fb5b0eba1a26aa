// internal/harness/executor.go
package harness

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrInterrupted is reported for an iteration whose context was cancelled
// by the executor (grace period expired or run aborted).
var ErrInterrupted = errors.New("harness: iteration interrupted")

// VU is the per-virtual-user state handed to every iteration.
// It is owned by exactly one goroutine.
type VU struct {
	ID         int
	Rand       *rand.Rand
	Iterations uint64
}

// Iteration is the function executed in a loop by every VU.
// A returned error is counted, never fatal.
type Iteration func(ctx context.Context, vu *VU) error

// Observer receives executor events. Implementations must be concurrency-safe.
type Observer interface {
	SetVUs(n int)
	ObserveIteration(d time.Duration, err error)
}

// Config is the minimal runtime config the executor needs.
type Config struct {
	Ramp             Ramp
	GracefulRampDown time.Duration
	GracefulStop     time.Duration
	Tick             time.Duration
	Seed             int64 // 0 => clock
}

// Stats summarizes one executor run.
type Stats struct {
	Duration    time.Duration
	Iterations  uint64 // completed, with or without error
	Errored     uint64
	Interrupted uint64
	MaxVUs      int
	Aborted     bool // ctx was cancelled before the ramp finished
}

// Executor runs an Iteration under a ramping VU count.
type Executor struct {
	cfg    Config
	obs    Observer
	logger *slog.Logger
}

// New creates an executor with immutable config.
func New(cfg Config, obs Observer, logger *slog.Logger) (*Executor, error) {
	if len(cfg.Ramp.Stages) == 0 {
		return nil, errors.New("harness: at least one stage required")
	}
	if cfg.Ramp.Total() <= 0 {
		return nil, errors.New("harness: ramp duration must be > 0")
	}
	if cfg.Tick <= 0 {
		return nil, errors.New("harness: tick must be > 0")
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{cfg: cfg, obs: obs, logger: logger}, nil
}

// Seed returns the effective base seed (useful for reproducing a run).
func (e *Executor) Seed() int64 { return e.cfg.Seed }

type vuHandle struct {
	VU
	ctx    context.Context
	cancel context.CancelFunc
	stop   chan struct{}

	mu      sync.Mutex
	retired bool
	exited  bool
}

// retire marks a ramped-down VU as draining until its loop exits.
func (v *vuHandle) retire(draining *atomic.Int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.retired = true
	if !v.exited {
		draining.Add(1)
	}
}

func (v *vuHandle) exit(draining *atomic.Int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.exited = true
	if v.retired {
		draining.Add(-1)
	}
}

type counters struct {
	iterations  atomic.Uint64
	errored     atomic.Uint64
	interrupted atomic.Uint64
}

// Run drives the ramp until it completes or ctx is cancelled.
// On completion every VU gets GracefulStop to finish its current iteration;
// on cancellation there is no grace period.
func (e *Executor) Run(ctx context.Context, it Iteration) (Stats, error) {
	if it == nil {
		return Stats{}, errors.New("harness: iteration required")
	}

	iterCtx, cancelIter := context.WithCancel(ctx)
	defer cancelIter()

	var (
		g        errgroup.Group
		c        counters
		active   []*vuHandle
		draining atomic.Int64 // ramped down, still finishing an iteration
		nextID   = 1
		maxVUs   int
	)

	// Draining VUs still occupy a slot: new VUs start only once
	// active plus draining is below the target.
	scale := func(want int) {
		for len(active)+int(draining.Load()) < want {
			v := e.spawn(iterCtx, nextID)
			nextID++
			active = append(active, v)
			g.Go(func() error {
				e.loop(v, it, &c)
				v.exit(&draining)
				return nil
			})
		}
		for len(active) > want {
			v := active[len(active)-1]
			active = active[:len(active)-1]
			v.retire(&draining)
			close(v.stop)
			if e.cfg.GracefulRampDown > 0 {
				time.AfterFunc(e.cfg.GracefulRampDown, v.cancel)
			} else {
				v.cancel()
			}
		}
		running := len(active) + int(draining.Load())
		if running > maxVUs {
			maxVUs = running
		}
		e.obs.SetVUs(running)
	}

	start := time.Now()
	want, _ := e.cfg.Ramp.TargetAt(0)
	scale(want)

	e.logger.Info("ramp started",
		"stages", len(e.cfg.Ramp.Stages),
		"duration", e.cfg.Ramp.Total(),
		"max_vus", e.cfg.Ramp.MaxVUs(),
		"seed", e.cfg.Seed,
	)

	ticker := time.NewTicker(e.cfg.Tick)
	defer ticker.Stop()

	aborted := false

tick:
	for {
		select {
		case <-ctx.Done():
			aborted = true
			break tick

		case <-ticker.C:
			want, running := e.cfg.Ramp.TargetAt(time.Since(start))
			if !running {
				break tick
			}
			scale(want)
		}
	}

	// ---- drain ----

	for _, v := range active {
		close(v.stop)
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	grace := e.cfg.GracefulStop
	if aborted {
		grace = 0
	}

	if grace > 0 {
		timer := time.NewTimer(grace)
		select {
		case <-done:
			timer.Stop()
		case <-timer.C:
			e.logger.Warn("graceful stop expired, interrupting iterations", "grace", grace)
			cancelIter()
			<-done
		}
	} else {
		cancelIter()
		<-done
	}

	e.obs.SetVUs(0)

	st := Stats{
		Duration:    time.Since(start),
		Iterations:  c.iterations.Load(),
		Errored:     c.errored.Load(),
		Interrupted: c.interrupted.Load(),
		MaxVUs:      maxVUs,
		Aborted:     aborted,
	}

	e.logger.Info("ramp finished",
		"duration", st.Duration.Round(time.Millisecond),
		"iterations", st.Iterations,
		"errored", st.Errored,
		"interrupted", st.Interrupted,
		"aborted", st.Aborted,
	)

	return st, nil
}

func (e *Executor) spawn(parent context.Context, id int) *vuHandle {
	ctx, cancel := context.WithCancel(parent)
	return &vuHandle{
		VU: VU{
			ID:   id,
			Rand: rand.New(rand.NewSource(e.cfg.Seed + int64(id))),
		},
		ctx:    ctx,
		cancel: cancel,
		stop:   make(chan struct{}),
	}
}

// loop runs iterations back to back until the VU is stopped.
// A stop signal never cuts an iteration short; only ctx does.
func (e *Executor) loop(v *vuHandle, it Iteration, c *counters) {
	defer v.cancel()

	for {
		select {
		case <-v.stop:
			return
		case <-v.ctx.Done():
			return
		default:
		}

		t0 := time.Now()
		err := it(v.ctx, &v.VU)
		d := time.Since(t0)

		if v.ctx.Err() != nil {
			c.interrupted.Add(1)
			e.obs.ObserveIteration(d, ErrInterrupted)
			return
		}

		v.Iterations++
		c.iterations.Add(1)
		if err != nil {
			c.errored.Add(1)
		}
		e.obs.ObserveIteration(d, err)
	}
}

type nopObserver struct{}

func (nopObserver) SetVUs(int) {}
func (nopObserver) ObserveIteration(time.Duration, error) {}
