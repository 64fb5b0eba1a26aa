// internal/scenario/generator.go
package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
)

// Doer abstracts the HTTP client the generator needs.
// *http.Client satisfies it; connection reuse is the client's business.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config is the minimal runtime config the generator needs.
type Config struct {
	Endpoint string
	Targets  []RouteTarget
}

// Generator is the traffic generator: one GET per iteration, two checks.
// It holds only immutable data and is safe for concurrent use.
type Generator struct {
	endpoint string
	targets  []RouteTarget
	client   Doer
	rec      Recorder
}

// New creates a generator with immutable config.
func New(cfg Config, client Doer, rec Recorder) (*Generator, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("scenario: invalid endpoint %q", cfg.Endpoint)
	}
	if len(cfg.Targets) == 0 {
		return nil, errors.New("scenario: at least one target required")
	}
	if client == nil {
		return nil, errors.New("scenario: http client required")
	}
	if rec == nil {
		return nil, errors.New("scenario: recorder required")
	}

	targets := make([]RouteTarget, len(cfg.Targets))
	copy(targets, cfg.Targets)

	return &Generator{
		endpoint: cfg.Endpoint,
		targets:  targets,
		client:   client,
		rec:      rec,
	}, nil
}

// Targets returns a copy of the route table.
func (g *Generator) Targets() []RouteTarget {
	out := make([]RouteTarget, len(g.targets))
	copy(out, g.targets)
	return out
}

// Pick draws one target uniformly. Independent per call.
func (g *Generator) Pick(rng *rand.Rand) RouteTarget {
	return g.targets[rng.Intn(len(g.targets))]
}

// RunIteration performs exactly one iteration.
// Both checks are always recorded. A transport error is returned after the
// checks so the caller can count the iteration as errored; nothing is retried.
// The one exception is cancellation of ctx: the caller stopped the iteration,
// the backend said nothing, so no check is recorded and ctx.Err() is returned.
func (g *Generator) RunIteration(ctx context.Context, rng *rand.Rand) error {
	target := g.Pick(rng)

	out, err := g.Fetch(ctx, target)
	if cerr := ctx.Err(); cerr != nil {
		return fmt.Errorf("scenario: iteration cancelled (host=%s): %w", target.Hostname, cerr)
	}
	Evaluate(g.rec, out, target)

	return err
}

// Fetch issues the GET for target and returns the outcome.
func (g *Generator) Fetch(ctx context.Context, target RouteTarget) (Outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint, nil)
	if err != nil {
		return Outcome{}, fmt.Errorf("scenario: build request: %w", err)
	}
	// net/http ignores Header["Host"]; req.Host is what goes on the wire.
	req.Host = target.Hostname

	resp, err := g.client.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("scenario: GET %s (host=%s): %w", g.endpoint, target.Hostname, err)
	}
	defer resp.Body.Close()

	out := Outcome{Status: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	out.Body = string(body)
	if err != nil {
		return out, fmt.Errorf("scenario: read body (host=%s): %w", target.Hostname, err)
	}

	return out, nil
}
