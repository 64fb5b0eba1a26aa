// internal/harness/builder.go
package harness

import (
	"fmt"
	"log/slog"
	"time"

	cfg "github.com/tamzrod/ingress-loadgen/internal/config"
)

// BuildRamp converts the stage list into a Ramp.
// Assumes config has already passed validation.
func BuildRamp(lg cfg.LoadgenConfig) (Ramp, error) {
	r := Ramp{StartVUs: lg.StartVUs}
	for i, s := range lg.Stages {
		d, err := time.ParseDuration(s.Duration)
		if err != nil {
			return Ramp{}, fmt.Errorf("harness: stages[%d]: %w", i, err)
		}
		r.Stages = append(r.Stages, Stage{Duration: d, Target: s.Target})
	}
	return r, nil
}

// Build constructs an Executor from validated, normalized config.
func Build(lg cfg.LoadgenConfig, obs Observer, logger *slog.Logger) (*Executor, error) {
	ramp, err := BuildRamp(lg)
	if err != nil {
		return nil, err
	}

	rampDown, err := parseOptional("graceful_ramp_down", lg.GracefulRampDown)
	if err != nil {
		return nil, err
	}
	stop, err := parseOptional("graceful_stop", lg.GracefulStop)
	if err != nil {
		return nil, err
	}
	tick, err := parseOptional("tick", lg.Tick)
	if err != nil {
		return nil, err
	}

	return New(
		Config{
			Ramp:             ramp,
			GracefulRampDown: rampDown,
			GracefulStop:     stop,
			Tick:             tick,
			Seed:             lg.Seed,
		},
		obs,
		logger,
	)
}

func parseOptional(name, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("harness: %s: %w", name, err)
	}
	return d, nil
}
