// internal/scenario/builder.go
package scenario

import (
	cfg "github.com/tamzrod/ingress-loadgen/internal/config"
)

// Build constructs a Generator from validated, normalized config.
func Build(lg cfg.LoadgenConfig, client Doer, rec Recorder) (*Generator, error) {
	targets := make([]RouteTarget, 0, len(lg.Targets))
	for _, t := range lg.Targets {
		targets = append(targets, RouteTarget{
			Hostname: t.Hostname,
			Expected: t.Expected,
		})
	}

	return New(
		Config{
			Endpoint: lg.Endpoint,
			Targets:  targets,
		},
		client,
		rec,
	)
}
