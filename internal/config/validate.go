// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	lg := cfg.Loadgen

	// ------------------------------------------------------------
	// ENDPOINT
	// ------------------------------------------------------------

	u, err := url.Parse(strings.TrimSpace(lg.Endpoint))
	if err != nil {
		return fmt.Errorf("endpoint %q: %w", lg.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint %q: scheme must be http or https", lg.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint %q: host required", lg.Endpoint)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("endpoint %q: query parameters are not allowed", lg.Endpoint)
	}

	// ------------------------------------------------------------
	// ROUTE TARGETS
	// ------------------------------------------------------------

	if len(lg.Targets) == 0 {
		return errors.New("targets: at least one target required")
	}

	seen := make(map[string]int)
	for i, t := range lg.Targets {
		host := strings.ToLower(strings.TrimSpace(t.Hostname))
		if host == "" {
			return fmt.Errorf("targets[%d]: hostname required", i)
		}
		if strings.ContainsAny(host, " /") {
			return fmt.Errorf("targets[%d]: hostname %q is not a bare host", i, t.Hostname)
		}
		if strings.TrimSpace(t.Expected) == "" {
			return fmt.Errorf("targets[%d]: expected body required", i)
		}
		if prev, exists := seen[host]; exists {
			return fmt.Errorf(
				"targets: hostname %q used by targets[%d] and targets[%d]",
				host,
				prev,
				i,
			)
		}
		seen[host] = i
	}

	// ------------------------------------------------------------
	// RAMP
	// ------------------------------------------------------------

	if len(lg.Stages) == 0 {
		return errors.New("stages: at least one stage required")
	}
	if lg.StartVUs < 0 {
		return fmt.Errorf("start_vus: must be >= 0, got %d", lg.StartVUs)
	}

	var total time.Duration
	for i, s := range lg.Stages {
		d, err := time.ParseDuration(s.Duration)
		if err != nil {
			return fmt.Errorf("stages[%d]: duration %q: %w", i, s.Duration, err)
		}
		if d < 0 {
			return fmt.Errorf("stages[%d]: duration must be >= 0, got %s", i, d)
		}
		if s.Target < 0 {
			return fmt.Errorf("stages[%d]: target must be >= 0, got %d", i, s.Target)
		}
		total += d
	}
	if total <= 0 {
		return errors.New("stages: total duration must be > 0")
	}

	// ------------------------------------------------------------
	// HARNESS DURATIONS
	// ------------------------------------------------------------

	optional := []struct {
		name  string
		value string
	}{
		{"graceful_ramp_down", lg.GracefulRampDown},
		{"graceful_stop", lg.GracefulStop},
		{"timeout", lg.Timeout},
		{"output.progress_interval", lg.Output.ProgressInterval},
	}
	for _, o := range optional {
		if o.value == "" {
			continue
		}
		d, err := time.ParseDuration(o.value)
		if err != nil {
			return fmt.Errorf("%s %q: %w", o.name, o.value, err)
		}
		if d < 0 {
			return fmt.Errorf("%s: must be >= 0, got %s", o.name, d)
		}
	}

	if lg.Tick != "" {
		d, err := time.ParseDuration(lg.Tick)
		if err != nil {
			return fmt.Errorf("tick %q: %w", lg.Tick, err)
		}
		if d <= 0 {
			return fmt.Errorf("tick: must be > 0, got %s", d)
		}
	}

	return nil
}
