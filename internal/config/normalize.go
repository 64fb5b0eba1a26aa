// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	lg := &cfg.Loadgen

	lg.Endpoint = strings.TrimRight(strings.TrimSpace(lg.Endpoint), "/")

	// Hostnames are matched case-insensitively by the ingress.
	// Expected bodies are compared after trimming, so store them trimmed.
	for i := range lg.Targets {
		t := &lg.Targets[i]
		t.Hostname = strings.ToLower(strings.TrimSpace(t.Hostname))
		t.Expected = strings.TrimSpace(t.Expected)
	}

	// ---- empty harness durations fall back to defaults ----

	if lg.GracefulRampDown == "" {
		lg.GracefulRampDown = DefaultGracefulRampDown
	}
	if lg.GracefulStop == "" {
		lg.GracefulStop = DefaultGracefulStop
	}
	if lg.Tick == "" {
		lg.Tick = DefaultTick
	}
	if lg.Timeout == "" {
		lg.Timeout = DefaultTimeout
	}
	if lg.Output.ProgressInterval == "" {
		lg.Output.ProgressInterval = DefaultProgress
	}
}
