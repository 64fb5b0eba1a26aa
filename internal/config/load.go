// internal/config/load.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the cluster-internal ingress controller service.
// The target hostnames do not resolve inside the cluster, so every request
// is sent here and steered by its Host header.
const DefaultEndpoint = "http://ingress-nginx-controller.ingress-nginx.svc.cluster.local"

const (
	DefaultGracefulRampDown = "30s"
	DefaultGracefulStop     = "30s"
	DefaultTick             = "100ms"
	DefaultTimeout          = "60s"
	DefaultProgress         = "10s"
)

// Default returns the built-in scenario: foo/bar split, 5.5 minute ramp.
func Default() *Config {
	return &Config{
		Loadgen: LoadgenConfig{
			Endpoint: DefaultEndpoint,
			Targets: []TargetConfig{
				{Hostname: "foo.localhost", Expected: "foo"},
				{Hostname: "bar.localhost", Expected: "bar"},
			},
			Stages: []StageConfig{
				{Duration: "30s", Target: 10},
				{Duration: "1m", Target: 20},
				{Duration: "1m", Target: 30},
				{Duration: "2m", Target: 30},
				{Duration: "1m", Target: 0},
			},
			GracefulRampDown: DefaultGracefulRampDown,
			GracefulStop:     DefaultGracefulStop,
			Tick:             DefaultTick,
			Timeout:          DefaultTimeout,
			Output: OutputConfig{
				ProgressInterval: DefaultProgress,
			},
		},
	}
}

// Load reads a YAML file on top of Default().
// Lists in the file replace the default lists; they are not merged.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML bytes on top of Default().
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

// Environment overrides. Harness settings only; the scenario itself reads none.
const (
	EnvEndpoint      = "LOADGEN_ENDPOINT"
	EnvSeed          = "LOADGEN_SEED"
	EnvMetricsAddr   = "LOADGEN_METRICS_ADDR"
	EnvSummaryExport = "LOADGEN_SUMMARY_EXPORT"
)

// ApplyEnv overlays environment values using lookup (os.LookupEnv in production).
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}
	lg := &cfg.Loadgen

	if v, ok := lookup(EnvEndpoint); ok && v != "" {
		lg.Endpoint = v
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvSeed, v, err)
		}
		lg.Seed = seed
	}
	if v, ok := lookup(EnvMetricsAddr); ok {
		lg.Output.MetricsAddr = v
	}
	if v, ok := lookup(EnvSummaryExport); ok {
		lg.Output.SummaryExport = v
	}
	return nil
}
