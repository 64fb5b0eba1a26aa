// internal/config/config.go
package config

type Config struct {
	Loadgen LoadgenConfig `yaml:"loadgen"`
}

type LoadgenConfig struct {
	// Ingress controller address. All requests go here; routing is by Host.
	Endpoint string         `yaml:"endpoint"`
	Targets  []TargetConfig `yaml:"targets"`
	Stages   []StageConfig  `yaml:"stages"`

	StartVUs         int    `yaml:"start_vus"`
	GracefulRampDown string `yaml:"graceful_ramp_down"`
	GracefulStop     string `yaml:"graceful_stop"`
	Tick             string `yaml:"tick"`

	// Client-side request timeout. Harness policy, not scenario behavior.
	Timeout string `yaml:"timeout"`

	// 0 => seeded from the clock
	Seed int64 `yaml:"seed"`

	Output OutputConfig `yaml:"output"`
}

// ---- TARGET ----

type TargetConfig struct {
	Hostname string `yaml:"hostname"`
	Expected string `yaml:"expected"`
}

// ---- RAMP ----

type StageConfig struct {
	Duration string `yaml:"duration"` // Go duration syntax: 30s, 1m, 1m30s
	Target   int    `yaml:"target"`
}

// ---- OUTPUT ----

type OutputConfig struct {
	SummaryExport    string `yaml:"summary_export"` // JSON file, empty => off
	MetricsAddr      string `yaml:"metrics_addr"`   // listen addr, empty => off
	ProgressInterval string `yaml:"progress_interval"`
	FailOnChecks     bool   `yaml:"fail_on_checks"`
}
