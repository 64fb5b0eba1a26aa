// cmd/loadgen/main_test.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tamzrod/ingress-loadgen/internal/config"
	"github.com/tamzrod/ingress-loadgen/internal/metrics"
	"github.com/tamzrod/ingress-loadgen/internal/report"
)

func none(string) bool { return false }

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv(config.EnvEndpoint, "")

	cfg, err := loadConfig(options{}, none)
	if err != nil {
		t.Fatalf("loadConfig err=%v", err)
	}
	if len(cfg.Loadgen.Targets) != 2 || len(cfg.Loadgen.Stages) != 5 {
		t.Fatalf("expected built-in scenario, got %+v", cfg.Loadgen)
	}
}

func TestLoadConfig_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lg.yaml")
	yaml := `
loadgen:
  endpoint: http://file.example/
  stages:
    - { duration: 1s, target: 1 }
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("LOADGEN_SEED=7\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	// godotenv never overrides variables that are already set
	t.Setenv(config.EnvSeed, "")
	os.Unsetenv(config.EnvSeed)

	opts := options{
		configPath:    path,
		envFile:       envFile,
		summaryExport: "out.json",
	}
	changed := func(name string) bool { return name == "summary-export" }

	cfg, err := loadConfig(opts, changed)
	if err != nil {
		t.Fatalf("loadConfig err=%v", err)
	}

	lg := cfg.Loadgen
	if lg.Endpoint != "http://file.example" {
		t.Fatalf("endpoint not normalized: %q", lg.Endpoint)
	}
	if lg.Seed != 7 {
		t.Fatalf("seed from env file: got %d", lg.Seed)
	}
	if lg.Output.SummaryExport != "out.json" {
		t.Fatalf("flag override lost: %q", lg.Output.SummaryExport)
	}
	if len(lg.Stages) != 1 {
		t.Fatalf("stages from file: %+v", lg.Stages)
	}
}

func TestLoadConfig_MissingEnvFileIgnored(t *testing.T) {
	opts := options{envFile: filepath.Join(t.TempDir(), "nope.env")}

	if _, err := loadConfig(opts, none); err != nil {
		t.Fatalf("missing env file should be ignored, err=%v", err)
	}
}

func TestLoadConfig_InvalidRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("loadgen:\n  stages: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := loadConfig(options{configPath: path}, none)
	if err == nil || !strings.Contains(err.Error(), "validation") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "chatty")

	logger.Debug("hidden")
	logger.Info("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestNewClient_SizesIdlePool(t *testing.T) {
	lg := config.Default().Loadgen

	c, err := newClient(lg, nil)
	if err != nil {
		t.Fatalf("newClient err=%v", err)
	}
	if c.Timeout != time.Minute {
		t.Fatalf("timeout=%s", c.Timeout)
	}

	tr, ok := c.Transport.(*metrics.Transport)
	if !ok {
		t.Fatalf("transport not instrumented: %T", c.Transport)
	}
	base := tr.Base.(*http.Transport)
	if base.MaxIdleConnsPerHost != 30 {
		t.Fatalf("MaxIdleConnsPerHost=%d, want peak VUs", base.MaxIdleConnsPerHost)
	}
}

// ---- run ----

// fooOnlyBackend answers "foo" whatever the Host, like a broken ingress rule.
func fooOnlyBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "foo")
	}))
	t.Cleanup(srv.Close)
	return srv
}

// slowBackend routes correctly but takes delay per request.
func slowBackend(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(delay):
		}
		fmt.Fprintln(w, strings.TrimSuffix(r.Host, ".localhost"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runConfig(t *testing.T, endpoint string) *config.Config {
	t.Helper()
	cfg := config.Default()
	lg := &cfg.Loadgen
	lg.Endpoint = endpoint
	lg.StartVUs = 2
	lg.Stages = []config.StageConfig{{Duration: "150ms", Target: 2}}
	lg.GracefulRampDown = "50ms"
	lg.GracefulStop = "1s"
	lg.Tick = "10ms"
	lg.Seed = 1
	lg.Output.ProgressInterval = "0s"

	if err := config.Validate(cfg); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	config.Normalize(cfg)
	return cfg
}

func quietLogger() *slog.Logger { return newLogger(io.Discard, "error") }

func readSummary(t *testing.T, path string) report.Summary {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var s report.Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	return s
}

func TestRun_FailedChecksDoNotFailTheRun(t *testing.T) {
	cfg := runConfig(t, fooOnlyBackend(t).URL)

	var out bytes.Buffer
	if code := run(context.Background(), cfg, quietLogger(), &out); code != exitOK {
		t.Fatalf("exit=%d want %d", code, exitOK)
	}
	if !strings.Contains(out.String(), "✗ response is correct") {
		t.Fatalf("misrouting not reported:\n%s", out.String())
	}
}

func TestRun_FailOnChecksExits99(t *testing.T) {
	cfg := runConfig(t, fooOnlyBackend(t).URL)
	cfg.Loadgen.Output.FailOnChecks = true

	if code := run(context.Background(), cfg, quietLogger(), nil); code != exitChecksFailed {
		t.Fatalf("exit=%d want %d", code, exitChecksFailed)
	}
}

func TestRun_UnwritableSummaryExport(t *testing.T) {
	cfg := runConfig(t, slowBackend(t, 0).URL)
	cfg.Loadgen.Output.SummaryExport = filepath.Join(t.TempDir(), "missing", "summary.json")

	if code := run(context.Background(), cfg, quietLogger(), nil); code != exitRunError {
		t.Fatalf("exit=%d want %d", code, exitRunError)
	}
}

func TestRun_BadProgressInterval(t *testing.T) {
	cfg := runConfig(t, slowBackend(t, 0).URL)
	cfg.Loadgen.Output.ProgressInterval = "soon"

	if code := run(context.Background(), cfg, quietLogger(), nil); code != exitConfigError {
		t.Fatalf("exit=%d want %d", code, exitConfigError)
	}
}

func TestRun_HealthyBackendAllChecksPass(t *testing.T) {
	cfg := runConfig(t, slowBackend(t, 0).URL)
	cfg.Loadgen.Output.FailOnChecks = true
	path := filepath.Join(t.TempDir(), "summary.json")
	cfg.Loadgen.Output.SummaryExport = path

	if code := run(context.Background(), cfg, quietLogger(), nil); code != exitOK {
		t.Fatalf("exit=%d want %d", code, exitOK)
	}

	s := readSummary(t, path)
	passes, fails := s.Metrics.ChecksTotals()
	if passes == 0 || fails != 0 {
		t.Fatalf("passes=%d fails=%d", passes, fails)
	}
	if s.Metrics.Requests.Count == 0 || s.Metrics.Iterations == 0 {
		t.Fatalf("nothing recorded: %+v", s.Metrics)
	}
	if s.Seed != 1 {
		t.Fatalf("seed=%d", s.Seed)
	}
}

// Iterations cut short by the run itself must not count as failed checks
// against a backend that is merely slow.
func TestRun_CancelledRunRecordsNoFailedChecks(t *testing.T) {
	cfg := runConfig(t, slowBackend(t, 200*time.Millisecond).URL)
	cfg.Loadgen.Stages = []config.StageConfig{{Duration: "5s", Target: 2}}
	cfg.Loadgen.Output.FailOnChecks = true
	path := filepath.Join(t.TempDir(), "summary.json")
	cfg.Loadgen.Output.SummaryExport = path

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if code := run(ctx, cfg, quietLogger(), nil); code != exitOK {
		t.Fatalf("exit=%d want %d", code, exitOK)
	}

	s := readSummary(t, path)
	if !s.Aborted {
		t.Fatalf("expected aborted run")
	}
	if _, fails := s.Metrics.ChecksTotals(); fails != 0 {
		t.Fatalf("interrupted iterations recorded %d failed checks: %+v", fails, s.Metrics.Checks)
	}
	if s.Metrics.IterationsInterrupted == 0 {
		t.Fatalf("expected interrupted iterations")
	}
}

func TestRun_GracefulStopExpiryRecordsNoFailedChecks(t *testing.T) {
	cfg := runConfig(t, slowBackend(t, 200*time.Millisecond).URL)
	cfg.Loadgen.Stages = []config.StageConfig{{Duration: "50ms", Target: 2}}
	cfg.Loadgen.GracefulStop = "10ms"
	cfg.Loadgen.Output.FailOnChecks = true
	path := filepath.Join(t.TempDir(), "summary.json")
	cfg.Loadgen.Output.SummaryExport = path

	if code := run(context.Background(), cfg, quietLogger(), nil); code != exitOK {
		t.Fatalf("exit=%d want %d", code, exitOK)
	}

	s := readSummary(t, path)
	if _, fails := s.Metrics.ChecksTotals(); fails != 0 {
		t.Fatalf("interrupted iterations recorded %d failed checks: %+v", fails, s.Metrics.Checks)
	}
	if s.Metrics.IterationsInterrupted == 0 {
		t.Fatalf("expected interrupted iterations")
	}
}
