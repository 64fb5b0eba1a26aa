// cmd/loadgen/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/ingress-loadgen/internal/config"
	"github.com/tamzrod/ingress-loadgen/internal/harness"
	"github.com/tamzrod/ingress-loadgen/internal/metrics"
	"github.com/tamzrod/ingress-loadgen/internal/report"
	"github.com/tamzrod/ingress-loadgen/internal/scenario"
)

// Exit codes.
const (
	exitOK           = 0
	exitRunError     = 1
	exitConfigError  = 2
	exitChecksFailed = 99
)

type options struct {
	configPath    string
	envFile       string
	seed          int64
	metricsAddr   string
	summaryExport string
	quiet         bool
	logLevel      string
}

func main() {
	var opts options
	pflag.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (built-in foo/bar scenario when empty)")
	pflag.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with LOADGEN_* overrides (ignored when missing)")
	pflag.Int64Var(&opts.seed, "seed", 0, "base random seed (0 = clock)")
	pflag.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics and /summary on this address")
	pflag.StringVar(&opts.summaryExport, "summary-export", "", "write the end-of-run summary as JSON to this file")
	pflag.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the text summary")
	pflag.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	pflag.Parse()

	logger := newLogger(os.Stderr, opts.logLevel)
	slog.SetDefault(logger)

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := loadConfig(opts, pflag.CommandLine.Changed)
	if err != nil {
		logger.Error("config failed", "err", err)
		os.Exit(exitConfigError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var stdout io.Writer = os.Stdout
	if opts.quiet {
		stdout = nil
	}

	code := run(ctx, cfg, logger, stdout)
	stop()
	os.Exit(code)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: "15:04:05",
	}))
}

// loadConfig applies, in order: defaults, config file, dotenv + environment,
// explicitly set flags. The result is validated and normalized.
func loadConfig(opts options, changed func(string) bool) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}

	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("env file %s: %w", opts.envFile, err)
		}
	}
	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	lg := &cfg.Loadgen
	if changed("seed") {
		lg.Seed = opts.seed
	}
	if changed("metrics-addr") {
		lg.Output.MetricsAddr = opts.metricsAddr
	}
	if changed("summary-export") {
		lg.Output.SummaryExport = opts.summaryExport
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) int {
	lg := cfg.Loadgen

	// --------------------
	// Build pipeline
	// --------------------

	collector := metrics.NewCollector()

	client, err := newClient(lg, collector)
	if err != nil {
		logger.Error("http client", "err", err)
		return exitConfigError
	}

	gen, err := scenario.Build(lg, client, collector)
	if err != nil {
		logger.Error("scenario build failed", "err", err)
		return exitConfigError
	}

	exec, err := harness.Build(lg, collector, logger)
	if err != nil {
		logger.Error("harness build failed", "err", err)
		return exitConfigError
	}

	progress, err := time.ParseDuration(lg.Output.ProgressInterval)
	if err != nil {
		logger.Error("progress interval", "err", err)
		return exitConfigError
	}

	logger.Info("load test starting",
		"endpoint", lg.Endpoint,
		"targets", len(gen.Targets()),
		"stages", len(lg.Stages),
	)

	// --------------------
	// Run
	// --------------------

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	started := time.Now()

	var st harness.Stats
	g.Go(func() error {
		defer close(done)
		var err error
		st, err = exec.Run(gctx, func(ctx context.Context, vu *harness.VU) error {
			return gen.RunIteration(ctx, vu.Rand)
		})
		return err
	})

	// Progress reporter (observer only, owns no state)
	if progress > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(progress)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return nil
				case <-ticker.C:
					logProgress(logger, collector.Snapshot())
				}
			}
		})
	}

	// Optional live metrics endpoint
	if lg.Output.MetricsAddr != "" {
		srv := metrics.NewServer(lg.Output.MetricsAddr, collector)
		g.Go(func() error {
			logger.Info("metrics server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-done:
			case <-gctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	runErr := g.Wait()
	if runErr != nil {
		logger.Error("run failed", "err", runErr)
	}

	// --------------------
	// Summary
	// --------------------

	snap := collector.Snapshot()
	sum := report.New(started, exec.Seed(), st, snap)
	if err := report.Build(lg.Output, stdout).Write(sum); err != nil {
		logger.Error("summary write failed", "err", err)
		if runErr == nil {
			runErr = err
		}
	}

	switch {
	case runErr != nil:
		return exitRunError
	case lg.Output.FailOnChecks && snap.ChecksFailed():
		logger.Warn("checks failed", "fail_on_checks", true)
		return exitChecksFailed
	default:
		return exitOK
	}
}

// newClient builds the shared HTTP client. Every round trip is recorded by
// the collector; the scenario never sees the instrumentation.
func newClient(lg config.LoadgenConfig, sink metrics.RequestSink) (*http.Client, error) {
	timeout, err := time.ParseDuration(lg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("timeout %q: %w", lg.Timeout, err)
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	ramp, err := harness.BuildRamp(lg)
	if err != nil {
		return nil, err
	}
	if n := ramp.MaxVUs(); n > base.MaxIdleConnsPerHost {
		base.MaxIdleConnsPerHost = n
	}

	return &http.Client{
		Transport: &metrics.Transport{Base: base, Sink: sink},
		Timeout:   timeout,
	}, nil
}

func logProgress(logger *slog.Logger, s metrics.Snapshot) {
	passes, fails := s.ChecksTotals()
	logger.Info("progress",
		"elapsed", s.Elapsed.Round(time.Second),
		"vus", s.VUs,
		"iterations", s.Iterations,
		"reqs", s.Requests.Count,
		"checks_passed", passes,
		"checks_failed", fails,
		"p95", s.Requests.Duration.P95.Round(time.Microsecond),
	)
}
