// internal/report/text.go
package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const labelWidth = 32

// TextWriter prints a human summary: checks first, then the built-in metrics.
type TextWriter struct {
	Out io.Writer
}

func (w *TextWriter) Write(s Summary) error {
	var b strings.Builder
	m := s.Metrics

	// ---- checks ----

	b.WriteString("\n")
	for _, c := range m.Checks {
		if c.Fails == 0 {
			fmt.Fprintf(&b, "     ✓ %s\n", c.Name)
			continue
		}
		fmt.Fprintf(&b, "     ✗ %s\n", c.Name)
		fmt.Fprintf(&b, "      ↳  %s ✓ %d / ✗ %d\n", pct(c.Rate()), c.Passes, c.Fails)
	}
	b.WriteString("\n")

	// ---- built-in metrics ----

	passes, fails := m.ChecksTotals()
	checkRate := 0.0
	if passes+fails > 0 {
		checkRate = float64(passes) / float64(passes+fails)
	}
	line(&b, "checks", fmt.Sprintf("%s ✓ %d ✗ %d", pct(checkRate), passes, fails))

	d := m.Requests.Duration
	line(&b, "http_req_duration", fmt.Sprintf(
		"avg=%s min=%s med=%s max=%s p(90)=%s p(95)=%s p(99)=%s",
		dur(d.Avg), dur(d.Min), dur(d.Med), dur(d.Max), dur(d.P90), dur(d.P95), dur(d.P99),
	))

	failedReqs := uint64(m.Requests.Failed*float64(m.Requests.Count) + 0.5)
	line(&b, "http_req_failed", fmt.Sprintf(
		"%s ✓ %d ✗ %d",
		pct(m.Requests.Failed), failedReqs, m.Requests.Count-failedReqs,
	))
	line(&b, "http_reqs", fmt.Sprintf("%d %s", m.Requests.Count, perSecond(m.Requests.Count, s.Duration)))
	line(&b, "iterations", fmt.Sprintf("%d %s", m.Iterations, perSecond(m.Iterations, s.Duration)))
	line(&b, "iteration_duration", "avg="+dur(m.IterationAvg))
	if m.IterationsErrored > 0 || m.IterationsInterrupted > 0 {
		line(&b, "iterations_errored", fmt.Sprintf("%d", m.IterationsErrored))
		line(&b, "iterations_interrupted", fmt.Sprintf("%d", m.IterationsInterrupted))
	}
	line(&b, "vus_max", fmt.Sprintf("%d", m.VUsMax))

	b.WriteString("\n")
	status := "finished"
	if s.Aborted {
		status = "aborted"
	}
	fmt.Fprintf(&b, "     run %s in %s (seed %d)\n\n", status, s.Duration.Round(time.Millisecond), s.Seed)

	_, err := io.WriteString(w.Out, b.String())
	return err
}

func line(b *strings.Builder, name, value string) {
	dots := labelWidth - len(name)
	if dots < 3 {
		dots = 3
	}
	fmt.Fprintf(b, "     %s%s: %s\n", name, strings.Repeat(".", dots), value)
}

func pct(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

func perSecond(n uint64, d time.Duration) string {
	if d <= 0 {
		return "0/s"
	}
	return fmt.Sprintf("%.2f/s", float64(n)/d.Seconds())
}

// dur rounds to a readable precision without losing sub-millisecond values.
func dur(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond).String()
	default:
		return d.Round(time.Microsecond).String()
	}
}
