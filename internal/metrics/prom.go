// internal/metrics/prom.go
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "loadgen"

type promMetrics struct {
	checks     *prometheus.CounterVec
	reqs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	iterations *prometheus.CounterVec
	vus        prometheus.Gauge
}

func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	f := promauto.With(reg)

	return &promMetrics{
		checks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Check results by check name and outcome.",
		}, []string{"check", "result"}),

		reqs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_reqs_total",
			Help:      "HTTP requests by response status (0 = no response).",
		}, []string{"status"}),

		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_req_duration_seconds",
			Help:      "Request duration including body, by Host header.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"host"}),

		iterations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "VU iterations by result (ok, error, interrupted).",
		}, []string{"result"}),

		vus: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vus",
			Help:      "Currently active virtual users.",
		}),
	}
}

func (p *promMetrics) check(name string, passed bool) {
	result := "fail"
	if passed {
		result = "pass"
	}
	p.checks.WithLabelValues(name, result).Inc()
}

func (p *promMetrics) request(s RequestSample) {
	p.reqs.WithLabelValues(strconv.Itoa(s.Status)).Inc()
	p.duration.WithLabelValues(s.Host).Observe(s.Latency.Seconds())
}
