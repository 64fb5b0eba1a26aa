// internal/metrics/requests.go
package metrics

import (
	"sync"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

const attackName = "loadgen"

// RequestSample is one finished HTTP round trip.
// Status is 0 when no response was received.
type RequestSample struct {
	Host    string
	Status  int
	Start   time.Time
	Latency time.Duration // until the body was fully read or closed
	BytesIn int64
	Err     error
}

// RequestSink receives request samples. Implementations must be concurrency-safe.
type RequestSink interface {
	ObserveRequest(s RequestSample)
}

// LatencyStats mirrors the http_req_duration trend.
type LatencyStats struct {
	Avg time.Duration `json:"avg"`
	Min time.Duration `json:"min"`
	Med time.Duration `json:"med"`
	Max time.Duration `json:"max"`
	P90 time.Duration `json:"p90"`
	P95 time.Duration `json:"p95"`
	P99 time.Duration `json:"p99"`
}

// RequestStats is a point-in-time view of all request samples.
type RequestStats struct {
	Count       uint64         `json:"count"`
	Rate        float64        `json:"rate"`   // requests per second
	Failed      float64        `json:"failed"` // fraction outside 2xx/3xx, errors included
	BytesIn     uint64         `json:"bytes_in"`
	Duration    LatencyStats   `json:"duration"`
	StatusCodes map[string]int `json:"status_codes"`
	Errors      []string       `json:"errors,omitempty"`
}

// Requests aggregates samples with vegeta's metrics engine.
type Requests struct {
	mu sync.Mutex
	m  vegeta.Metrics
}

func NewRequests() *Requests {
	return &Requests{}
}

func (r *Requests) Add(s RequestSample) {
	res := vegeta.Result{
		Attack:    attackName,
		Code:      uint16(s.Status),
		Timestamp: s.Start,
		Latency:   s.Latency,
	}
	if s.BytesIn > 0 {
		res.BytesIn = uint64(s.BytesIn)
	}
	if s.Err != nil {
		res.Error = s.Err.Error()
	}

	r.mu.Lock()
	r.m.Add(&res)
	r.mu.Unlock()
}

// Stats closes the running metrics and copies them out.
// Adding more samples afterwards is allowed.
func (r *Requests) Stats() RequestStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.m.Requests == 0 {
		return RequestStats{StatusCodes: map[string]int{}}
	}

	r.m.Close()

	codes := make(map[string]int, len(r.m.StatusCodes))
	for k, v := range r.m.StatusCodes {
		codes[k] = v
	}
	errs := append([]string(nil), r.m.Errors...)

	return RequestStats{
		Count:   r.m.Requests,
		Rate:    r.m.Rate,
		Failed:  1 - r.m.Success,
		BytesIn: r.m.BytesIn.Total,
		Duration: LatencyStats{
			Avg: r.m.Latencies.Mean,
			Min: r.m.Latencies.Min,
			Med: r.m.Latencies.P50,
			Max: r.m.Latencies.Max,
			P90: r.m.Latencies.P90,
			P95: r.m.Latencies.P95,
			P99: r.m.Latencies.P99,
		},
		StatusCodes: codes,
		Errors:      errs,
	}
}
