// internal/report/types.go
package report

import (
	"time"

	"github.com/tamzrod/ingress-loadgen/internal/harness"
	"github.com/tamzrod/ingress-loadgen/internal/metrics"
)

// Summary is the end-of-run report handed to every Writer.
type Summary struct {
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Seed      int64            `json:"seed"`
	Aborted   bool             `json:"aborted"`
	Metrics   metrics.Snapshot `json:"metrics"`
}

// New assembles a Summary from executor stats and a collector snapshot.
func New(started time.Time, seed int64, st harness.Stats, snap metrics.Snapshot) Summary {
	return Summary{
		StartedAt: started,
		Duration:  st.Duration,
		Seed:      seed,
		Aborted:   st.Aborted,
		Metrics:   snap,
	}
}

// Writer delivers a summary somewhere.
type Writer interface {
	Write(s Summary) error
}
