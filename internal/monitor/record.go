package monitor

import (
	"time"

	"github.com/angeloszaimis/website-monitor/internal/healthcheck"
)

// Job is one pending probe of URL. Attempt is zero-based.
type Job struct {
	URL     string
	Attempt int
}

// StatusRecord is the final outcome for one URL in a run.
type StatusRecord struct {
	URL        string
	Outcome    healthcheck.Outcome
	Elapsed    time.Duration
	ObservedAt time.Time
	// Attempts is the total number of probes made, including the last one.
	Attempts int
}

// Retries returns how many failed attempts preceded the final one.
func (r StatusRecord) Retries() int {
	if r.Attempts < 1 {
		return 0
	}
	return r.Attempts - 1
}
