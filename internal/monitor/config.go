package monitor

import (
	"time"

	"github.com/angeloszaimis/website-monitor/internal/healthcheck"
)

const (
	DefaultWorkers        = 50
	DefaultRequestTimeout = 5 * time.Second
	DefaultRetryBackoff   = 100 * time.Millisecond
	DefaultPollInterval   = 100 * time.Millisecond
)

// Config controls a single monitoring run.
type Config struct {
	// Workers is the number of concurrent probes. Values below 1 mean 1, and
	// it never exceeds the number of distinct URLs in a run.
	Workers int

	// RequestTimeout bounds every probe. It is enforced by the prober.
	RequestTimeout time.Duration

	// MaxRetries is how many times a failed probe is retried, so a URL gets
	// at most MaxRetries+1 attempts.
	MaxRetries int

	// RetryBackoff is the base delay before a retry; retry n waits
	// RetryBackoff*n.
	RetryBackoff time.Duration

	// PollInterval is how long an idle worker waits for a job before it
	// checks for cancellation again.
	PollInterval time.Duration

	// MaxRedirects caps the redirects followed by the default HTTP prober.
	// Zero or less means healthcheck.DefaultMaxRedirects.
	MaxRedirects int
}

func DefaultConfig() Config {
	return Config{
		Workers:        DefaultWorkers,
		RequestTimeout: DefaultRequestTimeout,
		MaxRetries:     0,
		RetryBackoff:   DefaultRetryBackoff,
		PollInterval:   DefaultPollInterval,
		MaxRedirects:   healthcheck.DefaultMaxRedirects,
	}
}

// normalize fills unset fields and clamps Workers to [1, distinct].
// RequestTimeout is left alone so that an invalid one fails prober creation.
func (c Config) normalize(distinct int) Config {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Workers > distinct {
		c.Workers = distinct
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = healthcheck.DefaultMaxRedirects
	}
	return c
}

// backoff returns the delay before retrying a job that just failed on the
// given zero-based attempt.
func (c Config) backoff(attempt int) time.Duration {
	return c.RetryBackoff * time.Duration(attempt+1)
}
