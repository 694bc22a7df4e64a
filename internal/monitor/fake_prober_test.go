package monitor_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/angeloszaimis/website-monitor/internal/healthcheck"
)

// scriptedProber answers each URL from a per-URL script, one entry per
// attempt; the last entry repeats. URLs without a script succeed with 200.
type scriptedProber struct {
	mutex  sync.Mutex
	script map[string][]healthcheck.Outcome
	calls  map[string][]time.Time
	delay  time.Duration
	built  atomic.Int32
}

func newScriptedProber(script map[string][]healthcheck.Outcome) *scriptedProber {
	if script == nil {
		script = map[string][]healthcheck.Outcome{}
	}
	return &scriptedProber{
		script: script,
		calls:  make(map[string][]time.Time),
	}
}

func (s *scriptedProber) Check(ctx context.Context, rawURL string) healthcheck.Outcome {
	s.mutex.Lock()
	attempt := len(s.calls[rawURL])
	s.calls[rawURL] = append(s.calls[rawURL], time.Now())
	steps := s.script[rawURL]
	s.mutex.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	if len(steps) == 0 {
		return healthcheck.Success(200)
	}
	if attempt >= len(steps) {
		attempt = len(steps) - 1
	}
	return steps[attempt]
}

func (s *scriptedProber) factory() healthcheck.Factory {
	return func() (healthcheck.Prober, error) {
		s.built.Add(1)
		return s, nil
	}
}

func (s *scriptedProber) callTimes(rawURL string) []time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]time.Time(nil), s.calls[rawURL]...)
}

func (s *scriptedProber) totalCalls() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	total := 0
	for _, c := range s.calls {
		total += len(c)
	}
	return total
}

func repeat(o healthcheck.Outcome, n int) []healthcheck.Outcome {
	out := make([]healthcheck.Outcome, n)
	for i := range out {
		out[i] = o
	}
	return out
}
