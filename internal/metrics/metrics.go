package metrics

import (
	"sort"
	"sync"
	"time"
)

const maxSamples = 1000

// Result is the final outcome recorded for a target in a run.
type Result struct {
	Success    bool
	StatusCode int
	Reason     string
	Latency    time.Duration
	Attempts   int
	ObservedAt time.Time
}

type Metrics struct {
	mutex       sync.RWMutex
	startTime   time.Time
	runsStarted int64
	runsDone    int64
	lastRunID   string
	lastRunTime time.Duration
	lastRecords int64
	lastTargets int64
	targets     map[string]*targetStats
}

type targetStats struct {
	attempts  int64
	retries   int64
	successes int64
	failures  int64
	latencies []time.Duration
	last      Result
	hasLast   bool
}

type Snapshot struct {
	Uptime          time.Duration            `json:"uptime"`
	RunsStarted     int64                    `json:"runs_started"`
	RunsCompleted   int64                    `json:"runs_completed"`
	LastRunID       string                   `json:"last_run_id,omitempty"`
	LastRunDuration time.Duration            `json:"last_run_duration"`
	LastRunTargets  int64                    `json:"last_run_targets"`
	LastRunRecords  int64                    `json:"last_run_records"`
	Targets         map[string]TargetMetrics `json:"targets"`
}

type TargetMetrics struct {
	Attempts    int64         `json:"attempts"`
	Retries     int64         `json:"retries"`
	Successes   int64         `json:"successes"`
	Failures    int64         `json:"failures"`
	Up          bool          `json:"up"`
	LastStatus  int           `json:"last_status,omitempty"`
	LastReason  string        `json:"last_reason,omitempty"`
	LastLatency time.Duration `json:"last_latency"`
	LastSeen    time.Time     `json:"last_seen"`
	AvgLatency  time.Duration `json:"avg_latency"`
	P50Latency  time.Duration `json:"p50_latency"`
	P95Latency  time.Duration `json:"p95_latency"`
	P99Latency  time.Duration `json:"p99_latency"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
		targets:   make(map[string]*targetStats),
	}
}

func (m *Metrics) StartRun(runID string, targets int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.runsStarted++
	m.lastRunID = runID
	m.lastTargets = int64(targets)
}

func (m *Metrics) FinishRun(runID string, records int, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.runsDone++
	m.lastRunID = runID
	m.lastRecords = int64(records)
	m.lastRunTime = duration
}

// RecordAttempt counts one probe and keeps its latency for percentiles.
func (m *Metrics) RecordAttempt(target string, latency time.Duration, success bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	ts := m.target(target)
	ts.attempts++
	ts.latencies = append(ts.latencies, latency)
	if len(ts.latencies) > maxSamples {
		ts.latencies = ts.latencies[1:]
	}
}

func (m *Metrics) RecordRetry(target string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.target(target).retries++
}

// RecordResult stores the final record of target for the current run.
func (m *Metrics) RecordResult(target string, result Result) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	ts := m.target(target)
	if result.Success {
		ts.successes++
	} else {
		ts.failures++
	}
	ts.last = result
	ts.hasLast = true
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:          time.Since(m.startTime),
		RunsStarted:     m.runsStarted,
		RunsCompleted:   m.runsDone,
		LastRunID:       m.lastRunID,
		LastRunDuration: m.lastRunTime,
		LastRunTargets:  m.lastTargets,
		LastRunRecords:  m.lastRecords,
		Targets:         make(map[string]TargetMetrics, len(m.targets)),
	}

	for target, ts := range m.targets {
		tm := TargetMetrics{
			Attempts:  ts.attempts,
			Retries:   ts.retries,
			Successes: ts.successes,
			Failures:  ts.failures,
		}

		if ts.hasLast {
			tm.Up = ts.last.Success
			tm.LastStatus = ts.last.StatusCode
			tm.LastReason = ts.last.Reason
			tm.LastLatency = ts.last.Latency
			tm.LastSeen = ts.last.ObservedAt
		}

		if len(ts.latencies) > 0 {
			sorted := make([]time.Duration, len(ts.latencies))
			copy(sorted, ts.latencies)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			tm.AvgLatency = average(sorted)
			tm.P50Latency = percentile(sorted, 0.50)
			tm.P95Latency = percentile(sorted, 0.95)
			tm.P99Latency = percentile(sorted, 0.99)
		}

		snap.Targets[target] = tm
	}

	return snap
}

// target must be called with the write lock held.
func (m *Metrics) target(url string) *targetStats {
	ts, ok := m.targets[url]
	if !ok {
		ts = &targetStats{}
		m.targets[url] = ts
	}
	return ts
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
