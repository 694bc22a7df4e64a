package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angeloszaimis/website-monitor/internal/cancellation"
	"github.com/angeloszaimis/website-monitor/internal/healthcheck"
	"github.com/angeloszaimis/website-monitor/internal/metrics"
	"github.com/angeloszaimis/website-monitor/internal/queue"
)

var ErrInvalidInterval = errors.New("watch interval must be positive")

// Monitor checks batches of URLs with a bounded pool of workers.
type Monitor struct {
	cfg       Config
	logger    *slog.Logger
	newProber healthcheck.Factory
	now       func() time.Time
	events    chan<- metrics.Event
}

type Option func(*Monitor)

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// WithProberFactory replaces the default HTTP prober.
func WithProberFactory(factory healthcheck.Factory) Option {
	return func(m *Monitor) {
		m.newProber = factory
	}
}

// WithClock sets the source of StatusRecord.ObservedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithEvents makes the monitor publish metric events on ch. Sends never
// block; events are dropped when ch is full.
func WithEvents(ch chan<- metrics.Event) Option {
	return func(m *Monitor) {
		m.events = ch
	}
}

func New(cfg Config, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Once checks urls with DefaultConfig and the HTTP prober.
func Once(urls []string) ([]StatusRecord, error) {
	return New(DefaultConfig()).Run(urls, nil)
}

// Run probes every distinct URL in urls and returns one record per URL in
// the order the records arrived.
//
// If token is nil, a token private to this run is used. Signaling token
// stops the run early: probes already in flight finish and are reported,
// URLs still queued produce no record. Run signals token itself once all
// records are in, so a token cannot be reused across runs.
//
// The only error Run returns is a failure to build the probers, which
// happens before any probe is sent.
func (m *Monitor) Run(urls []string, token *cancellation.Token) ([]StatusRecord, error) {
	targets := distinct(urls)
	if len(targets) == 0 {
		return []StatusRecord{}, nil
	}

	if token == nil {
		token = cancellation.New()
	}

	cfg := m.cfg.normalize(len(targets))

	probers, err := m.buildProbers(cfg)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := m.logger.With(slog.String("run_id", runID))
	started := time.Now()

	logger.Info("Run started",
		slog.Int("targets", len(targets)),
		slog.Int("workers", cfg.Workers),
		slog.Int("max_retries", cfg.MaxRetries),
		slog.Duration("request_timeout", cfg.RequestTimeout))

	m.emit(metrics.Event{
		Type:      metrics.EventRunStarted,
		Timestamp: started,
		RunID:     runID,
		Targets:   len(targets),
	})

	jobs := queue.New[Job]()
	for _, target := range targets {
		jobs.Push(Job{URL: target})
	}

	// Room for one record per URL, so no worker blocks on a send.
	results := make(chan StatusRecord, len(targets))

	var wg sync.WaitGroup
	for i, prober := range probers {
		w := &worker{
			id:      i,
			runID:   runID,
			cfg:     cfg,
			prober:  prober,
			jobs:    jobs,
			results: results,
			token:   token,
			now:     m.now,
			logger:  logger,
			emit:    m.emit,
		}
		wg.Go(w.run)
	}

	// results closes once no worker can send anymore.
	go func() {
		wg.Wait()
		close(results)
	}()

	records := Collect(results, len(targets), token)

	// Collect has signaled the token; wait for every worker to exit.
	stragglers := 0
	for range results {
		stragglers++
	}

	elapsed := time.Since(started)

	logger.Info("Run finished",
		slog.Int("records", len(records)),
		slog.Int("unprobed", len(targets)-len(records)),
		slog.Int("discarded", stragglers),
		slog.Duration("elapsed", elapsed))

	m.emit(metrics.Event{
		Type:      metrics.EventRunFinished,
		Timestamp: time.Now(),
		RunID:     runID,
		Targets:   len(targets),
		Records:   len(records),
		Duration:  elapsed,
	})

	return records, nil
}

func (m *Monitor) buildProbers(cfg Config) ([]healthcheck.Prober, error) {
	factory := m.newProber
	if factory == nil {
		factory = healthcheck.HTTPFactory(cfg.RequestTimeout, cfg.MaxRedirects)
	}

	probers := make([]healthcheck.Prober, cfg.Workers)
	for i := range probers {
		p, err := factory()
		if err != nil {
			return nil, fmt.Errorf("create prober for worker %d: %w", i, err)
		}
		probers[i] = p
	}

	return probers, nil
}

func (m *Monitor) emit(event metrics.Event) {
	if m.events == nil {
		return
	}

	select {
	case m.events <- event:
	default:
	}
}

// distinct returns urls without repeats, keeping first occurrences in order.
func distinct(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))

	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	return out
}
