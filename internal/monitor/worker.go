package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/angeloszaimis/website-monitor/internal/cancellation"
	"github.com/angeloszaimis/website-monitor/internal/healthcheck"
	"github.com/angeloszaimis/website-monitor/internal/metrics"
	"github.com/angeloszaimis/website-monitor/internal/queue"
)

type worker struct {
	id      int
	runID   string
	cfg     Config
	prober  healthcheck.Prober
	jobs    *queue.Queue[Job]
	results chan<- StatusRecord
	token   *cancellation.Token
	now     func() time.Time
	logger  *slog.Logger
	emit    func(metrics.Event)
}

// run polls for jobs until the token is signaled. Cancellation is only
// observed between jobs, so a probe that has started always finishes.
func (w *worker) run() {
	for {
		if w.token.IsSignaled() {
			w.logger.Debug("Worker stopped", slog.Int("worker", w.id))
			return
		}

		job, ok := w.jobs.TryPop(w.cfg.PollInterval)
		if !ok {
			continue
		}

		w.execute(job)
	}
}

func (w *worker) execute(job Job) {
	start := time.Now()
	// In-flight probes are never interrupted; the prober's own timeout bounds them.
	outcome := w.prober.Check(context.Background(), job.URL)
	elapsed := time.Since(start)

	w.logger.Debug("Probe finished",
		slog.Int("worker", w.id),
		slog.String("url", job.URL),
		slog.Int("attempt", job.Attempt),
		slog.String("outcome", outcome.String()),
		slog.Duration("elapsed", elapsed))

	w.emit(metrics.Event{
		Type:       metrics.EventAttemptCompleted,
		Timestamp:  time.Now(),
		RunID:      w.runID,
		URL:        job.URL,
		Attempt:    job.Attempt,
		Duration:   elapsed,
		Success:    outcome.OK(),
		StatusCode: outcome.StatusCode(),
		Reason:     outcome.Reason(),
	})

	if !outcome.OK() && !w.token.IsSignaled() && job.Attempt < w.cfg.MaxRetries {
		w.retry(job, outcome)
		return
	}

	record := StatusRecord{
		URL:        job.URL,
		Outcome:    outcome,
		Elapsed:    elapsed,
		ObservedAt: w.now(),
		Attempts:   job.Attempt + 1,
	}

	w.results <- record

	w.emit(metrics.Event{
		Type:       metrics.EventRecordEmitted,
		Timestamp:  record.ObservedAt,
		RunID:      w.runID,
		URL:        record.URL,
		Attempt:    record.Attempts,
		Duration:   record.Elapsed,
		Success:    outcome.OK(),
		StatusCode: outcome.StatusCode(),
		Reason:     outcome.Reason(),
	})
}

// retry waits out the backoff and requeues the job. The queue lock is not
// held while sleeping, so other workers keep dequeuing.
func (w *worker) retry(job Job, outcome healthcheck.Outcome) {
	delay := w.cfg.backoff(job.Attempt)
	next := Job{URL: job.URL, Attempt: job.Attempt + 1}

	w.logger.Warn("Probe failed, retrying",
		slog.Int("worker", w.id),
		slog.String("url", job.URL),
		slog.Int("attempt", job.Attempt),
		slog.String("reason", outcome.Reason()),
		slog.Duration("backoff", delay))

	w.emit(metrics.Event{
		Type:      metrics.EventRetryScheduled,
		Timestamp: time.Now(),
		RunID:     w.runID,
		URL:       job.URL,
		Attempt:   next.Attempt,
		Duration:  delay,
		Reason:    outcome.Reason(),
	})

	time.Sleep(delay)
	w.jobs.Push(next)
}
