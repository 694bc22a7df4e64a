package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventRunStarted       EventType = "run_started"
	EventAttemptCompleted EventType = "attempt_completed"
	EventRetryScheduled   EventType = "retry_scheduled"
	EventRecordEmitted    EventType = "record_emitted"
	EventRunFinished      EventType = "run_finished"
)

// Event is emitted by the monitor. Only the fields relevant to Type are set.
type Event struct {
	Type       EventType
	Timestamp  time.Time
	RunID      string
	URL        string
	Attempt    int
	Duration   time.Duration
	Success    bool
	StatusCode int
	Reason     string
	Targets    int
	Records    int
}

type Collector struct {
	eventCh chan Event
	metrics *Metrics
	logger  *slog.Logger
	done    chan struct{}
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan Event, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
		done:    make(chan struct{}),
	}
}

func (c *Collector) EventChannel() chan<- Event {
	return c.eventCh
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

// Done is closed once the collector has drained its channel and stopped.
func (c *Collector) Done() <-chan struct{} {
	return c.done
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")
	defer close(c.done)

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event Event) {
	switch event.Type {
	case EventRunStarted:
		c.metrics.StartRun(event.RunID, event.Targets)

	case EventAttemptCompleted:
		c.metrics.RecordAttempt(event.URL, event.Duration, event.Success)

	case EventRetryScheduled:
		c.metrics.RecordRetry(event.URL)

	case EventRecordEmitted:
		c.metrics.RecordResult(event.URL, Result{
			Success:    event.Success,
			StatusCode: event.StatusCode,
			Reason:     event.Reason,
			Latency:    event.Duration,
			Attempts:   event.Attempt,
			ObservedAt: event.Timestamp,
		})

	case EventRunFinished:
		c.metrics.FinishRun(event.RunID, event.Records, event.Duration)

	default:
		c.logger.Debug("Dropping unknown metric event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
