// Package metrics collects telemetry about monitor runs.
//
// It uses a channel-based event pipeline to asynchronously collect:
//   - Runs started and completed, with the last run's id, size and duration
//   - Probe attempts and scheduled retries per target
//   - Final outcome per target: up/down, status code or failure reason
//   - Probe latencies with percentile calculations (P50, P95, P99)
//
// The collector runs in a dedicated goroutine. The monitor sends events with
// non-blocking semantics, so a slow or full collector never stalls a worker;
// events that do not fit in the buffer are dropped.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	m := monitor.New(cfg, monitor.WithEvents(collector.EventChannel()))
//
//	// Get metrics snapshot
//	snapshot := collector.Snapshot()
//
// Storage is guarded by sync.RWMutex, and the collector drains buffered
// events when its context is cancelled.
package metrics
