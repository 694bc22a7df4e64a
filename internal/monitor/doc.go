// Package monitor checks many endpoints concurrently and reports exactly one
// StatusRecord per distinct URL.
//
// A run seeds a shared queue with one job per URL and starts a fixed pool of
// workers. Each worker loops:
//
//	Polling -> Executing -> (Retrying | Emitting) -> Polling
//
// until the cancellation token is signaled, which it checks before every
// dequeue. A failed probe is requeued after a linear backoff while retries
// remain and the run has not been cancelled; otherwise its failure becomes
// the URL's record. The collector keeps the first record per URL and
// finishes when every URL has one or every worker has exited. It then
// signals the token so idle workers stop, and the run joins them before
// returning.
//
// Cancellation is cooperative. Probes already running are never interrupted,
// and URLs still queued when the token is signaled get no record.
package monitor
