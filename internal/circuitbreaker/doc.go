// Package circuitbreaker short-circuits probes to targets that keep failing.
//
// A breaker has three states:
//
//   - CLOSED: probes go out normally
//   - OPEN: the target failed threshold times in a row; probes fail fast
//   - HALF-OPEN: the reset timeout passed; the next probe decides
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(3, time.Minute)
//	factory := circuitbreaker.GuardFactory(healthcheck.HTTPFactory(5*time.Second, 5), registry)
//
// A short-circuited probe is an ordinary failure outcome, so the monitor
// still retries it and still emits exactly one record for the target.
package circuitbreaker
