// Package cancellation provides the shared stop flag read by every monitor
// worker and the result collector. A token only ever moves from running to
// signaled; it is never reset, so a fresh token is needed for each run.
package cancellation
