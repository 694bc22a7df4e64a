// Package healthcheck implements the single-request probe used to check an
// endpoint. A probe either yields the HTTP status code the endpoint answered
// with, or a human-readable reason why no answer was obtained.
package healthcheck
