// Package logger builds the structured logger shared by the monitor's
// components. It wraps log/slog, choosing JSON or text output by environment
// and a level parsed from configuration.
package logger
