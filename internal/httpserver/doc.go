// Package httpserver hosts the monitor's optional metrics endpoint. It
// validates the listen address up front and shuts down gracefully when its
// context ends.
package httpserver
