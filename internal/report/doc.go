// Package report renders monitor results for the command line, either as
// one colored line per endpoint plus a summary, or as a JSON document.
package report
