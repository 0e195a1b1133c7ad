// Package logging assembles structured slog loggers and formatting helpers used
// across entmatch.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with session IDs, request correlation IDs, and query generations.
// Logs default to stderr because stdout carries command results. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
