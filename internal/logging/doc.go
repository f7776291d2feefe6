// Package logging assembles structured slog loggers and formatting helpers used
// across ncmplay.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the track, stage, and correlation ID of the unit of work. The
// package also provides a no-op logger for tests.
package logging
