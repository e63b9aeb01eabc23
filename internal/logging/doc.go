// Package logging assembles structured slog loggers and formatting helpers used
// across mediakeeper.
//
// It owns the console and JSON handlers, tees output into a size-rotated log
// file, and exposes context-aware helpers so pipeline code tags every line with
// the run ID. A no-op logger is provided for tests and wiring code that cannot
// fail.
package logging
