// Package logging assembles structured slog loggers and formatting helpers used
// across stockscan components.
//
// It owns the console and JSON handlers, the tee that mirrors console output
// into the JSON log file, and context-aware helpers so scan and queue code can
// tag log lines with session identifiers, tag values and correlation IDs. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
