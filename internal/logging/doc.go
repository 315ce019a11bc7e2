// Package logging assembles the structured slog loggers used by transmute.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so job code tags every line with
// the job ID, operation, and correlation ID carried on the context. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
