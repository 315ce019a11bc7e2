// Package services defines shared utilities consumed by the job orchestrator
// and its external-tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, operation names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that let callers tell
//     unsupported requests, engine failures, and backup warnings apart with
//     errors.Is.
//
// Use these helpers when wiring new job logic so operational behaviour (error
// classification, observability) stays uniform across the pipeline.
package services
