// Package progress turns the engine's diagnostic stream into a percentage.
//
// Lines splits the stream on either line feeds or carriage returns, since the
// engine rewrites its stats line in place with \r. Parser recognizes the
// "Duration:" banner and the recurring "time=" marker and reports a clamped,
// non-decreasing percentage. The parser never reports 100; completion is
// announced by the job itself once the engine exits cleanly.
package progress
