// Package main hosts the transmute CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into job submissions
// against the orchestrator in internal/jobs, renders progress and results,
// and exposes history, capability, preflight, and configuration utilities.
// Configuration resolution, logger construction, and controller wiring live
// in the shared command context so subcommands stay declarative.
package main
