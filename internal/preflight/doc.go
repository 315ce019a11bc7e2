// Package preflight checks the environment transmute depends on: the engine
// and probe binaries and the writable state and log directories.
//
// The CLI runs RunAll before the first job of an invocation and the doctor
// command prints every individual result.
package preflight
