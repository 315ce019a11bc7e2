// Package profile maps a job request to the engine arguments that perform it.
//
// Build is pure: identical requests and durations always produce identical
// argument lists. Selector wraps Build with the one side effect compression
// needs, a read-only duration probe whose failure only downgrades sizing to
// an estimate. Conversion settings are fixed per output extension, and every
// table has a default branch so an unfamiliar extension never fails
// selection on its own.
package profile
