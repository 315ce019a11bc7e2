// Package logs reads the transmute log file for `transmute logs`.
//
// Last returns the trailing lines with bounded memory; Follow polls for
// appended lines until its context ends, restarting from the top when the
// file is truncated or replaced by a shorter one.
package logs
