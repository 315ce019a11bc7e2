// Package history persists finished jobs in a SQLite database under the
// state directory so the CLI can list recent work and failure counts.
package history
