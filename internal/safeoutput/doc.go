// Package safeoutput guards a job's destination file.
//
// Before the engine runs, Prepare takes a per-output lock so two transmute
// processes never write the same path, and copies any existing output to a
// sibling backup. Commit discards the backup once the new file is complete;
// Rollback removes a partial output and restores the backup. After either
// call exactly one of the new file or the original remains at the output
// path.
//
// Backup problems never block a job. They surface as errors wrapping
// services.ErrBackupFailure, which callers attach to the job result as
// warnings.
package safeoutput
