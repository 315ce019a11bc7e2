package safeoutput

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"transmute/internal/fileutil"
	"transmute/internal/logging"
	"transmute/internal/media"
	"transmute/internal/services"
)

// ErrOutputBusy reports an output path locked by another transmute process.
var ErrOutputBusy = errors.New("output is in use by another job")

// Record tracks one output path for the duration of a job.
type Record struct {
	Output string
	// Backup is the sibling copy of the previous output, or "" when there was
	// nothing to back up or the copy failed.
	Backup string
	// Warning is set when the previous output could not be backed up.
	Warning error

	mu       sync.Mutex
	started  bool
	finished bool
	lock     *flock.Flock
}

// Started reports whether MarkStarted was called.
func (r *Record) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Manager prepares, commits, and rolls back outputs.
type Manager struct {
	lockDir string
	suffix  string
	logger  *slog.Logger
}

// New constructs a Manager. An empty lockDir disables cross-process locking.
func New(lockDir, backupSuffix string, logger *slog.Logger) *Manager {
	if backupSuffix == "" {
		backupSuffix = ".backup"
	}
	return &Manager{
		lockDir: lockDir,
		suffix:  backupSuffix,
		logger:  logging.NewComponentLogger(logger, "safeoutput"),
	}
}

// BackupPath returns where the backup for output is kept.
func (m *Manager) BackupPath(output string) string {
	return media.BackupPath(output, m.suffix)
}

// Prepare locks output and backs up any existing file. A returned error is
// fatal for the job; a failed backup is reported through Record.Warning.
func (m *Manager) Prepare(ctx context.Context, output string) (*Record, error) {
	logger := logging.WithContext(ctx, m.logger)
	abs, err := filepath.Abs(output)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "safeoutput", "prepare", "resolve output path", err)
	}
	record := &Record{Output: abs}

	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "safeoutput", "prepare", fmt.Sprintf("output %s is a directory", abs), nil)
	}

	if err := m.acquire(record); err != nil {
		return nil, err
	}

	if !fileutil.Exists(abs) {
		return record, nil
	}
	// Any file already at the backup path is replaced; it is either a leftover
	// from an interrupted run or not ours to protect.
	backup := m.BackupPath(abs)
	if err := fileutil.CopyFileVerified(abs, backup); err != nil {
		_ = os.Remove(backup)
		record.Warning = services.Wrap(services.ErrBackupFailure, "safeoutput", "backup",
			fmt.Sprintf("could not back up %s; the original will be lost if the job fails", filepath.Base(abs)), err)
		logging.WarnWithContext(logger, "backup failed", "backup_failure",
			logging.String("output", abs),
			logging.Error(err),
			logging.String(logging.FieldImpact, "original output is unprotected for this job"),
			logging.String(logging.FieldErrorHint, "check free space and permissions beside the output"),
		)
		return record, nil
	}
	record.Backup = backup
	logger.Debug("output backed up", logging.String("backup", backup))
	return record, nil
}

// MarkStarted notes that the engine may have written to the output.
func (m *Manager) MarkStarted(record *Record) {
	if record == nil {
		return
	}
	record.mu.Lock()
	record.started = true
	record.mu.Unlock()
}

// Commit keeps the new output and discards the backup. Removal failures are
// logged and swallowed. Calling Commit or Rollback again is a no-op.
func (m *Manager) Commit(record *Record) error {
	if record == nil {
		return nil
	}
	record.mu.Lock()
	defer record.mu.Unlock()
	if record.finished {
		return nil
	}
	record.finished = true
	defer m.release(record)

	if record.Backup != "" {
		if err := os.Remove(record.Backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("stale backup left behind", logging.String("backup", record.Backup), logging.Error(err))
		}
	}
	return nil
}

// Rollback removes a partial output when the engine started, then restores
// the backup. A failed restore returns an error wrapping
// services.ErrBackupFailure; the backup file is left in place in that case.
func (m *Manager) Rollback(record *Record) error {
	if record == nil {
		return nil
	}
	record.mu.Lock()
	defer record.mu.Unlock()
	if record.finished {
		return nil
	}
	record.finished = true
	defer m.release(record)

	if record.started {
		if err := os.Remove(record.Output); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("could not remove partial output", logging.String("output", record.Output), logging.Error(err))
		}
	}
	if record.Backup == "" {
		return nil
	}
	if err := fileutil.MoveFile(record.Backup, record.Output); err != nil {
		return services.Wrap(services.ErrBackupFailure, "safeoutput", "restore",
			fmt.Sprintf("original kept at %s", record.Backup), err)
	}
	return nil
}

func (m *Manager) acquire(record *Record) error {
	if m.lockDir == "" {
		return nil
	}
	if err := os.MkdirAll(m.lockDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "safeoutput", "lock", "create lock directory", err)
	}
	sum := sha256.Sum256([]byte(record.Output))
	lock := flock.New(filepath.Join(m.lockDir, hex.EncodeToString(sum[:8])+".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "safeoutput", "lock", "acquire output lock", err)
	}
	if !ok {
		return services.Wrap(services.ErrValidation, "safeoutput", "lock", record.Output, ErrOutputBusy)
	}
	record.lock = lock
	return nil
}

func (m *Manager) release(record *Record) {
	if record.lock == nil {
		return
	}
	if err := record.lock.Unlock(); err != nil {
		m.logger.Debug("release output lock", logging.Error(err))
	}
	record.lock = nil
}
