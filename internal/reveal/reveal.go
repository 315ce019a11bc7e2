// Package reveal shows a finished output in the desktop file manager. Every
// failure is advisory; callers log it and move on.
package reveal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/pkg/browser"

	"transmute/internal/logging"
)

// FolderRevealer shows path to the user.
type FolderRevealer interface {
	Reveal(ctx context.Context, path string) error
}

// Revealer selects the file in the platform file manager and falls back to
// opening its folder.
type Revealer struct {
	selectItem func(ctx context.Context, path string) error
	openFolder func(dir string) error
	logger     *slog.Logger
}

// New returns a Revealer for the current platform.
func New(logger *slog.Logger) *Revealer {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &Revealer{
		selectItem: selectInFileManager,
		openFolder: browser.OpenFile,
		logger:     logging.NewComponentLogger(logger, "reveal"),
	}
}

// Reveal highlights path in its folder, or opens the folder when the file
// manager cannot select items.
func (r *Revealer) Reveal(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	selectErr := r.selectItem(ctx, abs)
	if selectErr == nil {
		return nil
	}
	r.logger.Debug("file manager selection unavailable; opening folder",
		logging.String("path", abs),
		logging.Error(selectErr),
	)
	if err := r.openFolder(filepath.Dir(abs)); err != nil {
		return errors.Join(selectErr, fmt.Errorf("open folder: %w", err))
	}
	return nil
}

// Nop never reveals anything.
type Nop struct{}

// Reveal does nothing.
func (Nop) Reveal(context.Context, string) error { return nil }
