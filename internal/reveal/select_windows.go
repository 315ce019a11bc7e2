package reveal

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"transmute/internal/procattr"
)

func selectInFileManager(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, "explorer", "/select,"+path)
	procattr.Hide(cmd)
	err := cmd.Run()
	// explorer exits 1 even when the window opened.
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("explorer: %w", err)
	}
	return nil
}
