package reveal

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"

	"transmute/internal/procattr"
)

// selectInFileManager asks a FileManager1 D-Bus service (Nautilus, Dolphin,
// Nemo, Thunar) to highlight path.
func selectInFileManager(ctx context.Context, path string) error {
	gdbus, err := exec.LookPath("gdbus")
	if err != nil {
		return fmt.Errorf("gdbus not available: %w", err)
	}
	uri := (&url.URL{Scheme: "file", Path: path}).String()
	cmd := exec.CommandContext(ctx, gdbus, "call", "--session",
		"--dest", "org.freedesktop.FileManager1",
		"--object-path", "/org/freedesktop/FileManager1",
		"--method", "org.freedesktop.FileManager1.ShowItems",
		fmt.Sprintf("['%s']", uri), "",
	)
	procattr.Hide(cmd)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ShowItems: %w (%s)", err, out)
	}
	return nil
}
