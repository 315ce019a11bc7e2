package preflight

import (
	"context"
	"fmt"
	"os"

	"transmute/internal/config"
	"transmute/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable and
// writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkAccess(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the engine and probe binaries named in cfg.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     deps.ResolveTool(cfg.FFmpegBinary(), "ffmpeg"),
			Description: "Required for every operation",
			VersionArg:  "-version",
		},
		{
			Name:        "FFprobe",
			Command:     deps.ResolveTool(cfg.FFprobeBinary(), "ffprobe"),
			Description: "Measures duration for compress; without it bitrates are estimated",
			Optional:    true,
			VersionArg:  "-version",
		},
	}
	return deps.CheckBinaries(ctx, requirements)
}
