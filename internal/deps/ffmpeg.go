package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveTool returns the executable to run for a tool. A configured value
// containing a path separator is used as-is. Otherwise a copy shipped beside
// the transmute executable wins over one found on PATH, which lets portable
// installs bundle their own engine. When nothing is found the configured name
// is returned unchanged so the failure surfaces at launch with that name.
func ResolveTool(configured, fallback string) string {
	name := strings.TrimSpace(configured)
	if name == "" {
		name = fallback
	}
	if strings.ContainsAny(name, `/\`) {
		return name
	}
	if exe, err := os.Executable(); err == nil {
		if candidate, ok := sidecar(exe, name); ok {
			return candidate
		}
	}
	if resolved, err := exec.LookPath(name); err == nil {
		return resolved
	}
	return name
}

func sidecar(executable, name string) (string, bool) {
	if executable == "" {
		return "", false
	}
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		name += ".exe"
	}
	candidate := filepath.Join(filepath.Dir(executable), name)
	info, err := os.Stat(candidate)
	if err != nil || !isExecutable(info) {
		return "", false
	}
	return candidate, true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
