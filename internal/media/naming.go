package media

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

func splitPath(path string) (dir, stem, ext string) {
	dir = filepath.Dir(path)
	base := filepath.Base(path)
	ext = filepath.Ext(base)
	stem = strings.TrimSuffix(base, ext)
	return dir, stem, ext
}

// ConvertedPath swaps the extension of input for target.
func ConvertedPath(input, target string) string {
	dir, stem, _ := splitPath(input)
	return filepath.Join(dir, stem+NormalizeExt(target))
}

// MutedPath returns <stem>_muted<ext> beside input.
func MutedPath(input string) string {
	dir, stem, ext := splitPath(input)
	return filepath.Join(dir, stem+"_muted"+ext)
}

// ResizedPath returns <stem>_<N>pct<ext> beside input, where N is the scale
// factor as a rounded percentage (0.5 becomes 50pct).
func ResizedPath(input string, factor float64) string {
	dir, stem, ext := splitPath(input)
	pct := int(math.Round(factor * 100))
	return filepath.Join(dir, fmt.Sprintf("%s_%dpct%s", stem, pct, ext))
}

// CompressedPath returns <stem>_compressed<ext> beside input. Lossless audio
// sources are written as .m4a since their own containers cannot honour a
// bitrate ceiling.
func CompressedPath(input string) string {
	dir, stem, ext := splitPath(input)
	if IsLosslessAudio(ext) {
		ext = ".m4a"
	}
	return filepath.Join(dir, stem+"_compressed"+ext)
}

// BackupPath returns the sibling backup location for output, inserting suffix
// before the extension (clip.mp4 becomes clip.backup.mp4).
func BackupPath(output, suffix string) string {
	if suffix == "" {
		suffix = ".backup"
	}
	dir, stem, ext := splitPath(output)
	return filepath.Join(dir, stem+suffix+ext)
}
