package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// ErrUnknownExtension reports a file whose extension is not in the kind table.
var ErrUnknownExtension = errors.New("unknown media extension")

// Kind is the coarse media family of a file.
type Kind int

const (
	KindUnknown Kind = iota
	KindVideo
	KindAudio
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

var kindByExtension = map[string]Kind{
	".mp4": KindVideo, ".mkv": KindVideo, ".avi": KindVideo, ".mov": KindVideo, ".wmv": KindVideo,
	".webm": KindVideo, ".flv": KindVideo, ".ts": KindVideo, ".3gp": KindVideo,

	".mp3": KindAudio, ".wav": KindAudio, ".ogg": KindAudio, ".opus": KindAudio, ".aac": KindAudio,
	".flac": KindAudio, ".wma": KindAudio, ".m4a": KindAudio, ".ac3": KindAudio,

	".jpg": KindImage, ".jpeg": KindImage, ".png": KindImage, ".bmp": KindImage, ".gif": KindImage,
	".webp": KindImage, ".tiff": KindImage, ".ico": KindImage, ".heic": KindImage,
}

// Conversion targets offered per input kind.
var targetsByKind = map[Kind][]string{
	KindVideo: {".mp4", ".mkv", ".avi", ".mov", ".wmv", ".webm", ".flv", ".mp3", ".m4a"},
	KindAudio: {".mp3", ".wav", ".ogg", ".opus", ".aac", ".flac", ".m4a", ".wma"},
	KindImage: {".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp", ".tiff", ".ico"},
}

// NormalizeExt lowercases ext and ensures a leading dot. "MP4" and ".mp4"
// both become ".mp4".
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// KindForExtension looks up ext in the kind table.
func KindForExtension(ext string) (Kind, error) {
	normalized := NormalizeExt(ext)
	if kind, ok := kindByExtension[normalized]; ok {
		return kind, nil
	}
	if normalized == "" {
		return KindUnknown, fmt.Errorf("%w: file has no extension", ErrUnknownExtension)
	}
	return KindUnknown, fmt.Errorf("%w: %s", ErrUnknownExtension, normalized)
}

// KindOf classifies path by its extension.
func KindOf(path string) (Kind, error) {
	kind, err := KindForExtension(filepath.Ext(path))
	if err != nil {
		return KindUnknown, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return kind, nil
}

// Extensions returns the sorted extensions belonging to kind.
func Extensions(kind Kind) []string {
	exts := lo.Keys(lo.PickByValues(kindByExtension, []Kind{kind}))
	slices.Sort(exts)
	return exts
}

// Targets returns the conversion targets offered for kind. The slice is a copy.
func Targets(kind Kind) []string {
	return slices.Clone(targetsByKind[kind])
}

// IsTarget reports whether ext is an offered conversion target for kind.
func IsTarget(kind Kind, ext string) bool {
	return lo.Contains(targetsByKind[kind], NormalizeExt(ext))
}

// IsLosslessAudio reports audio containers that carry uncompressed or
// lossless streams and therefore cannot be squeezed to a bitrate in place.
func IsLosslessAudio(ext string) bool {
	switch NormalizeExt(ext) {
	case ".wav", ".flac":
		return true
	default:
		return false
	}
}
