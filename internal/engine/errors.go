package engine

import (
	"fmt"
	"regexp"
	"strings"

	"transmute/internal/services"
)

// Category groups engine failures by likely cause.
type Category string

const (
	CategoryUnknown       Category = "unknown"
	CategoryMissingInput  Category = "missing_input"
	CategoryInvalidInput  Category = "invalid_input"
	CategoryNoStreams     Category = "no_streams"
	CategoryEncoder       Category = "encoder_unavailable"
	CategoryHardware      Category = "hardware_unavailable"
	CategoryPermission    Category = "permission_denied"
	CategoryDiskFull      Category = "disk_full"
	CategoryInvalidOption Category = "invalid_option"
)

type errorPattern struct {
	category Category
	re       *regexp.Regexp
	hint     string
}

// Order matters: hardware session errors often precede a generic
// "Conversion failed" or invalid-argument line.
var errorPatterns = []errorPattern{
	{CategoryHardware, regexp.MustCompile(`(?i)(cannot load (nvcuda\.dll|libcuda)|no nvenc capable devices|openencodesessionex failed|cuda_error|error creating a mfx session|failed to initialise vaapi|dll amfrt\d*\.dll failed|amf (context|component) .*failed|device creation failed)`),
		"hardware encoder is not usable; set capability.mode = \"none\" to force software encoding"},
	{CategoryEncoder, regexp.MustCompile(`(?i)(unknown encoder|encoder not found|encoder '[^']*' not found|error while opening encoder)`),
		"the installed engine build does not include the required encoder"},
	{CategoryMissingInput, regexp.MustCompile(`(?i)no such file or directory`),
		"check that the input file exists"},
	{CategoryPermission, regexp.MustCompile(`(?i)permission denied`),
		"check read access on the input and write access on the output directory"},
	{CategoryDiskFull, regexp.MustCompile(`(?i)no space left on device`),
		"free disk space on the output volume"},
	{CategoryNoStreams, regexp.MustCompile(`(?i)(does not contain any stream|matches no streams|output file .* does not contain)`),
		"the input has no stream usable for this output format"},
	{CategoryInvalidInput, regexp.MustCompile(`(?i)(invalid data found when processing input|moov atom not found|could not find codec parameters|end of file)`),
		"the input is damaged or not a media file"},
	{CategoryInvalidOption, regexp.MustCompile(`(?i)(unrecognized option|option .* not found|invalid argument|error parsing|error initializing filter|error reinitializing filters)`),
		"the engine rejected an argument; the engine build may be too old"},
}

// ignoredDetail lists trailer lines that never explain the failure.
var ignoredDetail = regexp.MustCompile(`(?i)^(conversion failed!?|exiting normally.*|press \[q\].*)$`)

// ExitError reports a non-zero engine exit.
type ExitError struct {
	Code     int
	Category Category
	Summary  string
	Hint     string
	Tail     []string
}

// NewExitError classifies the diagnostic tail of a failed run.
func NewExitError(code int, tail []string) *ExitError {
	category, hint, detail := Classify(tail)
	return &ExitError{
		Code:     code,
		Category: category,
		Summary:  detail,
		Hint:     hint,
		Tail:     append([]string(nil), tail...),
	}
}

func (e *ExitError) Error() string {
	if e == nil {
		return ""
	}
	if e.Summary == "" {
		return fmt.Sprintf("engine exited with code %d", e.Code)
	}
	return fmt.Sprintf("engine exited with code %d: %s", e.Code, e.Summary)
}

// Unwrap lets callers match services.ErrEngineFailure.
func (e *ExitError) Unwrap() error {
	return services.ErrEngineFailure
}

// Classify scans tail from the newest line backwards and returns the first
// recognized category along with a hint and the line that matched. When
// nothing matches, the last meaningful line is returned as the detail.
func Classify(tail []string) (Category, string, string) {
	for _, pattern := range errorPatterns {
		for i := len(tail) - 1; i >= 0; i-- {
			if pattern.re.MatchString(tail[i]) {
				return pattern.category, pattern.hint, strings.TrimSpace(tail[i])
			}
		}
	}
	for i := len(tail) - 1; i >= 0; i-- {
		line := strings.TrimSpace(tail[i])
		if line == "" || ignoredDetail.MatchString(line) {
			continue
		}
		return CategoryUnknown, "", line
	}
	return CategoryUnknown, "", ""
}
