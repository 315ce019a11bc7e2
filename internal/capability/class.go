package capability

import (
	"fmt"
	"strings"
)

// Class is a hardware acceleration family.
type Class int

const (
	ClassNone Class = iota
	ClassNVIDIA
	ClassIntel
	ClassAMD
)

func (c Class) String() string {
	switch c {
	case ClassNVIDIA:
		return "nvidia"
	case ClassIntel:
		return "intel"
	case ClassAMD:
		return "amd"
	default:
		return "none"
	}
}

// Accelerated reports whether c names a hardware encoder family.
func (c Class) Accelerated() bool {
	return c != ClassNone
}

// ParseClass converts a configured mode into a Class. "auto" is not a class
// and is rejected here; callers handle it before parsing.
func ParseClass(value string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none", "software", "":
		return ClassNone, nil
	case "nvidia":
		return ClassNVIDIA, nil
	case "intel":
		return ClassIntel, nil
	case "amd":
		return ClassAMD, nil
	default:
		return ClassNone, fmt.Errorf("unknown capability class %q", value)
	}
}
