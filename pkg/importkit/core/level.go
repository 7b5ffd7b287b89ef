package core

import (
	"fmt"
	"strings"
)

// Level is a log severity tag, according to RFC 5424.
type Level string

const (
	// LevelEmergency means the system is unusable and immediate attention is required.
	LevelEmergency Level = "emergency"
	// LevelAlert means action must be taken immediately.
	LevelAlert Level = "alert"
	// LevelCritical indicates severe problems that may lead to failure.
	LevelCritical Level = "critical"
	// LevelError is for runtime errors and unexpected conditions.
	LevelError Level = "error"
	// LevelWarning indicates potential problems that are not critical.
	LevelWarning Level = "warning"
	// LevelNotice is for normal but significant events.
	LevelNotice Level = "notice"
	// LevelInfo is for general information about normal operation.
	LevelInfo Level = "info"
	// LevelDebug is for development and troubleshooting detail.
	LevelDebug Level = "debug"
)

var levels = []Level{
	LevelEmergency,
	LevelAlert,
	LevelCritical,
	LevelError,
	LevelWarning,
	LevelNotice,
	LevelInfo,
	LevelDebug,
}

// Levels returns the eight canonical levels, most severe first.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// Known reports whether l is one of the canonical levels.
func (l Level) Known() bool {
	return l.rank() >= 0
}

// Fatal reports whether a log at this level is expected to end the run.
func (l Level) Fatal() bool {
	return l.AtLeast(LevelError)
}

// AtLeast reports whether l is as severe as, or more severe than, other.
// Unknown levels are never at least anything.
func (l Level) AtLeast(other Level) bool {
	r, o := l.rank(), other.rank()
	if r < 0 || o < 0 {
		return false
	}
	return r <= o
}

func (l Level) String() string {
	return string(l)
}

func (l Level) rank() int {
	for i, known := range levels {
		if known == l {
			return i
		}
	}
	return -1
}

// ParseLevel parses one of the canonical level tags, ignoring case.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if !l.Known() {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}
