package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
)

// NewLogger creates a new logger instance with a specified level and output.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("lib", "importkit").
		Logger()
}

// NewTestLogger creates a logger instance for tests with a specified verbosity.
func NewTestLogger(w io.Writer, verbose int) zerolog.Logger {
	var level zerolog.Level
	switch verbose {
	case 0:
		level = zerolog.WarnLevel
	case 1:
		level = zerolog.InfoLevel
	case 2:
		level = zerolog.DebugLevel
	default:
		level = zerolog.TraceLevel
	}
	return NewLogger(w, level)
}

// LogLevelFromString parses a string to a zerolog.Level. The syslog tags used by
// core.Level are accepted as well.
func LogLevelFromString(levelStr string) (zerolog.Level, error) {
	if l, err := core.ParseLevel(levelStr); err == nil {
		return ZerologLevel(l), nil
	}
	return zerolog.ParseLevel(strings.ToLower(levelStr))
}

// DefaultLogger returns a logger with default settings (warn level, stderr output).
func DefaultLogger() zerolog.Logger {
	return NewLogger(os.Stderr, zerolog.WarnLevel)
}

// ZerologLevel maps a syslog level onto the closest zerolog level. The top two
// severities map onto panic and fatal, which are only ever written with WithLevel
// and so never stop the program.
func ZerologLevel(level core.Level) zerolog.Level {
	switch level {
	case core.LevelEmergency:
		return zerolog.PanicLevel
	case core.LevelAlert, core.LevelCritical:
		return zerolog.FatalLevel
	case core.LevelError:
		return zerolog.ErrorLevel
	case core.LevelWarning:
		return zerolog.WarnLevel
	case core.LevelNotice, core.LevelInfo:
		return zerolog.InfoLevel
	case core.LevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.NoLevel
	}
}

// Zerolog writes log records to a zerolog.Logger.
type Zerolog struct {
	logger zerolog.Logger
}

// NewZerolog returns a leveled logger backed by logger.
func NewZerolog(logger zerolog.Logger) *core.Leveled {
	return core.NewLeveled(&Zerolog{logger: logger})
}

// Log implements core.Logger.
func (z *Zerolog) Log(level core.Level, message string, ctx core.Context) {
	event := z.logger.WithLevel(ZerologLevel(level))
	if event == nil {
		return
	}
	event = event.Str("severity", string(level))
	if len(ctx) > 0 {
		event = event.Fields(map[string]interface{}(ctx))
	}
	event.Msg(message)
}
