package core

// Context carries structured values alongside a log message. A nil Context is empty.
type Context map[string]any

// Logger is the single logging primitive. Implementations decide the sink.
// Any of the canonical levels must be accepted; unknown levels are passed through.
type Logger interface {
	Log(level Level, message string, ctx Context)
}

// LeveledLogger adds one convenience method per canonical level.
type LeveledLogger interface {
	Logger
	Emergency(message string, ctx Context)
	Alert(message string, ctx Context)
	Critical(message string, ctx Context)
	Error(message string, ctx Context)
	Warning(message string, ctx Context)
	Notice(message string, ctx Context)
	Info(message string, ctx Context)
	Debug(message string, ctx Context)
}

// LoggerFunc adapts a function to the Logger interface.
type LoggerFunc func(level Level, message string, ctx Context)

// Log implements Logger.
func (f LoggerFunc) Log(level Level, message string, ctx Context) {
	f(level, message, ctx)
}

// Leveled turns any Logger into a LeveledLogger. Every convenience method is
// exactly Log with the matching level.
type Leveled struct {
	Logger
}

// NewLeveled wraps logger.
func NewLeveled(logger Logger) *Leveled {
	return &Leveled{Logger: logger}
}

func (l *Leveled) Emergency(message string, ctx Context) { l.Log(LevelEmergency, message, ctx) }
func (l *Leveled) Alert(message string, ctx Context)     { l.Log(LevelAlert, message, ctx) }
func (l *Leveled) Critical(message string, ctx Context)  { l.Log(LevelCritical, message, ctx) }
func (l *Leveled) Error(message string, ctx Context)     { l.Log(LevelError, message, ctx) }
func (l *Leveled) Warning(message string, ctx Context)   { l.Log(LevelWarning, message, ctx) }
func (l *Leveled) Notice(message string, ctx Context)    { l.Log(LevelNotice, message, ctx) }
func (l *Leveled) Info(message string, ctx Context)      { l.Log(LevelInfo, message, ctx) }
func (l *Leveled) Debug(message string, ctx Context)     { l.Log(LevelDebug, message, ctx) }

// Nop returns a LeveledLogger that discards everything.
func Nop() LeveledLogger {
	return NewLeveled(LoggerFunc(func(Level, string, Context) {}))
}
