package logging

import "time"

// Presenter is the command-line presentation toolkit the console adapter writes to.
type Presenter interface {
	// Line writes a line regardless of quiet mode.
	Line(message string)
	// Log writes an informational line.
	Log(message string)
	// Error writes an error and ends the hosting process. When ending the process
	// is interrupted, the interruption is returned instead.
	Error(message string) error
	// ErrorMultiline writes several error lines without ending the process.
	ErrorMultiline(lines []string)
	Warning(message string)
	// Debug writes to the toolkit's debug channel, which may be disabled.
	Debug(message string, group string)
	Success(message string)
	NewProgressBar(label string, total int, interval time.Duration) ProgressBar
}

// ProgressBar is a single rendered progress indicator.
type ProgressBar interface {
	Tick(increment int, message string)
	Finish()
}
