// Package cli implements the command-line presentation toolkit used by the
// console logger: prefixed message lines, a fatal error path that ends the
// process, and progress bars.
package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/arthur-debert/importkit/pkg/importkit/logging"
)

// ExitFunc ends the process with code. An implementation that cannot end the
// process returns an error describing the interruption instead.
type ExitFunc func(code int) error

// ExitError is returned by a captured exit.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit with status %d was captured", e.Code)
}

func osExit(code int) error {
	os.Exit(code)
	return nil
}

// Terminal writes operator-facing output.
type Terminal struct {
	out  io.Writer
	err  io.Writer
	exit ExitFunc

	quiet       bool
	debug       bool
	interactive bool

	errorColor   *color.Color
	warningColor *color.Color
	successColor *color.Color
	debugColor   *color.Color

	mu sync.Mutex
}

var _ logging.Presenter = (*Terminal)(nil)

// Option configures a Terminal.
type Option func(*Terminal)

// WithExitFunc replaces os.Exit on the fatal error path.
func WithExitFunc(fn ExitFunc) Option {
	return func(t *Terminal) { t.exit = fn }
}

// WithCapturedExit makes the fatal error path return an *ExitError instead of
// ending the process.
func WithCapturedExit() Option {
	return WithExitFunc(func(code int) error { return &ExitError{Code: code} })
}

// WithQuiet suppresses Log output and progress bars.
func WithQuiet(quiet bool) Option {
	return func(t *Terminal) { t.quiet = quiet }
}

// WithDebug enables the debug channel.
func WithDebug(debug bool) Option {
	return func(t *Terminal) { t.debug = debug }
}

// WithColor forces colour on or off.
func WithColor(enabled bool) Option {
	return func(t *Terminal) { t.setColor(enabled) }
}

// WithInteractive forces progress bar rendering on or off.
func WithInteractive(interactive bool) Option {
	return func(t *Terminal) { t.interactive = interactive }
}

// NewTerminal creates a terminal writing regular output to out and errors,
// warnings, debug output and progress bars to errOut. Colour and progress bars
// are enabled when errOut is a terminal.
func NewTerminal(out, errOut io.Writer, opts ...Option) *Terminal {
	t := &Terminal{
		out:          out,
		err:          errOut,
		exit:         osExit,
		errorColor:   color.New(color.FgRed, color.Bold),
		warningColor: color.New(color.FgYellow, color.Bold),
		successColor: color.New(color.FgGreen, color.Bold),
		debugColor:   color.New(color.FgCyan),
	}
	tty := isTerminal(errOut)
	t.interactive = tty
	t.setColor(tty)

	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Stdio returns a terminal on the process's standard streams.
func Stdio(opts ...Option) *Terminal {
	return NewTerminal(os.Stdout, os.Stderr, opts...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (t *Terminal) setColor(enabled bool) {
	for _, c := range []*color.Color{t.errorColor, t.warningColor, t.successColor, t.debugColor} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

func (t *Terminal) writeln(w io.Writer, line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(w, line)
}

// Line writes message to the regular output.
func (t *Terminal) Line(message string) {
	t.writeln(t.out, message)
}

// Log writes message to the regular output unless the terminal is quiet.
func (t *Terminal) Log(message string) {
	if t.quiet {
		return
	}
	t.writeln(t.out, message)
}

// Error writes "Error: message" and ends the process with status 1. If the exit
// function returns, its error is returned.
func (t *Terminal) Error(message string) error {
	t.writeln(t.err, t.errorColor.Sprint("Error:")+" "+message)
	return t.exit(1)
}

// ErrorMultiline writes an error block with one line per entry. It never ends
// the process.
func (t *Terminal) ErrorMultiline(lines []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.err, t.errorColor.Sprint("Error:"))
	for _, line := range lines {
		fmt.Fprintln(t.err, "  "+line)
	}
}

// Warning writes "Warning: message".
func (t *Terminal) Warning(message string) {
	t.writeln(t.err, t.warningColor.Sprint("Warning:")+" "+message)
}

// Success writes "Success: message" to the regular output.
func (t *Terminal) Success(message string) {
	t.writeln(t.out, t.successColor.Sprint("Success:")+" "+message)
}

// Debug writes to the debug channel, which is only enabled with WithDebug.
func (t *Terminal) Debug(message string, group string) {
	if !t.debug {
		return
	}
	prefix := "Debug:"
	if group != "" {
		prefix = fmt.Sprintf("Debug (%s):", group)
	}
	t.writeln(t.err, t.debugColor.Sprint(prefix)+" "+message)
}

// NewProgressBar returns a rendered bar on interactive terminals and a no-op
// bar otherwise.
func (t *Terminal) NewProgressBar(label string, total int, interval time.Duration) logging.ProgressBar {
	if t.quiet || !t.interactive {
		return noopBar{}
	}
	return newBar(t.err, label, total, interval)
}
