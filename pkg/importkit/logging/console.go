package logging

import (
	"strconv"
	"sync"
	"time"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
)

// DefaultProgressInterval is the redraw interval used when none is given.
const DefaultProgressInterval = 100 * time.Millisecond

// ProgressID identifies a progress indicator owned by a Console.
type ProgressID string

// IntProgressID converts an integer key into a ProgressID.
func IntProgressID(id int) ProgressID {
	return ProgressID(strconv.Itoa(id))
}

// Progress is a named counter with a target total.
type Progress struct {
	ID       ProgressID
	Label    string
	Total    int
	Interval time.Duration

	mu      sync.Mutex
	current int
	bar     ProgressBar
}

// Current returns how far the indicator has advanced.
func (p *Progress) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Progress) tick(increment int, message string) {
	p.mu.Lock()
	p.current += increment
	p.mu.Unlock()
	p.bar.Tick(increment, message)
}

// Console is a logger that writes through a Presenter and keeps a registry of
// named progress indicators.
//
// Emergency, Alert, Critical and Error go through the presenter's fatal error
// path and, with a real terminal, end the process after the message is shown.
// This differs from core.Leveled, whose methods never stop the program.
type Console struct {
	presenter Presenter

	mu   sync.Mutex
	bars map[ProgressID]*Progress
}

var _ core.LeveledLogger = (*Console)(nil)

// NewConsole creates a console logger writing to presenter.
func NewConsole(presenter Presenter) *Console {
	return &Console{
		presenter: presenter,
		bars:      make(map[ProgressID]*Progress),
	}
}

// Log writes message as a plain line. The context is not rendered.
func (c *Console) Log(level core.Level, message string, ctx core.Context) {
	c.presenter.Log(message)
}

// Emergency reports message through the fatal error path.
func (c *Console) Emergency(message string, ctx core.Context) { c.route(core.LevelEmergency, message) }

// Alert reports message through the fatal error path.
func (c *Console) Alert(message string, ctx core.Context) { c.route(core.LevelAlert, message) }

// Critical reports message through the fatal error path.
func (c *Console) Critical(message string, ctx core.Context) { c.route(core.LevelCritical, message) }

// Error reports message through the fatal error path.
func (c *Console) Error(message string, ctx core.Context) { c.route(core.LevelError, message) }

// Warning writes through the presenter's warning path.
func (c *Console) Warning(message string, ctx core.Context) {
	c.route(core.LevelWarning, message)
}

// Notice writes message as a plain line.
func (c *Console) Notice(message string, ctx core.Context) { c.route(core.LevelNotice, message) }

// Info writes message as a plain line.
func (c *Console) Info(message string, ctx core.Context) { c.route(core.LevelInfo, message) }

// Debug writes a plain line. DebugGroup writes to the presenter's debug channel.
func (c *Console) Debug(message string, ctx core.Context) {
	c.route(core.LevelDebug, message)
}

// DebugGroup writes to the presenter's debug channel.
func (c *Console) DebugGroup(message, group string) {
	c.presenter.Debug(message, group)
}

// Line writes message even when the presenter is quiet.
func (c *Console) Line(message string) {
	c.presenter.Line(message)
}

// Success writes a success message.
func (c *Console) Success(message string) {
	c.presenter.Success(message)
}

// ErrorLines writes several error lines without ending the process.
func (c *Console) ErrorLines(lines ...string) {
	c.presenter.ErrorMultiline(lines)
}

// route picks the presenter path for a convenience method: the fatal path for
// fatal levels, the warning path for warnings and a plain line otherwise.
func (c *Console) route(level core.Level, message string) {
	switch {
	case level.Fatal():
		c.fatal(message)
	case level == core.LevelWarning:
		c.presenter.Warning(message)
	default:
		c.presenter.Log(message)
	}
}

// fatal shows message through the fatal error path. If ending the process is
// interrupted, the interruption is reported first and the original message is
// then reported again through the non-fatal path. Nothing is returned to the
// caller.
func (c *Console) fatal(message string) {
	if err := c.presenter.Error(message); err != nil {
		c.presenter.ErrorMultiline([]string{err.Error()})
		c.presenter.ErrorMultiline([]string{message})
	}
}

// MakeProgressBar creates a progress indicator and registers it under id.
// An indicator already registered under id is finished and replaced; its handle
// is no longer reachable through the registry. A non-positive interval means
// DefaultProgressInterval.
func (c *Console) MakeProgressBar(id ProgressID, label string, total int, interval time.Duration) *Progress {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	p := &Progress{
		ID:       id,
		Label:    label,
		Total:    total,
		Interval: interval,
		bar:      c.presenter.NewProgressBar(label, total, interval),
	}

	c.mu.Lock()
	old := c.bars[id]
	c.bars[id] = p
	c.mu.Unlock()

	if old != nil {
		old.bar.Finish()
	}
	return p
}

// TickProgressBar advances the indicator at id. Unknown ids are ignored.
func (c *Console) TickProgressBar(id ProgressID, increment int, message string) {
	if p, ok := c.Progress(id); ok {
		p.tick(increment, message)
	}
}

// FinishProgressBar finishes the indicator at id and removes it from the
// registry. Unknown ids are ignored.
func (c *Console) FinishProgressBar(id ProgressID) {
	c.mu.Lock()
	p, ok := c.bars[id]
	delete(c.bars, id)
	c.mu.Unlock()

	if ok {
		p.bar.Finish()
	}
}

// Progress returns the live indicator registered under id.
func (c *Console) Progress(id ProgressID) (*Progress, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.bars[id]
	return p, ok
}
