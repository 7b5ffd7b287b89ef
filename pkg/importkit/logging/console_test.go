package logging_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
	"github.com/arthur-debert/importkit/pkg/importkit/logging"
)

type presenterCall struct {
	method string
	lines  []string
}

// mockPresenter records every call. errorErr is returned from Error to simulate
// an interrupted exit.
type mockPresenter struct {
	calls    []presenterCall
	bars     []*mockBar
	errorErr error
}

func (m *mockPresenter) record(method string, lines ...string) {
	m.calls = append(m.calls, presenterCall{method: method, lines: lines})
}

func (m *mockPresenter) Line(message string)    { m.record("line", message) }
func (m *mockPresenter) Log(message string)     { m.record("log", message) }
func (m *mockPresenter) Warning(message string) { m.record("warning", message) }
func (m *mockPresenter) Success(message string) { m.record("success", message) }
func (m *mockPresenter) Debug(message, group string) {
	m.record("debug", message, group)
}
func (m *mockPresenter) ErrorMultiline(lines []string) {
	m.record("error_multiline", lines...)
}
func (m *mockPresenter) Error(message string) error {
	m.record("error", message)
	return m.errorErr
}
func (m *mockPresenter) NewProgressBar(label string, total int, interval time.Duration) logging.ProgressBar {
	bar := &mockBar{label: label, total: total, interval: interval}
	m.bars = append(m.bars, bar)
	return bar
}

func (m *mockPresenter) methods() []string {
	out := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c.method)
	}
	return out
}

type mockBar struct {
	label    string
	total    int
	interval time.Duration
	ticks    int
	messages []string
	finished int
}

func (b *mockBar) Tick(increment int, message string) {
	b.ticks += increment
	if message != "" {
		b.messages = append(b.messages, message)
	}
}

func (b *mockBar) Finish() { b.finished++ }

func TestConsole_Log(t *testing.T) {
	p := &mockPresenter{}
	c := logging.NewConsole(p)

	c.Log(core.LevelWarning, "plain", core.Context{"ignored": true})
	c.Log(core.Level("custom"), "passthrough", nil)

	assert.Equal(t, []presenterCall{
		{method: "log", lines: []string{"plain"}},
		{method: "log", lines: []string{"passthrough"}},
	}, p.calls)
}

func TestConsole_FatalLevels(t *testing.T) {
	fatal := map[string]func(c *logging.Console, msg string, ctx core.Context){
		"emergency": (*logging.Console).Emergency,
		"alert":     (*logging.Console).Alert,
		"critical":  (*logging.Console).Critical,
		"error":     (*logging.Console).Error,
	}

	for name, fn := range fatal {
		t.Run(name+" uses the error path once", func(t *testing.T) {
			p := &mockPresenter{}
			fn(logging.NewConsole(p), "disk full", nil)

			assert.Equal(t, []presenterCall{{method: "error", lines: []string{"disk full"}}}, p.calls)
		})

		t.Run(name+" reports an interrupted exit twice", func(t *testing.T) {
			p := &mockPresenter{errorErr: errors.New("exit interrupted")}

			assert.NotPanics(t, func() {
				fn(logging.NewConsole(p), "disk full", nil)
			})

			assert.Equal(t, []presenterCall{
				{method: "error", lines: []string{"disk full"}},
				{method: "error_multiline", lines: []string{"exit interrupted"}},
				{method: "error_multiline", lines: []string{"disk full"}},
			}, p.calls)
		})
	}
}

func TestConsole_NonFatalLevels(t *testing.T) {
	p := &mockPresenter{}
	c := logging.NewConsole(p)

	c.Warning("disk low", nil)
	c.Notice("notice", nil)
	c.Info("info", nil)
	c.Debug("debug", nil)

	assert.Equal(t, []string{"warning", "log", "log", "log"}, p.methods())
}

func TestConsole_WarningIsDistinctFromError(t *testing.T) {
	p := &mockPresenter{}
	c := logging.NewConsole(p)

	c.Warning("disk low", nil)
	c.Error("disk full", nil)

	require.Len(t, p.calls, 2)
	assert.Equal(t, presenterCall{method: "warning", lines: []string{"disk low"}}, p.calls[0])
	assert.Equal(t, presenterCall{method: "error", lines: []string{"disk full"}}, p.calls[1])
}

func TestConsole_PassThroughs(t *testing.T) {
	p := &mockPresenter{}
	c := logging.NewConsole(p)

	c.Line("line")
	c.Success("done")
	c.DebugGroup("query", "db")
	c.ErrorLines("first", "second")

	assert.Equal(t, []presenterCall{
		{method: "line", lines: []string{"line"}},
		{method: "success", lines: []string{"done"}},
		{method: "debug", lines: []string{"query", "db"}},
		{method: "error_multiline", lines: []string{"first", "second"}},
	}, p.calls)
}

func TestConsole_ProgressLifecycle(t *testing.T) {
	p := &mockPresenter{}
	c := logging.NewConsole(p)

	bar := c.MakeProgressBar("a", "Importing", 10, 0)
	require.NotNil(t, bar)
	assert.Equal(t, logging.DefaultProgressInterval, bar.Interval)
	assert.Equal(t, "Importing", p.bars[0].label)
	assert.Equal(t, 10, p.bars[0].total)

	c.TickProgressBar("a", 3, "")
	assert.Equal(t, 3, bar.Current())
	assert.Equal(t, 3, p.bars[0].ticks)

	c.TickProgressBar("a", 1, "row 4")
	assert.Equal(t, 4, bar.Current())
	assert.Equal(t, []string{"row 4"}, p.bars[0].messages)

	c.FinishProgressBar("a")
	_, ok := c.Progress("a")
	assert.False(t, ok)
	assert.Equal(t, 1, p.bars[0].finished)

	assert.NotPanics(t, func() { c.TickProgressBar("a", 1, "") })
	assert.Equal(t, 4, bar.Current())
}

func TestConsole_ProgressUnknownID(t *testing.T) {
	p := &mockPresenter{}
	c := logging.NewConsole(p)

	assert.NotPanics(t, func() {
		c.TickProgressBar("missing", 1, "")
		c.FinishProgressBar("missing")
	})
	assert.Empty(t, p.calls)
	assert.Empty(t, p.bars)
}

func TestConsole_ProgressRecreateReplaces(t *testing.T) {
	p := &mockPresenter{}
	c := logging.NewConsole(p)

	first := c.MakeProgressBar("a", "first", 5, time.Second)
	second := c.MakeProgressBar("a", "second", 7, time.Second)

	got, ok := c.Progress("a")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.NotSame(t, first, got)

	// the replaced bar is finished so it does not keep its terminal line
	assert.Equal(t, 1, p.bars[0].finished)

	c.TickProgressBar("a", 2, "")
	assert.Equal(t, 0, first.Current())
	assert.Equal(t, 2, second.Current())
}

func TestIntProgressID(t *testing.T) {
	p := &mockPresenter{}
	c := logging.NewConsole(p)

	c.MakeProgressBar(logging.IntProgressID(7), "numbered", 1, 0)
	_, ok := c.Progress("7")
	assert.True(t, ok)
}
