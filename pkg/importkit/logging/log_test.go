package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
	"github.com/arthur-debert/importkit/pkg/importkit/logging"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, zerolog.InfoLevel)

	logger.Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected log output to contain 'test message', got: %s", output)
	}
	if !strings.HasSuffix(strings.TrimSpace(output), "lib=importkit") {
		t.Errorf("Expected log output to end with 'lib=importkit', got: %s", output)
	}
}

func TestLogLevelFromString(t *testing.T) {
	testCases := []struct {
		levelStr string
		expected zerolog.Level
		wantErr  bool
	}{
		{"trace", zerolog.TraceLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"notice", zerolog.InfoLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"critical", zerolog.FatalLevel, false},
		{"invalid", zerolog.NoLevel, true},
	}

	for _, tc := range testCases {
		t.Run(tc.levelStr, func(t *testing.T) {
			level, err := logging.LogLevelFromString(tc.levelStr)

			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error for invalid level %q", tc.levelStr)
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if level != tc.expected {
				t.Errorf("Expected level %v, got %v", tc.expected, level)
			}
		})
	}
}

func TestNewTestLogger(t *testing.T) {
	testCases := []struct {
		verbose  int
		expected zerolog.Level
	}{
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{3, zerolog.TraceLevel},
		{4, zerolog.TraceLevel},
	}

	for _, tc := range testCases {
		t.Run("verbose_"+string(rune(tc.verbose+'0')), func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.NewTestLogger(&buf, tc.verbose)
			if logger.GetLevel() != tc.expected {
				t.Errorf("Expected level %v for verbose %d, got %v", tc.expected, tc.verbose, logger.GetLevel())
			}
		})
	}
}

func TestZerolog_Log(t *testing.T) {
	t.Run("severity and context become fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewZerolog(zerolog.New(&buf))

		logger.Notice("imported", core.Context{"stage": "posts", "count": 3})

		out := buf.String()
		for _, want := range []string{`"severity":"notice"`, `"stage":"posts"`, `"count":3`, `"message":"imported"`, `"level":"info"`} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %s in %s", want, out)
			}
		}
	})

	t.Run("fatal severities do not exit", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewZerolog(zerolog.New(&buf))

		logger.Emergency("down", nil)
		logger.Alert("paging", nil)
		logger.Critical("failing", nil)

		out := buf.String()
		if strings.Count(out, "\n") != 3 {
			t.Fatalf("expected three lines, got %q", out)
		}
		if !strings.Contains(out, `"level":"panic"`) || !strings.Contains(out, `"level":"fatal"`) {
			t.Errorf("unexpected levels in %s", out)
		}
	})

	t.Run("level filter applies", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewZerolog(zerolog.New(&buf).Level(zerolog.WarnLevel))

		logger.Info("hidden", nil)
		logger.Debug("hidden", nil)
		logger.Warning("shown", nil)

		if strings.Contains(buf.String(), "hidden") {
			t.Errorf("filtered messages were written: %s", buf.String())
		}
		if !strings.Contains(buf.String(), "shown") {
			t.Errorf("warning was not written: %s", buf.String())
		}
	})

	t.Run("unknown level passes through", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewZerolog(zerolog.New(&buf).Level(zerolog.ErrorLevel))

		logger.Log(core.Level("trace"), "custom", nil)

		if !strings.Contains(buf.String(), `"severity":"trace"`) {
			t.Errorf("expected pass-through line, got %q", buf.String())
		}
	})
}

func TestDefaultLogger(t *testing.T) {
	logger := logging.DefaultLogger()
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Errorf("Expected default level warn, got %s", logger.GetLevel())
	}
}
